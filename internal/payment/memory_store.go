package payment

import (
	"context"
	"sync"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/domain"
)

// MemoryStore is a SessionStore for tests and single-process setups.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.PaymentSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]domain.PaymentSession)}
}

func (m *MemoryStore) Get(_ context.Context, orderID string) (*domain.PaymentSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[orderID]
	if !ok {
		return nil, ErrSessionMiss
	}
	return &session, nil
}

func (m *MemoryStore) Put(_ context.Context, session *domain.PaymentSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.OrderID] = *session
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, orderID)
	return nil
}
