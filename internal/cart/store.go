package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/yunusarridwan/ninanoorweb-sub001/internal/api"
	"github.com/yunusarridwan/ninanoorweb-sub001/internal/domain"
)

var (
	ErrMissingSize     = errors.New("size is required")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
	ErrLineNotFound    = errors.New("cart line not found")

	// ErrConfirmRemoval is returned when a decrement would cross zero.
	// The remote delete only happens through an explicit Remove after the
	// caller has confirmed, so the local and remote carts never disagree
	// about a line the user may still keep.
	ErrConfirmRemoval = errors.New("removal requires confirmation")
)

// RemoteCart is the remote cart API as this store consumes it.
type RemoteCart interface {
	AddLine(ctx context.Context, productID, size string, qty int) error
	SetLine(ctx context.Context, productID, size string, qty int) error
	RemoveLine(ctx context.Context, productID, size string) error
	GetCart(ctx context.Context) ([]domain.CartLine, error)
}

// Store holds the client-side cart and keeps it consistent with the remote
// cart API under optimistic updates. Mutations apply locally first; a
// failed remote call restores the captured snapshot of the mutated line.
// Lines are keyed by (product, size), so mutations on different lines
// never interfere.
type Store struct {
	mu    sync.Mutex
	lines map[domain.LineKey]int
	// gen counts mutations per line. A rollback only applies when the
	// generation is unchanged, so a late failure for a since-superseded
	// mutation is discarded instead of clobbering newer state.
	gen map[domain.LineKey]uint64

	remote RemoteCart
	prices domain.PriceResolver
	logger *slog.Logger

	// onAuthExpired runs when the remote rejects the bearer credential.
	// Wired to the forced-logout path by the application state.
	onAuthExpired func()
}

func NewStore(remote RemoteCart, prices domain.PriceResolver, logger *slog.Logger) *Store {
	return &Store{
		lines:  make(map[domain.LineKey]int),
		gen:    make(map[domain.LineKey]uint64),
		remote: remote,
		prices: prices,
		logger: logger,
	}
}

// SetAuthExpiredHook registers the forced-logout callback.
func (s *Store) SetAuthExpiredHook(fn func()) {
	s.onAuthExpired = fn
}

// SetQuantity sets the quantity for one line. qty=0 is equivalent to
// Remove. The local write is visible immediately; on remote failure the
// line rolls back to its pre-mutation value.
func (s *Store) SetQuantity(ctx context.Context, productID, size string, qty int) error {
	if size == "" {
		return ErrMissingSize
	}
	if qty < 0 {
		return ErrInvalidQuantity
	}
	if qty == 0 {
		return s.Remove(ctx, productID, size)
	}

	key := domain.LineKey{ProductID: productID, Size: size}

	s.mu.Lock()
	_, existed := s.lines[key]
	s.mu.Unlock()

	confirm := func(ctx context.Context) error {
		if existed {
			return s.remote.SetLine(ctx, productID, size, qty)
		}
		return s.remote.AddLine(ctx, productID, size, qty)
	}
	return s.mutateLine(ctx, key, qty, confirm)
}

// Remove deletes a line. This is the confirmed second phase of the
// decrement-to-zero flow; Decrement never reaches the remote on its own.
func (s *Store) Remove(ctx context.Context, productID, size string) error {
	if size == "" {
		return ErrMissingSize
	}
	key := domain.LineKey{ProductID: productID, Size: size}

	s.mu.Lock()
	_, existed := s.lines[key]
	s.mu.Unlock()
	if !existed {
		return ErrLineNotFound
	}

	return s.mutateLine(ctx, key, 0, func(ctx context.Context) error {
		return s.remote.RemoveLine(ctx, productID, size)
	})
}

// Decrement lowers a line's quantity by one. Crossing the 1 -> 0 boundary
// returns ErrConfirmRemoval without touching local or remote state.
func (s *Store) Decrement(ctx context.Context, productID, size string) error {
	key := domain.LineKey{ProductID: productID, Size: size}

	s.mu.Lock()
	qty, existed := s.lines[key]
	s.mu.Unlock()

	if !existed {
		return ErrLineNotFound
	}
	if qty <= 1 {
		return ErrConfirmRemoval
	}
	return s.SetQuantity(ctx, productID, size, qty-1)
}

// mutateLine runs one optimistic command against a single line. qty=0
// means delete. Only the mutated line is captured and restored, so
// concurrent successful mutations to other lines survive a rollback.
func (s *Store) mutateLine(ctx context.Context, key domain.LineKey, qty int, confirm func(context.Context) error) error {
	cmd := command{
		apply: func() func() {
			s.mu.Lock()
			prev, had := s.lines[key]
			s.gen[key]++
			g := s.gen[key]
			if qty > 0 {
				s.lines[key] = qty
			} else {
				delete(s.lines, key)
			}
			s.mu.Unlock()

			return func() {
				s.mu.Lock()
				defer s.mu.Unlock()
				if s.gen[key] != g {
					// A newer mutation owns this line now.
					return
				}
				if had {
					s.lines[key] = prev
				} else {
					delete(s.lines, key)
				}
			}
		},
		confirm: confirm,
	}

	err := cmd.run(ctx)
	if err != nil {
		s.logger.Warn("cart mutation rolled back",
			"product_id", key.ProductID, "size", key.Size, "error", err)
		if errors.Is(err, api.ErrUnauthorized) && s.onAuthExpired != nil {
			s.onAuthExpired()
		}
	}
	return err
}

// Sync pulls the remote cart and adopts it wholesale, e.g. right after
// login when the local mirror is empty.
func (s *Store) Sync(ctx context.Context) error {
	lines, err := s.remote.GetCart(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) && s.onAuthExpired != nil {
			s.onAuthExpired()
		}
		return err
	}
	s.Replace(lines)
	return nil
}

// Replace adopts the remote snapshot, e.g. after login. Lines with
// non-positive quantities are dropped rather than stored.
func (s *Store) Replace(lines []domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = make(map[domain.LineKey]int, len(lines))
	for _, l := range lines {
		if l.Quantity > 0 {
			s.lines[l.Key()] = l.Quantity
		}
	}
}

// Clear drops all local lines. Used by the forced-logout path; the remote
// cart is left to the backend's session handling.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = make(map[domain.LineKey]int)
}

// Lines returns the current lines, sorted nowhere in particular.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartLine, 0, len(s.lines))
	for key, qty := range s.lines {
		out = append(out, domain.CartLine{ProductID: key.ProductID, Size: key.Size, Quantity: qty})
	}
	return out
}

// Quantity returns the quantity for one line, zero when absent.
func (s *Store) Quantity(productID, size string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines[domain.LineKey{ProductID: productID, Size: size}]
}

// Amount is the cart total in minor currency units. Lines whose (product,
// size) no longer resolve against the catalog contribute zero; a stale
// reference is not an error.
func (s *Store) Amount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for key, qty := range s.lines {
		if opt, ok := s.prices.Resolve(key.ProductID, key.Size); ok {
			total += opt.UnitPrice * int64(qty)
		}
	}
	return total
}

// Weight is the cart total weight in grams, with the same stale-reference
// rule as Amount.
func (s *Store) Weight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int
	for key, qty := range s.lines {
		if opt, ok := s.prices.Resolve(key.ProductID, key.Size); ok {
			total += opt.UnitWeight * qty
		}
	}
	return total
}

// Count is the sum of all quantities.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, qty := range s.lines {
		n += qty
	}
	return n
}
