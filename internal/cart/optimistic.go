package cart

import "context"

// command is one optimistic mutation: apply the change locally, capture a
// snapshot-based restore, then confirm against the remote source of truth.
// When the remote call fails the restore puts the captured state back.
type command struct {
	apply   func() (restore func())
	confirm func(ctx context.Context) error
}

func (c command) run(ctx context.Context) error {
	restore := c.apply()
	if err := c.confirm(ctx); err != nil {
		restore()
		return err
	}
	return nil
}
