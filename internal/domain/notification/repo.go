package notification

import "context"

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	// List returns rows newest first. limit <= 0 means no limit.
	List(ctx context.Context, f Filter, limit int) ([]*Notification, error)
}
