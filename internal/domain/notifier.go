package domain

import "context"

// Notifier delivers a short operator alert. Delivery is fire-and-forget:
// implementations log failures and never return them, so a conversation
// turn can never block or fail on an alert.
type Notifier interface {
	Notify(ctx context.Context, text string)
}
