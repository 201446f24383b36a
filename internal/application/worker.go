package application

import "context"

// Worker is a background refresher of the rate cache.
// Implementations run until the context is canceled.
type Worker interface {
	Start(ctx context.Context)
}
