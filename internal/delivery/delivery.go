// Package delivery defines the entry points through which the outside world
// reaches the application.
package delivery

import "context"

// Delivery is implemented by every server the process can run.
type Delivery interface {
	Serve(ctx context.Context) error
}
