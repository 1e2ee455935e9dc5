// Package delivery defines the contract every transport entry point
// implements, so main can start HTTP servers, workers and schedulers
// uniformly.
package delivery

import "context"

// Delivery is one serving surface of the application. Serve blocks until the
// surface stops; shutdown happens through the fx lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
