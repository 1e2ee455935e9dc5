// Package lifecycle holds shared constants for application start and stop handling.
package lifecycle

import "time"

// DefaultTimeout bounds startup probes and graceful shutdowns.
const DefaultTimeout = 30 * time.Second
