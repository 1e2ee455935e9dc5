// Package platform contains the HTTP clients for the external review platforms.
package platform

import (
	"net/http"
	"time"

	"pulse/internal/domain/entity"
	"pulse/internal/domain/service"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const userAgent = "pulse/1.0"

// newClient builds a resty client with the shared fetch timeout. Every
// platform call is bounded by this timeout on top of the caller's context.
func newClient(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
}

// transportError wraps a failed request as transient. Timeouts, DNS failures
// and refused connections all land here and are retried by the caller.
func transportError(platform entity.Platform, err error) error {
	return service.NewTransientError(errors.Wrapf(err, "%s request failed", platform))
}

// statusError maps a non-2xx platform response to a domain error. 404 means
// the external business id does not exist and is never retried; rate limits
// and server-side failures are transient.
func statusError(platform entity.Platform, resp *resty.Response) error {
	code := resp.StatusCode()

	switch {
	case code == http.StatusNotFound:
		return service.ErrListingNotFound
	case code == http.StatusTooManyRequests || code >= http.StatusInternalServerError:
		return service.NewTransientError(errors.Errorf("%s returned status %d: %s", platform, code, resp.Body()))
	default:
		return errors.Errorf("%s returned status %d: %s", platform, code, resp.Body())
	}
}
