package platform

import (
	"pulse/config"
	"pulse/internal/domain/entity"
	domainerrors "pulse/internal/domain/errors"
	"pulse/internal/domain/service"
)

// sourceRegistry implements the service.SourceRegistry interface by mapping
// each supported platform to its configured client.
type sourceRegistry struct {
	sources map[entity.Platform]service.ReviewSource
}

// NewSourceRegistry is the constructor for sourceRegistry. Every supported
// platform gets a client; calls against a platform with missing credentials
// fail at request time with the platform's own authorization error.
func NewSourceRegistry(cfg *config.Config) service.SourceRegistry {
	timeout := cfg.Ingestion.FetchTimeout

	return &sourceRegistry{
		sources: map[entity.Platform]service.ReviewSource{
			entity.PlatformGoogle:      NewGoogleSource(cfg.Platforms.Google.APIKey, timeout),
			entity.PlatformYelp:        NewYelpSource(cfg.Platforms.Yelp.APIKey, timeout),
			entity.PlatformFacebook:    NewFacebookSource(cfg.Platforms.Facebook.AccessToken, timeout),
			entity.PlatformTripAdvisor: NewTripAdvisorSource(cfg.Platforms.TripAdvisor.APIKey, timeout),
		},
	}
}

// Source returns the client for the given platform.
func (r *sourceRegistry) Source(platform entity.Platform) (service.ReviewSource, error) {
	source, ok := r.sources[platform]
	if !ok {
		return nil, domainerrors.ErrPlatformUnsupported
	}

	return source, nil
}
