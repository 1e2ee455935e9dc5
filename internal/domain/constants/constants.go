// Package constants holds shared environment and provider names.
package constants

const (
	// Environment names.
	EnvDevelop    = "develop"
	EnvProduction = "production"

	// Pub/Sub provider names.
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)
