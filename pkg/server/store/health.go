package store

// HealthStore abstracts storage health checks.
type HealthStore interface {
	// CheckConnectivity verifies database connectivity.
	CheckConnectivity() error
}
