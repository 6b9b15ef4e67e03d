// Package main provides credstorectl, the CLI for the credstore personal
// credential vault server.
//
// credstore stores per-user service credentials behind an HTTP API. Access
// is gated by email/password accounts; authenticated callers hold an
// encrypted session cookie and can only ever see their own vault entries.
//
// # Architecture
//
// The server is organized into several packages:
//
//   - pkg/server: HTTP server and routing
//   - pkg/server/endpoints: REST API endpoint handlers
//   - pkg/server/store: Typed storage contracts and their gorm implementations
//   - pkg/session: Session token issuance and verification
//   - pkg/sealbox: Symmetric encryption for session tokens
//   - pkg/hasher: Password hashing
//   - pkg/model: Database models
//   - pkg/db: Database connection utilities
//   - pkg/audit: Audit logging
//   - pkg/config: Configuration management
//
// # Quick Start
//
// The server is run via the credstorectl CLI:
//
//	# Generate a session encryption key
//	export CREDSTORE_SESSION_KEY="$(credstorectl session-key generate)"
//
//	# Run database migrations
//	credstorectl db migrate
//
//	# Start the server
//	credstorectl server
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - CREDSTORE_SESSION_KEY: Base64-encoded 256-bit key for session encryption
//   - CREDSTORE_LOG_LEVEL: Log level (debug enables SQL logging)
//   - AUDIT_DATABASE_URL: Optional PostgreSQL connection string for audit events
//   - PORT: Server port (default: 8000)
package main
