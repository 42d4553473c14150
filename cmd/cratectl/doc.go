// Package main implements cratectl, the Cratevault server CLI.
//
// Cratevault is the identity and credential subsystem of a private
// crates-style package registry. It authenticates every inbound request
// over one of two credential channels, a browser session cookie or a
// bearer-style API key, and maintains the users, API keys, and crate
// ownership records behind them.
//
// # Architecture
//
// The server is organized into several packages:
//
//   - pkg/server: HTTP server, routing, and the auth dispatch middleware
//   - pkg/server/endpoints: HTTP endpoint handlers
//   - pkg/identity: request identity slot, channel classification, extractors
//   - pkg/store: credential store (Postgres and in-memory implementations)
//   - pkg/passhash: argon2id password and API key secret hashing
//   - pkg/model: database models
//   - pkg/db: database connection utilities
//   - pkg/config: configuration management
//
// # Quick Start
//
//	# Initialize the schema and the default admin account
//	cratectl db migrate
//
//	# Create a user
//	cratectl user create alice --role publisher
//
//	# Start the server
//	cratectl server
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - DATABASE_POOL_MAX: Connection pool size
//   - DATABASE_TIMEOUT: Connection acquire timeout in seconds
//   - CRATEVAULT_SESSION_KEY: Base64 cookie authentication key
//   - CRATEVAULT_CONFIG: Path to the YAML config file
//   - BIND_ADDRESS, PORT: Listen address (default: 0.0.0.0:8000)
package main
