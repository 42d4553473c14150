// Package model contains the database models for the identity and
// credential subsystem: users, their API keys, crates, and the
// ownership edges between them.
package model
