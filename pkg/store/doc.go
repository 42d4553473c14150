// Package store provides durable access to the identity data model:
// users, API keys, crates, and crate ownership.
//
// The Store interface abstracts the backend so handlers and middleware
// can be tested without a database; GormStore is the Postgres
// implementation and Memory is an in-memory double with the same
// semantics.
//
// All read-side verification operations (VerifyPassword, VerifyAPIKey)
// collapse every failure mode into a single "no identity" outcome so a
// caller probing credentials cannot learn which part of the check
// failed.
package store
