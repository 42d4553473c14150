// Package identity carries the authenticated user through the request
// context and classifies request paths into credential channels.
//
// The auth middleware resolves and attaches an Identity at most once
// per request; handlers read it back through Require (failing in a
// channel-appropriate way) or From (optional, never failing).
package identity
