// Package endpoints registers the identity-facing HTTP handlers:
// browser login/logout and account management over the session channel,
// and the crate ownership and whoami APIs over the bearer-token
// channel.
package endpoints
