// Package lookup resolves player names to TruMedia player ids.
//
// Access is a two-step exchange: a long-lived master key is traded for a
// short-lived temporary token, and the token authorises one request for the
// full NCAA baseball player table. Tokens carry an explicit expiry so a cached
// token is never reused past its lifetime.
package lookup
