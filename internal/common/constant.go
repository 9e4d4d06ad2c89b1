// Package common contains shared constants and sentinel errors used across
// taskhub components.
package common

// AuthHeaderName is the HTTP header that carries the bearer access token.
const AuthHeaderName = "Authorization"

// AuthHeaderScheme is the expected prefix of the Authorization header value.
const AuthHeaderScheme = "Bearer"
