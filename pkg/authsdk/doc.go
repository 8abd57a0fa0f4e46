// Package authsdk provides a Go client for the zCorvus authentication
// service. It exposes an SDKClient for unauthenticated operations
// (register, login, refresh, health) and a Session type for everything
// that requires a bearer token. Sessions transparently refresh their
// access token when a refresh token is attached.
package authsdk
