// Package maintenance issues the capability token that authorizes
// out-of-band mutation of otherwise immutable records. The token is a typed
// value obtainable only through Authorize with the configured maintenance
// key; business code paths never hold one.
package maintenance

import (
	"crypto/subtle"
	"errors"
)

var ErrInvalidKey = errors.New("invalid maintenance key")

// Authorization is the capability. The zero value (and nil) grants nothing.
type Authorization struct {
	granted bool
}

// Authorize validates the presented key against the configured key and
// returns a granted Authorization. An empty configured key disables the
// maintenance surface entirely.
func Authorize(configuredKey, presentedKey string) (*Authorization, error) {
	if configuredKey == "" || presentedKey == "" {
		return nil, ErrInvalidKey
	}
	if subtle.ConstantTimeCompare([]byte(configuredKey), []byte(presentedKey)) != 1 {
		return nil, ErrInvalidKey
	}
	return &Authorization{granted: true}, nil
}

// Granted reports whether this authorization permits maintenance mutation
func (a *Authorization) Granted() bool {
	return a != nil && a.granted
}
