package storage

import (
	"errors"
	"strings"
)

// Error taxonomy for backend operations. Connection and authentication
// failures are fatal to the session; everything else is recoverable and
// resolves into a status message.
var (
	// ErrConnection indicates the backend connection failed or was lost.
	ErrConnection = errors.New("connection failed")
	// ErrAuth indicates the backend rejected the credentials.
	ErrAuth = errors.New("authentication failed")
	// ErrListing indicates a directory listing could not be produced.
	ErrListing = errors.New("listing failed")
	// ErrTransfer indicates a download or upload failed partway.
	ErrTransfer = errors.New("transfer failed")
	// ErrCancelled indicates the progress callback stopped a transfer.
	ErrCancelled = errors.New("transfer cancelled")
)

// IsFatal reports whether an error ends the session. Fatal errors replace
// the whole screen; recoverable ones become a status line.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConnection) || errors.Is(err, ErrAuth)
}

// IsCancelled reports whether a transfer stopped because of cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsNetworkError checks if an error looks network-related, useful when a
// backend SDK returns untyped errors.
//
// Checks for common error strings across platforms:
//   - connection refused/reset, dial and i/o timeouts
//   - network unreachable
//   - unexpected EOF, broken pipe
//   - TLS handshake failures
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	networkIndicators := []string{
		"connection",
		"timeout",
		"network",
		"eof",
		"broken pipe",
		"tls handshake",
	}

	for _, indicator := range networkIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// IsAuthError checks if an error looks authentication-related.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	authIndicators := []string{
		"403",
		"401",
		"unauthorized",
		"access denied",
		"permission denied",
		"login incorrect",
		"authentication",
		"invalid credentials",
	}

	for _, indicator := range authIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}
