package domain

import "errors"

var (
	// ErrNetwork marks unreachable hosts and non-2xx responses.
	ErrNetwork = errors.New("network error")
	// ErrParse marks payloads with missing or malformed fields.
	ErrParse = errors.New("parse error")
	// ErrAuth marks a rejected mail-relay login.
	ErrAuth = errors.New("auth error")
	// ErrTransport marks mail-relay failures other than authentication.
	ErrTransport = errors.New("transport error")
)
