package translation

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrEmptyText            = errors.New("text is required")
	ErrUnknownProvider      = errors.New("translation provider is not registered")
	ErrNetwork              = errors.New("translation request failed")
	ErrSession              = errors.New("translator session unavailable")
	ErrResponseParse        = errors.New("unexpected translation response")
	ErrProviderRejected     = errors.New("translation provider rejected the request")
	ErrInvalidConfiguration = errors.New("invalid translation provider configuration")
)

// RejectedError carries the message a provider returned in its error payload.
// errors.Is(err, ErrProviderRejected) reports true for it.
type RejectedError struct {
	Provider ProviderKind
	Message  string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", ErrProviderRejected.Error(), e.Provider)
	}
	return e.Message
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrProviderRejected
}

func rejected(kind ProviderKind, message string) error {
	return &RejectedError{Provider: kind, Message: message}
}

// abbreviate shortens s to at most n bytes without splitting a UTF-8 sequence.
func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	suffix := "..."
	if n <= len(suffix) {
		suffix = ""
	} else {
		n -= len(suffix)
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + suffix
}
