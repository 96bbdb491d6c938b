package orchestrator

import (
	"errors"

	"github.com/ufolux/TransPop/internal/translation"
)

// errorMessage turns a gateway error into the text shown to the user.
// Provider messages are passed through verbatim.
func errorMessage(err error) string {
	var rejection *translation.RejectedError
	switch {
	case errors.As(err, &rejection):
		return rejection.Error()
	case errors.Is(err, translation.ErrInvalidConfiguration):
		return err.Error()
	case errors.Is(err, translation.ErrSession):
		return "Translation failed: could not start a translator session"
	case errors.Is(err, translation.ErrResponseParse):
		return "Translation failed: unexpected response from the translation service"
	case errors.Is(err, translation.ErrNetwork):
		return "Translation failed: could not reach the translation service"
	default:
		return "Translation failed: " + err.Error()
	}
}
