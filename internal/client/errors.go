package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/medrecords/patient-portal/internal/core/domain"
)

// ErrBotTokenRequired is returned before any request is sent when login or
// registration is attempted without a bot-verification token.
var ErrBotTokenRequired = errors.New("client: bot verification token required")

const duplicateEmailMessage = "This email address is already associated with an account. Please enter a different email."

// APIError is a non-2xx response. Message is the server's text, verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// FriendlyMessage is the text to show a person. Only the duplicate email case
// is rewritten; everything else passes through.
func (e *APIError) FriendlyMessage() string {
	if strings.Contains(e.Message, domain.DuplicateKeyMarker) {
		return duplicateEmailMessage
	}
	if e.Message == "" {
		return "Something went wrong!"
	}
	return e.Message
}
