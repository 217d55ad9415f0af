package domain

import (
	"errors"
	"fmt"
)

// DuplicateKeyMarker is carried in every conflict message. Browser clients
// match on it to show a friendlier text, so it must stay stable.
const DuplicateKeyMarker = "E11000"

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")

	ErrMissingToken = errors.New("no token received")
	ErrInvalidToken = errors.New("invalid token")

	ErrPatientNotFound       = errors.New("patient not found")
	ErrEmptyPatientData      = errors.New("updated patient data is empty")
	ErrMissingRequiredFields = errors.New("patient data missing required fields")
)

// ConflictError is returned by stores when a unique key is already taken.
type ConflictError struct {
	Collection string
	Key        string
	Value      string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s duplicate key error collection: %s index: %s_1 dup key: { %s: %q }",
		DuplicateKeyMarker, e.Collection, e.Key, e.Key, e.Value)
}

// Is lets callers match any user conflict with errors.Is(err, ErrUserExists).
func (e *ConflictError) Is(target error) bool {
	return target == ErrUserExists && e.Collection == "users"
}
