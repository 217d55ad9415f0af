package handler

import (
	"encoding/json"
	"time"
)

// errorResponse is the envelope for registration and bot-gate failures.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse is the envelope for every other outcome, success or not.
type messageResponse struct {
	Message string `json:"message"`
}

type verifyResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// --- Auth requests ---

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	BotToken string `json:"cf-turnstile-response"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	BotToken string `json:"cf-turnstile-response"`
}

// --- Patient requests ---

// updateRequest keeps newData raw so an absent or null value can be told
// apart from an object with missing fields.
type updateRequest struct {
	NewData json.RawMessage `json:"newData"`
}

type addressPayload struct {
	Line            []string `json:"line"`
	City            string   `json:"city"`
	StateOrProvince string   `json:"stateOrProvince"`
	PostalCode      string   `json:"postalCode"`
	Country         string   `json:"country"`
}

type healthConditionPayload struct {
	Condition string     `json:"condition" validate:"required"`
	OnsetDate *time.Time `json:"onsetDate"`
}

type medicationPayload struct {
	MedicationCode string `json:"medicationCode" validate:"required"`
	Dosage         string `json:"dosage"`
}

type contactPayload struct {
	Name         string `json:"name" validate:"required"`
	Relationship string `json:"relationship"`
	Telecom      string `json:"telecom"`
}

// nameList accepts either a list of name parts or a single string.
type nameList []string

func (n *nameList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*n = nameList{single}
		return nil
	}
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	*n = parts
	return nil
}

// patientPayload is the wire shape of newData.
type patientPayload struct {
	ID               string                   `json:"id"`
	Active           bool                     `json:"active"`
	Name             nameList                 `json:"name"`
	Telecom          []string                 `json:"telecom"`
	Gender           string                   `json:"gender"           validate:"omitempty,oneof=male female other unknown"`
	BirthDate        *time.Time               `json:"birthDate"`
	Address          *addressPayload          `json:"address"`
	HealthConditions []healthConditionPayload `json:"healthConditions" validate:"omitempty,dive"`
	Medications      []medicationPayload      `json:"medications"      validate:"omitempty,dive"`
	Contacts         []contactPayload         `json:"contacts"         validate:"omitempty,dive"`
}
