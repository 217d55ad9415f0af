package domain

import "time"

// Gender values accepted on a patient record.
const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderOther   = "other"
	GenderUnknown = "unknown"
)

// Telecom positions. The order is a convention shared with the client.
const (
	TelecomPhone = 0
	TelecomEmail = 1
)

type Address struct {
	Line            []string `json:"line,omitempty" bson:"line,omitempty"`
	City            string   `json:"city,omitempty" bson:"city,omitempty"`
	StateOrProvince string   `json:"stateOrProvince,omitempty" bson:"stateOrProvince,omitempty"`
	PostalCode      string   `json:"postalCode,omitempty" bson:"postalCode,omitempty"`
	Country         string   `json:"country,omitempty" bson:"country,omitempty"`
}

type HealthCondition struct {
	Condition string     `json:"condition" bson:"condition"`
	OnsetDate *time.Time `json:"onsetDate,omitempty" bson:"onsetDate,omitempty"`
}

type Medication struct {
	MedicationCode string `json:"medicationCode" bson:"medicationCode"`
	Dosage         string `json:"dosage,omitempty" bson:"dosage,omitempty"`
}

type Contact struct {
	Name         string `json:"name" bson:"name"`
	Relationship string `json:"relationship,omitempty" bson:"relationship,omitempty"`
	Telecom      string `json:"telecom,omitempty" bson:"telecom,omitempty"`
}

// Patient is the clinical record of one person. ID holds the owner's email.
type Patient struct {
	ID               string            `json:"id" bson:"id"`
	Active           bool              `json:"active" bson:"active"`
	Name             []string          `json:"name" bson:"name"`
	Telecom          []string          `json:"telecom,omitempty" bson:"telecom,omitempty"`
	Gender           string            `json:"gender,omitempty" bson:"gender,omitempty"`
	BirthDate        *time.Time        `json:"birthDate,omitempty" bson:"birthDate,omitempty"`
	Address          *Address          `json:"address,omitempty" bson:"address,omitempty"`
	HealthConditions []HealthCondition `json:"healthConditions,omitempty" bson:"healthConditions,omitempty"`
	Medications      []Medication      `json:"medications,omitempty" bson:"medications,omitempty"`
	Contacts         []Contact         `json:"contacts,omitempty" bson:"contacts,omitempty"`
	UpdatedAt        time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// HasRequiredFields reports whether the record carries a key, a name and is
// active. An inactive record counts as incomplete.
func (p *Patient) HasRequiredFields() bool {
	if p == nil || p.ID == "" || !p.Active || len(p.Name) == 0 {
		return false
	}
	for _, part := range p.Name {
		if part != "" {
			return true
		}
	}
	return false
}

// Clone returns a deep copy, so edits on the copy never leak into p.
func (p *Patient) Clone() *Patient {
	if p == nil {
		return nil
	}
	c := *p
	c.Name = cloneSlice(p.Name)
	c.Telecom = cloneSlice(p.Telecom)
	if p.BirthDate != nil {
		bd := *p.BirthDate
		c.BirthDate = &bd
	}
	if p.Address != nil {
		addr := *p.Address
		addr.Line = cloneSlice(p.Address.Line)
		c.Address = &addr
	}
	if p.HealthConditions != nil {
		c.HealthConditions = make([]HealthCondition, len(p.HealthConditions))
		for i, hc := range p.HealthConditions {
			if hc.OnsetDate != nil {
				od := *hc.OnsetDate
				hc.OnsetDate = &od
			}
			c.HealthConditions[i] = hc
		}
	}
	c.Medications = cloneSlice(p.Medications)
	c.Contacts = cloneSlice(p.Contacts)
	return &c
}

func cloneSlice[T any](src []T) []T {
	if src == nil {
		return nil
	}
	return append(make([]T, 0, len(src)), src...)
}
