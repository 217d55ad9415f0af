package mongo

import (
	"time"

	"github.com/medrecords/patient-portal/internal/core/domain"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// SeedPatients returns the demo records loaded by the seed command. Each id
// is distinct because the patients collection enforces a unique id.
func SeedPatients(now time.Time) []*domain.Patient {
	return []*domain.Patient{
		{
			ID:        "placeholder@gmail.com",
			Active:    true,
			Name:      []string{"John Doe"},
			Telecom:   []string{"123-456-7890", "placeholder@gmail.com"},
			Gender:    domain.GenderMale,
			BirthDate: date(1983, time.January, 14),
			Address: &domain.Address{
				Line:            []string{"567 Placeholder Rd"},
				City:            "Boston",
				StateOrProvince: "MA",
				PostalCode:      "46532",
				Country:         "USA",
			},
			HealthConditions: []domain.HealthCondition{
				{Condition: "High blood pressure"},
				{Condition: "High cholesterol"},
				{Condition: "GERD"},
			},
			Medications: []domain.Medication{
				{MedicationCode: "RX001", Dosage: "5 mg"},
				{MedicationCode: "RX002", Dosage: "25 mg"},
				{MedicationCode: "RX003", Dosage: "40 mg"},
			},
			Contacts: []domain.Contact{
				{Name: "Jane Doe", Relationship: "sister", Telecom: "555-555-5555"},
			},
			UpdatedAt: now,
		},
		{
			ID:        "jose.martinez@gmail.com",
			Active:    true,
			Name:      []string{"Jose Martinez"},
			Telecom:   []string{"123-456-7890", "jose.martinez@gmail.com"},
			Gender:    domain.GenderMale,
			BirthDate: date(1933, time.September, 24),
			Address: &domain.Address{
				Line:            []string{"346 Placeholder St", "APT 304"},
				City:            "Boston",
				StateOrProvince: "MA",
				PostalCode:      "46532",
				Country:         "USA",
			},
			HealthConditions: []domain.HealthCondition{{Condition: "Arthritis"}},
			Medications:      []domain.Medication{{MedicationCode: "RX004", Dosage: "800 mg"}},
			Contacts: []domain.Contact{
				{Name: "John Doe", Relationship: "friend", Telecom: "098-765-4321"},
			},
			UpdatedAt: now,
		},
		{
			ID:        "admin@admin.ca",
			Active:    true,
			Name:      []string{"admin"},
			Telecom:   []string{"123-456-7890", "admin@admin.ca"},
			Gender:    domain.GenderMale,
			BirthDate: date(1900, time.January, 1),
			Address: &domain.Address{
				Line:            []string{"001 Placeholder St", "APT 001"},
				City:            "Toronto",
				StateOrProvince: "ON",
				PostalCode:      "M6M4A7",
				Country:         "CAN",
			},
			HealthConditions: []domain.HealthCondition{{Condition: "Arthritis"}},
			Medications:      []domain.Medication{{MedicationCode: "RX004", Dosage: "800 mg"}},
			Contacts: []domain.Contact{
				{Name: "John Doe", Relationship: "friend", Telecom: "098-765-4321"},
			},
			UpdatedAt: now,
		},
	}
}
