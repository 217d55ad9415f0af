package handler

import (
	"encoding/json"

	"github.com/medrecords/patient-portal/internal/core/domain"
)

// --- Request → Domain ---

func toDomainPatient(p patientPayload) *domain.Patient {
	out := &domain.Patient{
		ID:        p.ID,
		Active:    p.Active,
		Name:      []string(p.Name),
		Telecom:   p.Telecom,
		Gender:    p.Gender,
		BirthDate: p.BirthDate,
	}
	if p.Address != nil {
		out.Address = &domain.Address{
			Line:            p.Address.Line,
			City:            p.Address.City,
			StateOrProvince: p.Address.StateOrProvince,
			PostalCode:      p.Address.PostalCode,
			Country:         p.Address.Country,
		}
	}
	for _, hc := range p.HealthConditions {
		out.HealthConditions = append(out.HealthConditions, domain.HealthCondition{
			Condition: hc.Condition,
			OnsetDate: hc.OnsetDate,
		})
	}
	for _, m := range p.Medications {
		out.Medications = append(out.Medications, domain.Medication{
			MedicationCode: m.MedicationCode,
			Dosage:         m.Dosage,
		})
	}
	for _, ct := range p.Contacts {
		out.Contacts = append(out.Contacts, domain.Contact{
			Name:         ct.Name,
			Relationship: ct.Relationship,
			Telecom:      ct.Telecom,
		})
	}
	return out
}

// --- Required fields ---

// hasRequiredFields checks newData before it is decoded into typed fields:
// id must be a non-empty string, active must be true and name must hold at
// least one non-empty part, given either as a string or a list.
func hasRequiredFields(fields map[string]json.RawMessage) bool {
	var id string
	if json.Unmarshal(fields["id"], &id) != nil || id == "" {
		return false
	}
	var active bool
	if json.Unmarshal(fields["active"], &active) != nil || !active {
		return false
	}
	var name nameList
	if json.Unmarshal(fields["name"], &name) != nil {
		return false
	}
	for _, part := range name {
		if part != "" {
			return true
		}
	}
	return false
}
