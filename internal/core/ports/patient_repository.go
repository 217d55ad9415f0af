package ports

import (
	"context"

	"github.com/medrecords/patient-portal/internal/core/domain"
)

// PatientRepository persists patient records keyed by Patient.ID.
type PatientRepository interface {
	// FindByID returns domain.ErrPatientNotFound when no record matches.
	FindByID(ctx context.Context, id string) (*domain.Patient, error)
	// Upsert replaces the record matching p.ID, inserting it when absent.
	Upsert(ctx context.Context, p *domain.Patient) error
}
