package ports

import (
	"context"

	"github.com/medrecords/patient-portal/internal/core/domain"
)

// PatientService reads and replaces the record owned by a session.
type PatientService interface {
	// GetRecord returns (nil, nil) when the owner has no record yet.
	GetRecord(ctx context.Context, ownerEmail string) (*domain.Patient, error)
	UpdateRecord(ctx context.Context, sessionEmail string, p *domain.Patient) error
}
