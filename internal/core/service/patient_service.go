package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/medrecords/patient-portal/internal/core/domain"
	"github.com/medrecords/patient-portal/internal/core/ports"
)

// PatientService serves the record owned by the authenticated session.
type PatientService struct {
	repo ports.PatientRepository
	now  func() time.Time
	log  zerolog.Logger
}

func NewPatientService(repo ports.PatientRepository, log zerolog.Logger) *PatientService {
	return &PatientService{repo: repo, now: time.Now, log: log}
}

// GetRecord looks the record up by the owner's email. A missing record is not
// an error: callers render it as null.
func (s *PatientService) GetRecord(ctx context.Context, ownerEmail string) (*domain.Patient, error) {
	p, err := s.repo.FindByID(ctx, ownerEmail)
	if errors.Is(err, domain.ErrPatientNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateRecord replaces the record keyed by p.ID wholesale, creating it if
// needed. The key comes from the payload, not from the session.
func (s *PatientService) UpdateRecord(ctx context.Context, sessionEmail string, p *domain.Patient) error {
	if p == nil {
		return domain.ErrEmptyPatientData
	}
	if !p.HasRequiredFields() {
		return domain.ErrMissingRequiredFields
	}

	p.UpdatedAt = s.now().UTC()
	if err := s.repo.Upsert(ctx, p); err != nil {
		return err
	}

	s.log.Info().
		Str("record_id", p.ID).
		Str("session_email", sessionEmail).
		Bool("own_record", p.ID == sessionEmail).
		Msg("patient record saved")
	return nil
}
