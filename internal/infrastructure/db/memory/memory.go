// Package memory holds map-backed repositories with the same contracts as the
// MongoDB ones. They back the HTTP and client tests.
package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/medrecords/patient-portal/internal/core/domain"
)

type UserRepository struct {
	mu     sync.RWMutex
	users  map[string]domain.User
	nextID int
	// Err, when set, is returned by every call.
	Err error
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if _, ok := r.users[user.Email]; ok {
		return nil, &domain.ConflictError{Collection: "users", Key: "email", Value: user.Email}
	}
	r.nextID++
	u := *user
	u.ID = strconv.Itoa(r.nextID)
	r.users[u.Email] = u
	return &u, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

type PatientRepository struct {
	mu       sync.RWMutex
	patients map[string]*domain.Patient
	// Err, when set, is returned by every call.
	Err error
}

func NewPatientRepository(seed ...*domain.Patient) *PatientRepository {
	r := &PatientRepository{patients: make(map[string]*domain.Patient, len(seed))}
	for _, p := range seed {
		r.patients[p.ID] = p.Clone()
	}
	return r
}

func (r *PatientRepository) FindByID(_ context.Context, id string) (*domain.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	p, ok := r.patients[id]
	if !ok {
		return nil, domain.ErrPatientNotFound
	}
	return p.Clone(), nil
}

func (r *PatientRepository) Upsert(_ context.Context, p *domain.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.patients[p.ID] = p.Clone()
	return nil
}
