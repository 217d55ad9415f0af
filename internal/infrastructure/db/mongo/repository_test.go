package mongo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/medrecords/patient-portal/internal/core/domain"
)

func mockOpts() *mtest.Options {
	return mtest.NewOptions().ClientType(mtest.Mock)
}

func TestUserRepository_Create(t *testing.T) {
	mt := mtest.New(t, mockOpts())

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewUserRepository(mt.DB)

		created, err := repo.Create(context.Background(), &domain.User{
			Email:        "alice@example.com",
			PasswordHash: "$argon2id$hash",
			CreatedAt:    time.Now(),
		})
		if err != nil {
			mt.Fatalf("create: %v", err)
		}
		if created.ID == "" || created.Email != "alice@example.com" {
			mt.Fatalf("unexpected user: %+v", created)
		}
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: test.users index: email_1",
		}))
		repo := NewUserRepository(mt.DB)

		_, err := repo.Create(context.Background(), &domain.User{Email: "alice@example.com"})
		if !errors.Is(err, domain.ErrUserExists) {
			mt.Fatalf("expected ErrUserExists, got %v", err)
		}
		var conflict *domain.ConflictError
		if !errors.As(err, &conflict) || conflict.Key != "email" {
			mt.Fatalf("expected ConflictError on email, got %#v", err)
		}
		if !strings.Contains(err.Error(), domain.DuplicateKeyMarker) {
			mt.Fatalf("expected marker in %q", err.Error())
		}
	})

	mt.Run("store failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    91,
			Name:    "ShutdownInProgress",
			Message: "shutting down",
		}))
		repo := NewUserRepository(mt.DB)

		_, err := repo.Create(context.Background(), &domain.User{Email: "alice@example.com"})
		if err == nil || errors.Is(err, domain.ErrUserExists) {
			mt.Fatalf("expected wrapped store error, got %v", err)
		}
	})
}

func TestUserRepository_FindByEmail(t *testing.T) {
	mt := mtest.New(t, mockOpts())

	mt.Run("found", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		created := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "email", Value: "bob@example.com"},
			{Key: "password", Value: "$argon2id$hash"},
			{Key: "createdAt", Value: created},
		}))
		repo := NewUserRepository(mt.DB)

		user, err := repo.FindByEmail(context.Background(), "bob@example.com")
		if err != nil {
			mt.Fatalf("find: %v", err)
		}
		want := &domain.User{ID: id.Hex(), Email: "bob@example.com", PasswordHash: "$argon2id$hash", CreatedAt: created}
		if diff := cmp.Diff(want, user); diff != "" {
			mt.Fatalf("user mismatch (-want +got):\n%s", diff)
		}
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))
		repo := NewUserRepository(mt.DB)

		if _, err := repo.FindByEmail(context.Background(), "ghost@example.com"); err != domain.ErrUserNotFound {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestPatientRepository_FindByID(t *testing.T) {
	mt := mtest.New(t, mockOpts())

	mt.Run("found", func(mt *mtest.T) {
		updated := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.patients", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "id", Value: "john@example.com"},
			{Key: "active", Value: true},
			{Key: "name", Value: bson.A{"John Doe"}},
			{Key: "telecom", Value: bson.A{"123-456-7890", "john@example.com"}},
			{Key: "gender", Value: "male"},
			{Key: "address", Value: bson.D{{Key: "city", Value: "Boston"}}},
			{Key: "medications", Value: bson.A{bson.D{{Key: "medicationCode", Value: "RX001"}, {Key: "dosage", Value: "5 mg"}}}},
			{Key: "updatedAt", Value: updated},
		}))
		repo := NewPatientRepository(mt.DB)

		got, err := repo.FindByID(context.Background(), "john@example.com")
		if err != nil {
			mt.Fatalf("find: %v", err)
		}
		want := &domain.Patient{
			ID:          "john@example.com",
			Active:      true,
			Name:        []string{"John Doe"},
			Telecom:     []string{"123-456-7890", "john@example.com"},
			Gender:      "male",
			Address:     &domain.Address{City: "Boston"},
			Medications: []domain.Medication{{MedicationCode: "RX001", Dosage: "5 mg"}},
			UpdatedAt:   updated,
		}
		if diff := cmp.Diff(want, got); diff != "" {
			mt.Fatalf("patient mismatch (-want +got):\n%s", diff)
		}
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.patients", mtest.FirstBatch))
		repo := NewPatientRepository(mt.DB)

		if _, err := repo.FindByID(context.Background(), "nobody@example.com"); err != domain.ErrPatientNotFound {
			mt.Fatalf("expected ErrPatientNotFound, got %v", err)
		}
	})

	mt.Run("store failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "boom"}))
		repo := NewPatientRepository(mt.DB)

		_, err := repo.FindByID(context.Background(), "john@example.com")
		if err == nil || err == domain.ErrPatientNotFound {
			mt.Fatalf("expected wrapped store error, got %v", err)
		}
	})
}

func TestPatientRepository_Upsert(t *testing.T) {
	mt := mtest.New(t, mockOpts())

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))
		repo := NewPatientRepository(mt.DB)

		err := repo.Upsert(context.Background(), &domain.Patient{ID: "john@example.com", Active: true, Name: []string{"John"}})
		if err != nil {
			mt.Fatalf("upsert: %v", err)
		}
	})

	mt.Run("duplicate id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))
		repo := NewPatientRepository(mt.DB)

		err := repo.Upsert(context.Background(), &domain.Patient{ID: "john@example.com"})
		var conflict *domain.ConflictError
		if !errors.As(err, &conflict) || conflict.Collection != "patients" {
			mt.Fatalf("expected patients ConflictError, got %v", err)
		}
	})

	mt.Run("store failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "boom"}))
		repo := NewPatientRepository(mt.DB)

		if err := repo.Upsert(context.Background(), &domain.Patient{ID: "john@example.com"}); err == nil {
			mt.Fatalf("expected error")
		}
	})
}

func TestPatientRepository_ReplaceAll(t *testing.T) {
	mt := mtest.New(t, mockOpts())

	mt.Run("seed", func(mt *mtest.T) {
		seed := SeedPatients(time.Now())
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 5}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: len(seed)}),
		)
		repo := NewPatientRepository(mt.DB)

		n, err := repo.ReplaceAll(context.Background(), seed)
		if err != nil {
			mt.Fatalf("replace all: %v", err)
		}
		if n != len(seed) {
			mt.Fatalf("expected %d inserted, got %d", len(seed), n)
		}
	})
}

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mockOpts())

	mt.Run("creates both indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())

		if err := EnsureIndexes(context.Background(), mt.DB); err != nil {
			mt.Fatalf("ensure indexes: %v", err)
		}
	})
}

func TestSeedPatients_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range SeedPatients(time.Now()) {
		if !p.HasRequiredFields() {
			t.Fatalf("seed record %q missing required fields", p.ID)
		}
		if seen[p.ID] {
			t.Fatalf("duplicate seed id %q", p.ID)
		}
		seen[p.ID] = true
	}
}
