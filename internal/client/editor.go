package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/medrecords/patient-portal/internal/core/domain"
)

var (
	ErrNoRecord   = errors.New("client: no record loaded")
	ErrNotEditing = errors.New("client: not in edit mode")
)

// RecordEditor mirrors the dashboard screen: load a record, edit a working
// copy, then either reset to the snapshot taken at BeginEdit or save.
type RecordEditor struct {
	client   *Client
	record   *domain.Patient
	snapshot *domain.Patient
	editing  bool
}

func NewRecordEditor(c *Client) *RecordEditor {
	return &RecordEditor{client: c}
}

// Load fetches the record and leaves edit mode. A missing record yields a
// blank one keyed by email so it can be filled in and saved.
func (e *RecordEditor) Load(ctx context.Context, email string) (*domain.Patient, error) {
	p, err := e.client.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &domain.Patient{ID: email, Active: true}
	}
	e.record = p
	e.snapshot = nil
	e.editing = false
	return p.Clone(), nil
}

// Record returns a copy of the working record.
func (e *RecordEditor) Record() *domain.Patient { return e.record.Clone() }

func (e *RecordEditor) Editing() bool { return e.editing }

func (e *RecordEditor) BeginEdit() error {
	if e.record == nil {
		return ErrNoRecord
	}
	e.snapshot = e.record.Clone()
	e.editing = true
	return nil
}

// Apply runs fn against the working record.
func (e *RecordEditor) Apply(fn func(p *domain.Patient)) error {
	if !e.editing {
		return ErrNotEditing
	}
	fn(e.record)
	return nil
}

// SetTelecom sets the telecom entry at index, growing the slice as needed.
// Index 0 is the phone number and 1 the email.
func (e *RecordEditor) SetTelecom(index int, value string) error {
	if index < 0 {
		return fmt.Errorf("client: telecom index %d out of range", index)
	}
	return e.Apply(func(p *domain.Patient) {
		for len(p.Telecom) <= index {
			p.Telecom = append(p.Telecom, "")
		}
		p.Telecom[index] = value
	})
}

// SetAddressField edits one address field. For "line" only the first line is
// replaced and the rest are kept.
func (e *RecordEditor) SetAddressField(name, value string) error {
	switch name {
	case "line", "city", "stateOrProvince", "postalCode", "country":
	default:
		return fmt.Errorf("client: unknown address field %q", name)
	}
	return e.Apply(func(p *domain.Patient) {
		if p.Address == nil {
			p.Address = &domain.Address{}
		}
		a := p.Address
		switch name {
		case "line":
			if len(a.Line) == 0 {
				a.Line = []string{value}
			} else {
				a.Line[0] = value
			}
		case "city":
			a.City = value
		case "stateOrProvince":
			a.StateOrProvince = value
		case "postalCode":
			a.PostalCode = value
		case "country":
			a.Country = value
		}
	})
}

// Reset restores the snapshot and leaves edit mode.
func (e *RecordEditor) Reset() {
	if e.snapshot != nil {
		e.record = e.snapshot
		e.snapshot = nil
	}
	e.editing = false
}

// Save sends the working record and leaves edit mode on success.
func (e *RecordEditor) Save(ctx context.Context) (string, error) {
	if e.record == nil {
		return "", ErrNoRecord
	}
	msg, err := e.client.Update(ctx, e.record)
	if err != nil {
		return "", err
	}
	e.snapshot = nil
	e.editing = false
	return msg, nil
}
