// Package patient fronts the records service's patient registry:
// registration, edits, search and the active flag. Patients are only
// ever soft-deleted; the flag toggle is reversible.
package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/clinrec/console/internal/model"
	"github.com/clinrec/console/internal/remote"
	"github.com/clinrec/console/pkg/logger"
)

type PatientService interface {
	Register(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error)
	Update(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error)
	Get(ctx context.Context, id int64) (*model.Patient, error)
	List(ctx context.Context, search string, page, perPage int) ([]*model.Patient, int, error)
	Deactivate(ctx context.Context, id int64) error
	Activate(ctx context.Context, id int64) error
}

type Service struct {
	client *remote.Client
	logger *logger.Logger
	now    func() time.Time
}

func NewService(client *remote.Client, log *logger.Logger) *Service {
	return &Service{
		client: client,
		logger: log.WithComponent("patient"),
		now:    time.Now,
	}
}

func (s *Service) Register(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	patient, err := s.client.CreatePatient(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to register patient: %w", err)
	}
	s.derive(patient)

	s.logger.Info("patient registered", "patient_id", patient.ID)
	return patient, nil
}

func (s *Service) Update(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.client.UpdatePatient(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update patient %d: %w", id, err)
	}
	s.derive(patient)
	return patient, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Patient, error) {
	patient, err := s.client.GetPatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient %d: %w", id, err)
	}
	s.derive(patient)
	return patient, nil
}

func (s *Service) List(ctx context.Context, search string, page, perPage int) ([]*model.Patient, int, error) {
	patients, total, err := s.client.ListPatients(ctx, search, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	for _, p := range patients {
		s.derive(p)
	}
	return patients, total, nil
}

// Deactivate soft-deletes: active flips to false, history is kept.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if err := s.client.DeactivatePatient(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate patient %d: %w", id, err)
	}
	s.logger.Info("patient deactivated", "patient_id", id)
	return nil
}

func (s *Service) Activate(ctx context.Context, id int64) error {
	if err := s.client.ActivatePatient(ctx, id); err != nil {
		return fmt.Errorf("failed to activate patient %d: %w", id, err)
	}
	s.logger.Info("patient reactivated", "patient_id", id)
	return nil
}

// derive fills fields computed at read time. The age is always derived
// locally so a stale value from the wire can't drift.
func (s *Service) derive(p *model.Patient) {
	if p == nil {
		return
	}
	p.Age = p.AgeAt(s.now())
}
