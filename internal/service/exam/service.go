// Package exam tracks the lifecycle of uploaded exams through the
// extraction pipeline: pending → processing → completed, or an error
// state recoverable only through an explicit reprocess.
package exam

import (
	"context"
	"fmt"
	"io"

	"github.com/clinrec/console/internal/model"
	"github.com/clinrec/console/internal/remote"
	"github.com/clinrec/console/internal/upload"
	"github.com/clinrec/console/pkg/logger"
)

// Upload is a candidate exam file plus its descriptor.
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Reader      io.Reader
}

type ExamService interface {
	Submit(ctx context.Context, patientID int64, up Upload, meta *model.ExamMetadata) (*model.Exam, error)
	Refresh(ctx context.Context, examID int64) (*model.Exam, error)
	Reprocess(ctx context.Context, examID int64) (*model.Exam, error)
	Remove(ctx context.Context, examID int64) error
	ListByPatient(ctx context.Context, patientID int64, page, perPage int) ([]*model.Exam, int, error)
	ListAllByPatient(ctx context.Context, patientID int64) ([]*model.Exam, error)
}

type Service struct {
	client *remote.Client
	gate   *upload.Gate
	logger *logger.Logger
}

func NewService(client *remote.Client, gate *upload.Gate, log *logger.Logger) *Service {
	return &Service{
		client: client,
		gate:   gate,
		logger: log.WithComponent("exam"),
	}
}

// Submit validates the candidate locally, then hands it to the records
// service. A fresh exam always starts out pending.
func (s *Service) Submit(ctx context.Context, patientID int64, up Upload, meta *model.ExamMetadata) (*model.Exam, error) {
	if err := s.gate.Validate(upload.FileInfo{
		Filename:    up.Filename,
		Size:        up.Size,
		ContentType: up.ContentType,
	}); err != nil {
		return nil, err
	}

	exam, err := s.client.UploadExam(ctx, patientID, remote.UploadFile{
		Filename:    up.Filename,
		ContentType: up.ContentType,
		Reader:      up.Reader,
	}, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to submit exam: %w", err)
	}

	if exam.FileType == "" {
		exam.FileType = upload.Classify(up.ContentType)
	}
	normalize(exam)
	s.logger.Info("exam submitted",
		"exam_id", exam.ID,
		"patient_id", patientID,
		"filename", up.Filename,
		"status", string(exam.ProcessingStatus))
	return exam, nil
}

// Refresh fetches one on-demand status snapshot. The tracker performs
// no polling of its own; cadence is the caller's policy.
func (s *Service) Refresh(ctx context.Context, examID int64) (*model.Exam, error) {
	exam, err := s.client.GetExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh exam %d: %w", examID, err)
	}
	normalize(exam)
	return exam, nil
}

// Reprocess asks the pipeline to restart extraction and returns the
// resulting snapshot. Meaningful for error exams; accepted for any
// status since the records service is authoritative and may no-op.
func (s *Service) Reprocess(ctx context.Context, examID int64) (*model.Exam, error) {
	if err := s.client.ReprocessExam(ctx, examID); err != nil {
		return nil, fmt.Errorf("failed to reprocess exam %d: %w", examID, err)
	}

	exam, err := s.Refresh(ctx, examID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("exam reprocess requested",
		"exam_id", examID,
		"status", string(exam.ProcessingStatus))
	return exam, nil
}

// Remove hard-deletes an exam. Irreversible; the caller must have
// obtained explicit confirmation.
func (s *Service) Remove(ctx context.Context, examID int64) error {
	if err := s.client.DeleteExam(ctx, examID); err != nil {
		return fmt.Errorf("failed to remove exam %d: %w", examID, err)
	}
	s.logger.Info("exam removed", "exam_id", examID)
	return nil
}

// ListByPatient fetches one page of a patient's exams.
func (s *Service) ListByPatient(ctx context.Context, patientID int64, page, perPage int) ([]*model.Exam, int, error) {
	exams, total, err := s.client.ListExams(ctx, patientID, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list exams for patient %d: %w", patientID, err)
	}
	for _, exam := range exams {
		normalize(exam)
	}
	return exams, total, nil
}

// ListAllByPatient pages through the patient's full exam history so
// the reports can aggregate over one consistent snapshot.
func (s *Service) ListAllByPatient(ctx context.Context, patientID int64) ([]*model.Exam, error) {
	const perPage = 100

	var all []*model.Exam
	for page := 1; ; page++ {
		exams, total, err := s.client.ListExams(ctx, patientID, page, perPage)
		if err != nil {
			return nil, fmt.Errorf("failed to list exams for patient %d: %w", patientID, err)
		}
		for _, exam := range exams {
			normalize(exam)
		}
		all = append(all, exams...)
		if len(exams) == 0 || len(all) >= total {
			break
		}
	}
	return all, nil
}

// normalize repairs inconsistent remote payloads before anything else
// sees them.
func normalize(exam *model.Exam) {
	if exam != nil {
		exam.Normalize()
	}
}
