package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/clinrec/console/internal/model"
	"github.com/clinrec/console/pkg/errors"
)

type examListResponse struct {
	envelope
	Exams      []*model.Exam `json:"exams"`
	Pagination pageMeta      `json:"pagination"`
}

type examResponse struct {
	envelope
	Exam *model.Exam `json:"exam"`
}

// UploadFile is the opaque payload of an exam upload. The console does
// not interpret the bytes; they go straight to the records service.
type UploadFile struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// ListExams fetches one page of a patient's exams, most recent first.
func (c *Client) ListExams(ctx context.Context, patientID int64, page, perPage int) ([]*model.Exam, int, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))

	var out examListResponse
	path := fmt.Sprintf("/api/patients/%d/exams", patientID)
	if err := c.do(ctx, "list_exams", http.MethodGet, path, query, nil, "", &out); err != nil {
		return nil, 0, err
	}
	return out.Exams, out.Pagination.Total, nil
}

func (c *Client) GetExam(ctx context.Context, id int64) (*model.Exam, error) {
	var out examResponse
	path := fmt.Sprintf("/api/exams/%d", id)
	if err := c.do(ctx, "get_exam", http.MethodGet, path, nil, nil, "", &out); err != nil {
		return nil, err
	}
	return out.Exam, nil
}

// UploadExam sends the file plus optional clinical metadata as one
// multipart request. Omitted metadata fields are simply not sent.
func (c *Client) UploadExam(ctx context.Context, patientID int64, file UploadFile, meta *model.ExamMetadata) (*model.Exam, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreatePart(fileHeader(file.Filename, file.ContentType))
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("failed to build upload form: %w", err))
	}
	if _, err := io.Copy(part, file.Reader); err != nil {
		return nil, errors.Internal(fmt.Errorf("failed to copy upload payload: %w", err))
	}

	if meta != nil {
		fields := map[string]string{
			"exam_type":   meta.ExamType,
			"exam_date":   meta.ExamDate,
			"lab_name":    meta.LabName,
			"doctor_name": meta.DoctorName,
		}
		for name, value := range fields {
			if value == "" {
				continue
			}
			if err := writer.WriteField(name, value); err != nil {
				return nil, errors.Internal(fmt.Errorf("failed to write form field %s: %w", name, err))
			}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, errors.Internal(fmt.Errorf("failed to finalize upload form: %w", err))
	}

	var out examResponse
	path := fmt.Sprintf("/api/patients/%d/exams", patientID)
	if err := c.do(ctx, "upload_exam", http.MethodPost, path, nil, &buf, writer.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return out.Exam, nil
}

// ReprocessExam asks the pipeline to restart extraction. The records
// service is authoritative: reprocessing a non-error exam may no-op.
func (c *Client) ReprocessExam(ctx context.Context, id int64) error {
	var out envelope
	path := fmt.Sprintf("/api/exams/%d/reprocess", id)
	return c.do(ctx, "reprocess_exam", http.MethodPost, path, nil, nil, "", &out)
}

// DeleteExam removes an exam permanently. Irreversible; confirmation
// is the caller's job.
func (c *Client) DeleteExam(ctx context.Context, id int64) error {
	var out envelope
	path := fmt.Sprintf("/api/exams/%d", id)
	return c.do(ctx, "delete_exam", http.MethodDelete, path, nil, nil, "", &out)
}

func fileHeader(filename, contentType string) textproto.MIMEHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	return h
}
