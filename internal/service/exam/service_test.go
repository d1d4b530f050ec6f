package exam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinrec/console/internal/model"
	"github.com/clinrec/console/internal/remote"
	"github.com/clinrec/console/internal/upload"
	"github.com/clinrec/console/pkg/errors"
	"github.com/clinrec/console/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func newService(t *testing.T, handler http.Handler) (*Service, *int) {
	t.Helper()
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := remote.NewClient(remote.Config{BaseURL: srv.URL}, testLogger(), nil)
	require.NoError(t, err)
	return NewService(client, upload.NewGate(0), testLogger()), &requests
}

func writeExam(w http.ResponseWriter, exam *model.Exam) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "exam": exam})
}

func TestSubmitRejectedUploadNeverReachesNetwork(t *testing.T) {
	svc, requests := newService(t, http.NotFoundHandler())

	_, err := svc.Submit(context.Background(), 1, Upload{
		Filename:    "laudo.docx",
		Size:        5 << 20,
		ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Reader:      strings.NewReader("x"),
	}, nil)

	require.Error(t, err)
	assert.Equal(t, errors.KindValidation, errors.KindOf(err))
	assert.Zero(t, *requests, "validation rejection must be local and synchronous")
}

func TestSubmitStartsPending(t *testing.T) {
	svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeExam(w, &model.Exam{ID: 12, PatientID: 1, ProcessingStatus: model.StatusPending})
	}))

	exam, err := svc.Submit(context.Background(), 1, Upload{
		Filename:    "hemograma.jpg",
		Size:        9 << 20,
		ContentType: "image/jpeg",
		Reader:      strings.NewReader("jpeg bytes"),
	}, &model.ExamMetadata{ExamType: "Hemograma"})

	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, exam.ProcessingStatus)
	assert.Equal(t, "Pendente", exam.StatusDisplay)
}

func TestRefreshNormalizesInconsistentPayload(t *testing.T) {
	svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeExam(w, &model.Exam{
			ID:               5,
			ProcessingStatus: model.StatusCompleted,
			ProcessingError:  "OCR timed out",
			ExtractedText:    "garbage",
		})
	}))

	exam, err := svc.Refresh(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, model.StatusError, exam.ProcessingStatus)
	assert.Equal(t, "OCR timed out", exam.ProcessingError)
	assert.Empty(t, exam.ExtractedText)
}

func TestReprocessObservesIntermediateState(t *testing.T) {
	// After a reprocess, the next snapshot must show the exam back in
	// the pipeline, never already completed.
	svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/reprocess") {
			io.WriteString(w, `{"success": true}`)
			return
		}
		writeExam(w, &model.Exam{ID: 5, ProcessingStatus: model.StatusPending})
	}))

	exam, err := svc.Reprocess(context.Background(), 5)
	require.NoError(t, err)
	assert.Contains(t,
		[]model.ProcessingStatus{model.StatusPending, model.StatusProcessing},
		exam.ProcessingStatus)
}

func TestReprocessTransportFailureIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client, err := remote.NewClient(remote.Config{BaseURL: srv.URL}, testLogger(), nil)
	require.NoError(t, err)
	svc := NewService(client, upload.NewGate(0), testLogger())

	_, err = svc.Reprocess(context.Background(), 5)
	require.Error(t, err)
	assert.True(t, errors.IsRetryable(err), "transport failures must stay retryable")
}

func TestListAllByPatientPagesThrough(t *testing.T) {
	svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		exams := []*model.Exam{}
		switch page {
		case 1:
			for i := 1; i <= 100; i++ {
				exams = append(exams, &model.Exam{ID: int64(i), ProcessingStatus: model.StatusCompleted})
			}
		case 2:
			exams = append(exams, &model.Exam{ID: 101, ProcessingStatus: model.StatusError, ProcessingError: "boom"})
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"success": true, "exams": %s, "pagination": {"page": %d, "total": 101, "pages": 2}}`,
			mustJSON(exams), page)
	}))

	exams, err := svc.ListAllByPatient(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, exams, 101)
	assert.Equal(t, model.StatusError, exams[100].ProcessingStatus)
}

func mustJSON(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(raw)
}
