package remote

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinrec/console/internal/model"
	"github.com/clinrec/console/pkg/errors"
	"github.com/clinrec/console/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:  logger.ErrorLevel,
		Output: io.Discard,
	})
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL}, testLogger(), nil)
	require.NoError(t, err)
	return client, srv
}

func TestListPatientsDecodesEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/patients", r.URL.Path)
		assert.Equal(t, "ana", r.URL.Query().Get("search"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"success": true,
			"patients": [{"id": 7, "full_name": "Ana Souza", "cpf": "39053344705", "active": true}],
			"pagination": {"page": 2, "total": 25, "pages": 3}
		}`)
	}))

	patients, total, err := client.ListPatients(context.Background(), "ana", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, patients, 1)
	assert.Equal(t, int64(7), patients[0].ID)
	assert.Equal(t, "Ana Souza", patients[0].FullName)
}

func TestDomainRejectionSurfacedVerbatim(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"success": false, "error": "CPF já cadastrado"}`)
	}))

	_, err := client.CreatePatient(context.Background(), &model.CreatePatientRequest{FullName: "Ana"})
	require.Error(t, err)
	assert.Equal(t, errors.KindDomain, errors.KindOf(err))
	assert.Equal(t, "CPF já cadastrado", err.Error())
	assert.False(t, errors.IsRetryable(err))
}

func TestNotFoundMapped(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"success": false, "error": "Exame não encontrado"}`)
	}))

	_, err := client.GetExam(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))
}

func TestTransportFailureIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	client, err := NewClient(Config{BaseURL: srv.URL}, testLogger(), nil)
	require.NoError(t, err)

	_, err = client.GetPatient(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, errors.KindTransport, errors.KindOf(err))
	assert.True(t, errors.IsRetryable(err))
}

func TestServerErrorWithoutEnvelopeIsRetryable(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream exploded")
	}))

	_, err := client.GetPatient(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.IsRetryable(err))
}

func TestUploadExamSendsMultipart(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		payload, _ := io.ReadAll(file)

		assert.Equal(t, "hemograma.pdf", header.Filename)
		assert.Equal(t, "fake pdf bytes", string(payload))
		assert.Equal(t, "Hemograma", r.FormValue("exam_type"))
		assert.Equal(t, "2025-06-01", r.FormValue("exam_date"))
		// Empty metadata fields must not be sent at all.
		assert.NotContains(t, r.MultipartForm.Value, "lab_name")
		assert.NotContains(t, r.MultipartForm.Value, "doctor_name")

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success": true, "exam": {"id": 3, "patient_id": 7, "processing_status": "pending"}}`)
	}))

	exam, err := client.UploadExam(context.Background(), 7, UploadFile{
		Filename:    "hemograma.pdf",
		ContentType: "application/pdf",
		Reader:      strings.NewReader("fake pdf bytes"),
	}, &model.ExamMetadata{ExamType: "Hemograma", ExamDate: "2025-06-01"})

	require.NoError(t, err)
	assert.Equal(t, int64(3), exam.ID)
	assert.Equal(t, model.StatusPending, exam.ProcessingStatus)
}

func TestGetSettings(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success": true, "configs": {
			"openai_api_key": {"configured": true},
			"max_file_size": {"value": "10", "configured": true}
		}}`)
	}))

	settings, err := client.GetSettings(context.Background())
	require.NoError(t, err)
	assert.True(t, settings[model.SettingOpenAIKey].Configured)
	assert.Equal(t, "10", settings[model.SettingMaxFileSize].Value)
}

func TestEmptyDomainErrorGetsFallbackMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"success": false}`)
	}))

	err := client.DeleteExam(context.Background(), 5)
	require.Error(t, err)
	assert.NotEmpty(t, err.Error())
}
