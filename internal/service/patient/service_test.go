package patient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinrec/console/internal/model"
	"github.com/clinrec/console/internal/remote"
	"github.com/clinrec/console/pkg/errors"
	"github.com/clinrec/console/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func newService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := remote.NewClient(remote.Config{BaseURL: srv.URL}, testLogger(), nil)
	require.NoError(t, err)
	svc := NewService(client, testLogger())
	svc.now = func() time.Time {
		return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	}
	return svc
}

func respond(w http.ResponseWriter, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

func TestGetDerivesAge(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, map[string]interface{}{
			"success": true,
			"patient": &model.Patient{
				ID:        7,
				FullName:  "Ana Souza",
				BirthDate: "1990-08-15",
				Age:       99, // wire value must be ignored
				Active:    true,
			},
		})
	}))

	patient, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 33, patient.Age, "age is derived from birth date, not the wire")
}

func TestRegisterSurfacesDuplicateCPFVerbatim(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		respond(w, map[string]interface{}{
			"success": false,
			"error":   "CPF já cadastrado",
		})
	}))

	_, err := svc.Register(context.Background(), &model.CreatePatientRequest{
		FullName:  "Ana Souza",
		CPF:       "529.982.247-25",
		BirthDate: "1990-08-15",
		Gender:    "feminino",
	})
	require.Error(t, err)
	assert.Equal(t, errors.KindDomain, errors.KindOf(err))
	assert.Contains(t, err.Error(), "CPF já cadastrado")
	assert.False(t, errors.IsRetryable(err))
}

func TestListDerivesAgeForEveryItem(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ana", r.URL.Query().Get("search"))
		respond(w, map[string]interface{}{
			"success":    true,
			"pagination": map[string]interface{}{"page": 1, "total": 2, "pages": 1},
			"patients": []*model.Patient{
				{ID: 1, BirthDate: "2000-01-01"},
				{ID: 2, BirthDate: "1950-12-31"},
			},
		})
	}))

	patients, total, err := svc.List(context.Background(), "ana", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, patients, 2)
	assert.Equal(t, 24, patients[0].Age)
	assert.Equal(t, 73, patients[1].Age)
}

func TestDeactivateAndActivateRoundTrip(t *testing.T) {
	var calls []string
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		respond(w, map[string]interface{}{"success": true})
	}))
	ctx := context.Background()

	require.NoError(t, svc.Deactivate(ctx, 7))
	require.NoError(t, svc.Activate(ctx, 7))

	assert.Equal(t, []string{
		"DELETE /api/patients/7",
		"POST /api/patients/7/activate",
	}, calls)
}

func TestGetUnknownPatient(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "Paciente não encontrado",
		})
	}))

	_, err := svc.Get(context.Background(), 999)
	require.Error(t, err)
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))
}
