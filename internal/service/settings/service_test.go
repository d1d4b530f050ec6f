package settings

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
	return NewService(client, time.Minute, testLogger()), &requests
}

func settingsHandler(configured bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"configs": model.Settings{
				model.SettingOpenAIKey:   {Configured: configured},
				model.SettingMaxFileSize: {Value: "10485760", Configured: true},
			},
		})
	})
}

func TestGetServesSecondReadFromCache(t *testing.T) {
	svc, requests := newService(t, settingsHandler(true))
	ctx := context.Background()

	first, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, first[model.SettingOpenAIKey].Configured)

	second, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, *requests, "second read must not hit the remote service")
}

func TestUpdateInvalidatesCache(t *testing.T) {
	configured := false
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/config", func(w http.ResponseWriter, r *http.Request) {
		settingsHandler(configured).ServeHTTP(w, r)
	})
	mux.HandleFunc("PUT /api/config/{key}", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Value string `json:"value"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sk-test", body.Value)
		configured = true
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})

	svc, _ := newService(t, mux)
	ctx := context.Background()

	before, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.False(t, before[model.SettingOpenAIKey].Configured)

	require.NoError(t, svc.Update(ctx, model.SettingOpenAIKey, "sk-test"))

	after, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, after[model.SettingOpenAIKey].Configured,
		"read after write must observe the new value")
}

func TestGetErrorNotCached(t *testing.T) {
	healthy := false
	svc, requests := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		settingsHandler(true).ServeHTTP(w, r)
	}))
	ctx := context.Background()

	_, err := svc.Get(ctx)
	require.Error(t, err)

	healthy = true
	settings, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, settings[model.SettingMaxFileSize].Configured)
	assert.Equal(t, 2, *requests)
}

func TestTestExtractionPassesMessageThrough(t *testing.T) {
	svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/config/test-openai", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": "Conexão com OpenAI funcionando",
		})
	}))

	message, err := svc.TestExtraction(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Conexão com OpenAI funcionando", message)
}
