package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/clinrec/console/internal/model"
)

type settingsResponse struct {
	envelope
	Configs model.Settings `json:"configs"`
}

type testConnectionResponse struct {
	envelope
	Message string `json:"message,omitempty"`
}

// GetSettings reads the records service configuration entries.
func (c *Client) GetSettings(ctx context.Context) (model.Settings, error) {
	var out settingsResponse
	if err := c.do(ctx, "get_settings", http.MethodGet, "/api/config", nil, nil, "", &out); err != nil {
		return nil, err
	}
	return out.Configs, nil
}

// UpdateSetting writes one configuration entry.
func (c *Client) UpdateSetting(ctx context.Context, key, value string) error {
	body, err := jsonBody(map[string]string{"value": value})
	if err != nil {
		return err
	}

	var out envelope
	path := fmt.Sprintf("/api/config/%s", url.PathEscape(key))
	return c.do(ctx, "update_setting", http.MethodPut, path, nil, body, "application/json", &out)
}

// TestExtraction asks the records service to verify its extraction
// backend credentials. Returns the service's own status message.
func (c *Client) TestExtraction(ctx context.Context) (string, error) {
	var out testConnectionResponse
	if err := c.do(ctx, "test_extraction", http.MethodPost, "/api/config/test-openai", nil, nil, "", &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
