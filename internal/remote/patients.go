package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/clinrec/console/internal/model"
)

type patientListResponse struct {
	envelope
	Patients   []*model.Patient `json:"patients"`
	Pagination pageMeta         `json:"pagination"`
}

type patientResponse struct {
	envelope
	Patient *model.Patient `json:"patient"`
}

// ListPatients fetches one page of the patient registry. Returns the
// page items and the server-reported total.
func (c *Client) ListPatients(ctx context.Context, search string, page, perPage int) ([]*model.Patient, int, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))

	var out patientListResponse
	if err := c.do(ctx, "list_patients", http.MethodGet, "/api/patients", query, nil, "", &out); err != nil {
		return nil, 0, err
	}
	return out.Patients, out.Pagination.Total, nil
}

func (c *Client) GetPatient(ctx context.Context, id int64) (*model.Patient, error) {
	var out patientResponse
	path := fmt.Sprintf("/api/patients/%d", id)
	if err := c.do(ctx, "get_patient", http.MethodGet, path, nil, nil, "", &out); err != nil {
		return nil, err
	}
	return out.Patient, nil
}

func (c *Client) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	var out patientResponse
	if err := c.do(ctx, "create_patient", http.MethodPost, "/api/patients", nil, body, "application/json", &out); err != nil {
		return nil, err
	}
	return out.Patient, nil
}

func (c *Client) UpdatePatient(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	var out patientResponse
	path := fmt.Sprintf("/api/patients/%d", id)
	if err := c.do(ctx, "update_patient", http.MethodPut, path, nil, body, "application/json", &out); err != nil {
		return nil, err
	}
	return out.Patient, nil
}

// DeactivatePatient soft-deletes: the records service flips active to
// false, it never physically removes a patient.
func (c *Client) DeactivatePatient(ctx context.Context, id int64) error {
	var out envelope
	path := fmt.Sprintf("/api/patients/%d", id)
	return c.do(ctx, "deactivate_patient", http.MethodDelete, path, nil, nil, "", &out)
}

// ActivatePatient reverses a soft delete.
func (c *Client) ActivatePatient(ctx context.Context, id int64) error {
	var out envelope
	path := fmt.Sprintf("/api/patients/%d/activate", id)
	return c.do(ctx, "activate_patient", http.MethodPost, path, nil, nil, "", &out)
}
