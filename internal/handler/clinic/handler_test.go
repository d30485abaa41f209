package clinic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/scheduler-api/internal/model"
	apperrors "github.com/jwalitptl/scheduler-api/pkg/errors"
)

type fakeClinicService struct {
	clinics map[uuid.UUID]*model.Clinic
}

func (s *fakeClinicService) CreateClinic(_ context.Context, req *model.CreateClinicRequest) (*model.Clinic, error) {
	clinic := &model.Clinic{
		Name:       req.Name,
		Address:    req.Address,
		OpenTime:   req.OpenTime,
		CloseTime:  req.CloseTime,
		LunchStart: req.LunchStart,
		LunchEnd:   req.LunchEnd,
	}
	clinic.ID = uuid.New()
	s.clinics[clinic.ID] = clinic
	return clinic, nil
}

func (s *fakeClinicService) GetClinic(_ context.Context, id uuid.UUID) (*model.Clinic, error) {
	clinic, ok := s.clinics[id]
	if !ok {
		return nil, apperrors.NotFound("clinic", nil)
	}
	return clinic, nil
}

func (s *fakeClinicService) UpdateClinic(_ context.Context, id uuid.UUID, req *model.UpdateClinicRequest) (*model.Clinic, error) {
	clinic, ok := s.clinics[id]
	if !ok {
		return nil, apperrors.NotFound("clinic", nil)
	}
	clinic.Name = req.Name
	return clinic, nil
}

func (s *fakeClinicService) ListClinics(context.Context) ([]*model.Clinic, error) {
	var clinics []*model.Clinic
	for _, c := range s.clinics {
		clinics = append(clinics, c)
	}
	return clinics, nil
}

func setupRouter(svc *fakeClinicService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func clinicPayload(name string) map[string]interface{} {
	day := func(hour int) string {
		return time.Date(2024, time.March, 4, hour, 0, 0, 0, time.UTC).Format(time.RFC3339)
	}
	return map[string]interface{}{
		"name":             name,
		"address":          "1 Main St",
		"opentime":         day(9),
		"closetime":        day(17),
		"lunch_start_time": day(12),
		"lunch_end_time":   day(13),
	}
}

func TestCreateClinic(t *testing.T) {
	svc := &fakeClinicService{clinics: make(map[uuid.UUID]*model.Clinic)}
	r := setupRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/clinics", clinicPayload("Downtown Clinic"))

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Downtown Clinic", resp.Data.Name)
	assert.NotEmpty(t, resp.Data.ID)
}

func TestCreateClinic_HoursOutOfOrder(t *testing.T) {
	svc := &fakeClinicService{clinics: make(map[uuid.UUID]*model.Clinic)}
	r := setupRouter(svc)

	payload := clinicPayload("Backwards Clinic")
	payload["closetime"] = payload["opentime"]

	w := doJSON(r, http.MethodPost, "/api/v1/clinics", payload)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.clinics)
}

func TestGetClinic_NotFound(t *testing.T) {
	svc := &fakeClinicService{clinics: make(map[uuid.UUID]*model.Clinic)}
	r := setupRouter(svc)

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/v1/clinics/%s", uuid.New()), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetClinic_MalformedID(t *testing.T) {
	svc := &fakeClinicService{clinics: make(map[uuid.UUID]*model.Clinic)}
	r := setupRouter(svc)

	w := doJSON(r, http.MethodGet, "/api/v1/clinics/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateClinic(t *testing.T) {
	svc := &fakeClinicService{clinics: make(map[uuid.UUID]*model.Clinic)}
	r := setupRouter(svc)

	created := doJSON(r, http.MethodPost, "/api/v1/clinics", clinicPayload("Old Name"))
	require.Equal(t, http.StatusCreated, created.Code)

	var createResp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &createResp))

	w := doJSON(r, http.MethodPut, "/api/v1/clinics/"+createResp.Data.ID, clinicPayload("New Name"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "New Name", resp.Data.Name)
}
