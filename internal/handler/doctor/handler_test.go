package doctor

import (
	"bytes"
	"context"
	"encoding/json"
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

type fakeDoctorService struct {
	doctors map[uuid.UUID]*model.Doctor

	createErr error
}

func (s *fakeDoctorService) CreateDoctor(_ context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}

	base := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	doctor := &model.Doctor{FullName: req.FullName, AppointmentFee: req.AppointmentFee}
	doctor.ID = uuid.New()
	for i := 0; i < 3; i++ {
		doctor.Slots = append(doctor.Slots, model.Slot{
			ID:        uuid.New(),
			DoctorID:  doctor.ID,
			Number:    i + 1,
			StartTime: base.Add(time.Duration(i) * time.Hour),
			EndTime:   base.Add(time.Duration(i+1) * time.Hour),
			Available: true,
		})
	}
	s.doctors[doctor.ID] = doctor
	return doctor, nil
}

func (s *fakeDoctorService) GetDoctor(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, ok := s.doctors[id]
	if !ok {
		return nil, apperrors.NotFound("doctor", nil)
	}
	return doctor, nil
}

func (s *fakeDoctorService) ListDoctors(context.Context) ([]*model.Doctor, error) {
	var doctors []*model.Doctor
	for _, d := range s.doctors {
		doctors = append(doctors, d)
	}
	return doctors, nil
}

func setupRouter(svc *fakeDoctorService) *gin.Engine {
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

func TestCreateDoctor_ReturnsGeneratedSlots(t *testing.T) {
	svc := &fakeDoctorService{doctors: make(map[uuid.UUID]*model.Doctor)}
	r := setupRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/doctors", map[string]interface{}{
		"fullname":        "Dr. Jane Roe",
		"appointment_fee": 150,
		"clinic":          uuid.New().String(),
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			FullName string `json:"fullname"`
			Slots    []struct {
				Number    int  `json:"slot"`
				Available bool `json:"available"`
			} `json:"slots"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Dr. Jane Roe", resp.Data.FullName)
	require.Len(t, resp.Data.Slots, 3)
	assert.Equal(t, 1, resp.Data.Slots[0].Number)
	assert.True(t, resp.Data.Slots[0].Available)
}

func TestCreateDoctor_MissingClinic(t *testing.T) {
	svc := &fakeDoctorService{doctors: make(map[uuid.UUID]*model.Doctor)}
	r := setupRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/doctors", map[string]interface{}{
		"fullname":        "Dr. Jane Roe",
		"appointment_fee": 150,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.doctors)
}

func TestCreateDoctor_UnresolvableClinic(t *testing.T) {
	svc := &fakeDoctorService{
		doctors:   make(map[uuid.UUID]*model.Doctor),
		createErr: apperrors.InvalidInput("invalid clinic ID", nil),
	}
	r := setupRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/doctors", map[string]interface{}{
		"fullname":        "Dr. Jane Roe",
		"appointment_fee": 150,
		"clinic":          uuid.New().String(),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDoctor_NotFound(t *testing.T) {
	svc := &fakeDoctorService{doctors: make(map[uuid.UUID]*model.Doctor)}
	r := setupRouter(svc)

	w := doJSON(r, http.MethodGet, "/api/v1/doctors/"+uuid.New().String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
