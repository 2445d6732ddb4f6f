package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"OPDQueue/models"
	"OPDQueue/repositories"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokenService struct {
	admitFn   func(ctx context.Context, input repositories.AdmissionInput) (*models.QueueToken, error)
	getFn     func(ctx context.Context, id uint) (*models.QueueToken, error)
	updateFn  func(ctx context.Context, id uint, update repositories.TokenUpdate) (*models.QueueToken, error)
	deleteFn  func(ctx context.Context, id uint) error
	checkInFn func(ctx context.Context, id uint) (*models.QueueToken, error)
	queueFn   func(ctx context.Context) ([]models.QueueToken, error)
}

func (f *fakeTokenService) Admit(ctx context.Context, input repositories.AdmissionInput) (*models.QueueToken, error) {
	return f.admitFn(ctx, input)
}

func (f *fakeTokenService) GetByID(ctx context.Context, id uint) (*models.QueueToken, error) {
	return f.getFn(ctx, id)
}

func (f *fakeTokenService) Update(ctx context.Context, id uint, update repositories.TokenUpdate) (*models.QueueToken, error) {
	return f.updateFn(ctx, id, update)
}

func (f *fakeTokenService) Delete(ctx context.Context, id uint) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeTokenService) CheckIn(ctx context.Context, id uint) (*models.QueueToken, error) {
	return f.checkInFn(ctx, id)
}

func (f *fakeTokenService) ActiveQueue(ctx context.Context) ([]models.QueueToken, error) {
	return f.queueFn(ctx)
}

func newTestRouter(service TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewTokenHandler(service)
	router := gin.New()
	router.POST("/tokens", handler.CreateToken)
	router.GET("/tokens/:id", handler.GetTokenByID)
	router.PUT("/tokens/:id", handler.UpdateToken)
	router.DELETE("/tokens/:id", handler.DeleteToken)
	router.POST("/tokens/checkin", handler.CheckInToken)
	router.GET("/queue", handler.GetActiveQueue)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return payload
}

func validAdmissionBody() map[string]interface{} {
	return map[string]interface{}{
		"patientName":     "Jane Mwangi",
		"phone":           "0712345678",
		"appointmentTime": "2026-09-01T10:00:00Z",
		"department":      "DEP-000001",
		"doctor":          "DR-000001",
	}
}

func TestCreateTokenSuccess(t *testing.T) {
	var captured repositories.AdmissionInput
	service := &fakeTokenService{
		admitFn: func(_ context.Context, input repositories.AdmissionInput) (*models.QueueToken, error) {
			captured = input
			return &models.QueueToken{
				ID:              1,
				TokenNumber:     7,
				PatientName:     input.PatientName,
				Phone:           input.Phone,
				DepartmentID:    input.DepartmentID,
				DoctorID:        input.DoctorID,
				AppointmentTime: input.AppointmentTime,
				Stage:           models.StageRegistration,
				Status:          models.StatusWaiting,
			}, nil
		},
	}
	router := newTestRouter(service)

	recorder := doJSON(t, router, http.MethodPost, "/tokens", validAdmissionBody())

	require.Equal(t, http.StatusCreated, recorder.Code)
	payload := decodeBody(t, recorder)
	assert.Equal(t, true, payload["success"])

	token := payload["token"].(map[string]interface{})
	assert.Equal(t, float64(7), token["token_number"])
	assert.Equal(t, models.StageRegistration, token["stage"])
	assert.Equal(t, models.StatusWaiting, token["status"])

	assert.Equal(t, "Jane Mwangi", captured.PatientName)
	assert.Equal(t, "DR-000001", captured.DoctorID)
	assert.Equal(t, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC), captured.AppointmentTime)
}

func TestCreateTokenMissingFields(t *testing.T) {
	service := &fakeTokenService{
		admitFn: func(context.Context, repositories.AdmissionInput) (*models.QueueToken, error) {
			t.Fatal("Admit must not be called for an incomplete payload")
			return nil, nil
		},
	}
	router := newTestRouter(service)

	body := validAdmissionBody()
	delete(body, "doctor")
	delete(body, "phone")
	recorder := doJSON(t, router, http.MethodPost, "/tokens", body)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	payload := decodeBody(t, recorder)
	assert.Equal(t, repositories.ReasonMissingFields, payload["reason"])
}

func TestCreateTokenRejections(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		reason string
	}{
		{"slot full", repositories.Reject(repositories.ReasonSlotFull, "Slot capacity reached for this doctor"), repositories.ReasonSlotFull},
		{"break window", repositories.Reject(repositories.ReasonBreakTime, "Doctor is on break at this hour"), repositories.ReasonBreakTime},
		{"unknown doctor", repositories.Reject(repositories.ReasonInvalidDoctor, "Doctor not found or inactive"), repositories.ReasonInvalidDoctor},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeTokenService{
				admitFn: func(context.Context, repositories.AdmissionInput) (*models.QueueToken, error) {
					return nil, tt.err
				},
			}
			router := newTestRouter(service)

			recorder := doJSON(t, router, http.MethodPost, "/tokens", validAdmissionBody())

			require.Equal(t, http.StatusBadRequest, recorder.Code)
			payload := decodeBody(t, recorder)
			assert.Equal(t, tt.reason, payload["reason"])
			assert.NotEmpty(t, payload["error"])
		})
	}
}

func TestCreateTokenDuplicateActiveCarriesExisting(t *testing.T) {
	existing := &models.QueueToken{
		ID:          3,
		TokenNumber: 12,
		PatientName: "Jane Mwangi",
		Stage:       models.StageConsultation,
		Status:      models.StatusWaiting,
	}
	service := &fakeTokenService{
		admitFn: func(context.Context, repositories.AdmissionInput) (*models.QueueToken, error) {
			return nil, &repositories.RejectionError{
				Reason:   repositories.ReasonDuplicateActive,
				Message:  "Patient already holds an active booking",
				Existing: existing,
			}
		},
	}
	router := newTestRouter(service)

	recorder := doJSON(t, router, http.MethodPost, "/tokens", validAdmissionBody())

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	payload := decodeBody(t, recorder)
	assert.Equal(t, repositories.ReasonDuplicateActive, payload["reason"])

	attached, ok := payload["token"].(map[string]interface{})
	require.True(t, ok, "rejection must carry the booking already held")
	assert.Equal(t, float64(12), attached["token_number"])
	assert.Equal(t, models.StatusWaiting, attached["status"])
}

func TestCreateTokenResourceBusy(t *testing.T) {
	service := &fakeTokenService{
		admitFn: func(context.Context, repositories.AdmissionInput) (*models.QueueToken, error) {
			return nil, repositories.ErrResourceBusy
		},
	}
	router := newTestRouter(service)

	recorder := doJSON(t, router, http.MethodPost, "/tokens", validAdmissionBody())

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}

func TestGetTokenNotFound(t *testing.T) {
	service := &fakeTokenService{
		getFn: func(context.Context, uint) (*models.QueueToken, error) {
			return nil, repositories.ErrTokenNotFound
		},
	}
	router := newTestRouter(service)

	recorder := doJSON(t, router, http.MethodGet, "/tokens/99", nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestGetTokenInvalidID(t *testing.T) {
	service := &fakeTokenService{
		getFn: func(context.Context, uint) (*models.QueueToken, error) {
			t.Fatal("service must not be called for a malformed ID")
			return nil, nil
		},
	}
	router := newTestRouter(service)

	recorder := doJSON(t, router, http.MethodGet, "/tokens/abc", nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestUpdateTokenInvalidTransition(t *testing.T) {
	service := &fakeTokenService{
		updateFn: func(_ context.Context, _ uint, update repositories.TokenUpdate) (*models.QueueToken, error) {
			require.NotNil(t, update.Status)
			assert.Equal(t, models.StatusCompleted, *update.Status)
			return nil, repositories.Reject(repositories.ReasonInvalidTransition, "Cannot move Waiting directly to Completed")
		},
	}
	router := newTestRouter(service)

	recorder := doJSON(t, router, http.MethodPut, "/tokens/5", map[string]interface{}{"status": models.StatusCompleted})

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	payload := decodeBody(t, recorder)
	assert.Equal(t, repositories.ReasonInvalidTransition, payload["reason"])
}

func TestUpdateTokenNoValidFields(t *testing.T) {
	service := &fakeTokenService{
		updateFn: func(_ context.Context, _ uint, update repositories.TokenUpdate) (*models.QueueToken, error) {
			assert.True(t, update.Empty())
			return nil, repositories.ErrNoValidFields
		},
	}
	router := newTestRouter(service)

	recorder := doJSON(t, router, http.MethodPut, "/tokens/5", map[string]interface{}{"note": "ignored"})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestUpdateTokenSuccess(t *testing.T) {
	service := &fakeTokenService{
		updateFn: func(_ context.Context, id uint, update repositories.TokenUpdate) (*models.QueueToken, error) {
			assert.Equal(t, uint(5), id)
			require.NotNil(t, update.Stage)
			return &models.QueueToken{ID: 5, TokenNumber: 2, Stage: *update.Stage, Status: models.StatusInProgress}, nil
		},
	}
	router := newTestRouter(service)

	recorder := doJSON(t, router, http.MethodPut, "/tokens/5", map[string]interface{}{"stage": models.StageLab})

	require.Equal(t, http.StatusOK, recorder.Code)
	payload := decodeBody(t, recorder)
	token := payload["token"].(map[string]interface{})
	assert.Equal(t, models.StageLab, token["stage"])
}

func TestCheckInToken(t *testing.T) {
	service := &fakeTokenService{
		checkInFn: func(_ context.Context, id uint) (*models.QueueToken, error) {
			assert.Equal(t, uint(4), id)
			return &models.QueueToken{ID: 4, TokenNumber: 9, Status: models.StatusWaiting, IsCheckedIn: true}, nil
		},
	}
	router := newTestRouter(service)

	recorder := doJSON(t, router, http.MethodPost, "/tokens/checkin", map[string]interface{}{"tokenId": 4})

	require.Equal(t, http.StatusOK, recorder.Code)
	payload := decodeBody(t, recorder)
	token := payload["token"].(map[string]interface{})
	assert.Equal(t, true, token["is_checked_in"])
}

func TestCheckInTokenMissingID(t *testing.T) {
	service := &fakeTokenService{
		checkInFn: func(context.Context, uint) (*models.QueueToken, error) {
			t.Fatal("service must not be called without a tokenId")
			return nil, nil
		},
	}
	router := newTestRouter(service)

	recorder := doJSON(t, router, http.MethodPost, "/tokens/checkin", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestDeleteToken(t *testing.T) {
	var deleted uint
	service := &fakeTokenService{
		deleteFn: func(_ context.Context, id uint) error {
			deleted = id
			return nil
		},
	}
	router := newTestRouter(service)

	recorder := doJSON(t, router, http.MethodDelete, "/tokens/8", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, uint(8), deleted)
}

func TestGetActiveQueueOrdered(t *testing.T) {
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	service := &fakeTokenService{
		queueFn: func(context.Context) ([]models.QueueToken, error) {
			return []models.QueueToken{
				{ID: 1, TokenNumber: 1, Status: models.StatusInProgress, AppointmentTime: base},
				{ID: 2, TokenNumber: 2, Status: models.StatusWaiting, AppointmentTime: base.Add(30 * time.Minute)},
				{ID: 3, TokenNumber: 3, Status: models.StatusWaiting, AppointmentTime: base.Add(time.Hour)},
			}, nil
		},
	}
	router := newTestRouter(service)

	recorder := doJSON(t, router, http.MethodGet, "/queue", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	payload := decodeBody(t, recorder)
	queue := payload["queue"].([]interface{})
	require.Len(t, queue, 3)
	first := queue[0].(map[string]interface{})
	assert.Equal(t, float64(1), first["token_number"])
}
