package handlers

import (
	"OPDQueue/middlewares"
	"OPDQueue/models"
	"OPDQueue/repositories"
	"OPDQueue/utils"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// TokenService is the queue-engine surface the HTTP layer consumes.
type TokenService interface {
	Admit(ctx context.Context, input repositories.AdmissionInput) (*models.QueueToken, error)
	GetByID(ctx context.Context, id uint) (*models.QueueToken, error)
	Update(ctx context.Context, id uint, update repositories.TokenUpdate) (*models.QueueToken, error)
	Delete(ctx context.Context, id uint) error
	CheckIn(ctx context.Context, id uint) (*models.QueueToken, error)
	ActiveQueue(ctx context.Context) ([]models.QueueToken, error)
}

type TokenHandler struct {
	service TokenService
}

func NewTokenHandler(service TokenService) *TokenHandler {
	return &TokenHandler{service: service}
}

type tokenUpdateRequest struct {
	Status      *string `json:"status"`
	Stage       *string `json:"stage"`
	IsCheckedIn *bool   `json:"isCheckedIn"`
}

type checkInRequest struct {
	TokenID uint `json:"tokenId"`
}

// CreateToken admits a new booking.
func (h *TokenHandler) CreateToken(c *gin.Context) {
	var req utils.AdmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.RejectionResponse(c, http.StatusBadRequest, repositories.ReasonMissingFields, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateAdmissionRequest(req); err != nil {
		middlewares.RejectionResponse(c, http.StatusBadRequest, repositories.ReasonMissingFields, err.Error(), nil)
		return
	}

	token, err := h.service.Admit(c.Request.Context(), repositories.AdmissionInput{
		PatientName:     req.PatientName,
		Phone:           req.Phone,
		UserID:          req.UserID,
		DepartmentID:    req.Department,
		DoctorID:        req.Doctor,
		AppointmentTime: req.AppointmentTime,
	})
	if err != nil {
		h.writeTokenError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "token": token})
}

// GetTokenByID returns one booking.
func (h *TokenHandler) GetTokenByID(c *gin.Context) {
	id, ok := parseTokenID(c)
	if !ok {
		return
	}
	token, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeTokenError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

// UpdateToken moves a booking through the state machine. Only status, stage
// and isCheckedIn are honored; unknown fields in the payload are ignored.
func (h *TokenHandler) UpdateToken(c *gin.Context) {
	id, ok := parseTokenID(c)
	if !ok {
		return
	}

	var req tokenUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	token, err := h.service.Update(c.Request.Context(), id, repositories.TokenUpdate{
		Status:      req.Status,
		Stage:       req.Stage,
		IsCheckedIn: req.IsCheckedIn,
	})
	if err != nil {
		h.writeTokenError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

// DeleteToken removes a booking and its report records.
func (h *TokenHandler) DeleteToken(c *gin.Context) {
	id, ok := parseTokenID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeTokenError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Token deleted"})
}

// CheckInToken marks the patient as physically arrived.
func (h *TokenHandler) CheckInToken(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TokenID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tokenId is required"})
		return
	}
	token, err := h.service.CheckIn(c.Request.Context(), req.TokenID)
	if err != nil {
		h.writeTokenError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

// GetActiveQueue returns the live queue after the penalty sweep.
func (h *TokenHandler) GetActiveQueue(c *gin.Context) {
	queue, err := h.service.ActiveQueue(c.Request.Context())
	if err != nil {
		h.writeTokenError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "queue": queue})
}

func parseTokenID(c *gin.Context) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token ID"})
		return 0, false
	}
	return uint(id), true
}

func (h *TokenHandler) writeTokenError(c *gin.Context, err error) {
	var rejection *repositories.RejectionError
	switch {
	case errors.As(err, &rejection):
		extra := gin.H{}
		if rejection.Existing != nil {
			extra["token"] = rejection.Existing
		}
		middlewares.RejectionResponse(c, http.StatusBadRequest, rejection.Reason, rejection.Message, extra)
	case errors.Is(err, repositories.ErrTokenNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Token not found"})
	case errors.Is(err, repositories.ErrNoValidFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
	case errors.Is(err, repositories.ErrResourceBusy):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service busy, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
