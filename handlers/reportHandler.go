package handlers

import (
	"OPDQueue/models"
	"OPDQueue/repositories"
	"OPDQueue/services"
	"OPDQueue/utils"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

type reportRequest struct {
	TokenNumber int    `json:"tokenNumber"`
	Department  string `json:"department"`
	ReportType  string `json:"reportType"`
	Notes       string `json:"notes"`
}

// CreateReportRequest records a pending report against a token.
func (h *ReportHandler) CreateReportRequest(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := utils.ValidateReportRequest(req.TokenNumber, req.Department); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report := &models.MedicalReport{
		TokenNumber: req.TokenNumber,
		Department:  req.Department,
		ReportType:  req.ReportType,
		Notes:       req.Notes,
	}
	if err := h.service.CreateRequest(c.Request.Context(), report); err != nil {
		if errors.Is(err, repositories.ErrTokenNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Token not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "report": report})
}

// GetReportByID returns one report record.
func (h *ReportHandler) GetReportByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report ID"})
		return
	}
	report, err := h.service.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}

// GetReportFeed returns the reports attached to a user's tokens.
func (h *ReportHandler) GetReportFeed(c *gin.Context) {
	userIDStr := c.Query("userId")
	if userIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId query param is required"})
		return
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid userId"})
		return
	}

	reports, err := h.service.FeedByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reports": reports})
}
