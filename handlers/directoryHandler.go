package handlers

import (
	"OPDQueue/models"
	"OPDQueue/repositories"
	"OPDQueue/services"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type DirectoryHandler struct {
	service *services.DirectoryService
}

func NewDirectoryHandler(service *services.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

func (h *DirectoryHandler) CreateDoctor(c *gin.Context) {
	var doctor models.Doctor
	if err := c.ShouldBindJSON(&doctor); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if doctor.Name == "" || doctor.DepartmentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and department_id are required"})
		return
	}
	doctor.IsActive = true
	if err := h.service.CreateDoctor(c.Request.Context(), &doctor); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, doctor)
}

func (h *DirectoryHandler) GetDoctorByID(c *gin.Context) {
	doctor, err := h.service.GetDoctorByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrDoctorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doctor)
}

func (h *DirectoryHandler) GetAllDoctors(c *gin.Context) {
	doctors, err := h.service.GetAllDoctors(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doctors)
}

func (h *DirectoryHandler) UpdateDoctor(c *gin.Context) {
	var doctor models.Doctor
	if err := c.ShouldBindJSON(&doctor); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	doctor.ID = c.Param("id")
	if err := h.service.UpdateDoctor(c.Request.Context(), &doctor); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, doctor)
}

func (h *DirectoryHandler) DeleteDoctor(c *gin.Context) {
	if err := h.service.DeleteDoctor(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repositories.ErrDoctorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Doctor deleted"})
}

func (h *DirectoryHandler) CreateDepartment(c *gin.Context) {
	var department models.Department
	if err := c.ShouldBindJSON(&department); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if department.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if err := h.service.CreateDepartment(c.Request.Context(), &department); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, department)
}

func (h *DirectoryHandler) GetAllDepartments(c *gin.Context) {
	departments, err := h.service.GetAllDepartments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, departments)
}

func (h *DirectoryHandler) GetDepartmentByID(c *gin.Context) {
	department, err := h.service.GetDepartmentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrDepartmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Department not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, department)
}
