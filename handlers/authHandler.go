package handlers

import (
	"OPDQueue/models"
	"OPDQueue/repositories"
	"OPDQueue/services"
	"OPDQueue/utils"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	UserService services.UserService
}

func NewAuthHandler(userService services.UserService) *AuthHandler {
	return &AuthHandler{
		UserService: userService,
	}
}

// Register handles new account registration. New accounts are patients;
// staff accounts are provisioned out of band.
func (h *AuthHandler) Register(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	user.Role = models.RolePatient

	if err := h.UserService.ValidateAndCreateUser(c.Request.Context(), &user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Validation failed: %v", err)})
		return
	}
	c.Status(http.StatusCreated)
}

// Login authenticates the account and returns tokens along with user info.
func (h *AuthHandler) Login(c *gin.Context) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.UserService.AuthenticateUser(c.Request.Context(), credentials.Email, credentials.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(strconv.FormatInt(user.ID, 10), user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to generate tokens: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"user":         user,
	})
}

// RefreshToken exchanges a still-valid token for a fresh access token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token := c.DefaultQuery("accessToken", "")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "access token is required"})
		return
	}

	claims, err := utils.ValidateToken(token, models.RoleStaff, models.RolePatient)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid access token"})
		return
	}

	accessToken, err := utils.GenerateAccessToken(claims.UserID, claims.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to generate access token: %v", err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

// GetUsers lists accounts, optionally filtered by role or email.
func (h *AuthHandler) GetUsers(c *gin.Context) {
	users, err := h.UserService.GetUsers(c.Request.Context(), c.Query("role"), c.Query("email"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// GetUserByID looks an account up by numeric id or by email.
func (h *AuthHandler) GetUserByID(c *gin.Context) {
	identifier := c.Param("id")

	var user *models.User
	var err error
	if id, convErr := strconv.ParseInt(identifier, 10, 64); convErr == nil {
		user, err = h.UserService.GetUserByID(c.Request.Context(), id)
	} else {
		user, err = h.UserService.GetUserByEmail(c.Request.Context(), identifier)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
