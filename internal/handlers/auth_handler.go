package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/middleware"
	"budgetapp/internal/models"
	"budgetapp/internal/services"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, auditService services.AuditServicer) *AuthHandler {
	return &AuthHandler{userService: userService, auditService: auditService}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,max=128"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the refresh token to rotate.
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// TokenPairResponse holds an access/refresh token pair.
type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// UserResponse represents the user data in the response
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new user with username, email and password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} RegisterResponse "User registered"
// @Failure     400 {object} ErrorResponse "Invalid input, or username/email already taken"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, services.AuditActionRegister, "user", user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusCreated, RegisterResponse{ID: user.ID, Username: user.Username})
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a user and get an access/refresh token pair
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} TokenPairResponse "Token pair"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     423 {object} ErrorResponse "Account locked"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	user, err := h.userService.AttemptLogin(req.Username, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.issueTokens(c, user)
}

// Refresh rotates a refresh token
// @Summary     Refresh tokens
// @Description Exchange a refresh token for a new access/refresh token pair. The old refresh token stops working.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RefreshRequest true "Refresh token"
// @Success     200 {object} TokenPairResponse "Token pair"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid refresh token"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	invalid := apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired refresh token")

	claims, err := middleware.ValidateRefreshToken(req.Refresh)
	if err != nil {
		respondWithError(c, invalid)
		return
	}

	stored, err := h.userService.GetRefreshTokenHash(claims.UserID)
	if err != nil {
		respondWithError(c, invalid)
		return
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(middleware.HashToken(req.Refresh))) != 1 {
		respondWithError(c, invalid)
		return
	}

	user, err := h.userService.GetUserByID(claims.UserID)
	if err != nil {
		respondWithError(c, invalid)
		return
	}

	h.issueTokens(c, user)
}

// issueTokens writes a fresh token pair and records the refresh token hash.
func (h *AuthHandler) issueTokens(c *gin.Context, user *models.User) {
	access, err := middleware.GenerateAccessToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	refresh, err := middleware.GenerateRefreshToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	if err := h.userService.StoreRefreshTokenHash(user.ID, middleware.HashToken(refresh)); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenPairResponse{Access: access, Refresh: refresh})
}

// GetProfile returns the user's profile
// @Summary     Get user profile
// @Description Get the authenticated user's profile information
// @Tags        user
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} UserResponse "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{ID: user.ID, Username: user.Username, Email: user.Email})
}
