package server

import (
	"log/slog"
	"net/http"

	"chat-direct/errors"
	"chat-direct/services"

	"github.com/gin-gonic/gin"
)

type AuthServer struct {
	authService services.IAuthService
	log         *slog.Logger
}

func NewAuthServer(log *slog.Logger, authService services.IAuthService) *AuthServer {
	return &AuthServer{authService: authService, log: log}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// Register handles user registration: validation, hashing, persistence and
// the first session token.
func (s *AuthServer) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}

	token, userID, err := s.authService.Register(req.Email, req.Name, req.Password)
	if err != nil {
		s.log.Warn("Registration refused", "error", err)
		c.JSON(errors.MapToHTTPStatus(err), gin.H{"message": "registration failed"})
		return
	}
	c.JSON(http.StatusCreated, authResponse{Token: string(token), UserID: userID})
}

// Login verifies credentials and returns a session token.
func (s *AuthServer) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}

	token, userID, err := s.authService.Login(req.Email, req.Password)
	if err != nil {
		c.JSON(errors.MapToHTTPStatus(err), gin.H{"message": "login failed"})
		return
	}
	c.JSON(http.StatusOK, authResponse{Token: string(token), UserID: userID})
}
