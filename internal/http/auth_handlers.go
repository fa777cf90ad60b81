package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfwise/shelfwise/internal/auth"
	"github.com/shelfwise/shelfwise/internal/entities"
)

// AuthController handles registration, login and logout.
type AuthController struct {
	service        *auth.Service
	sessionManager *auth.SessionManager
}

func NewAuthController(service *auth.Service, sessionManager *auth.SessionManager) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
	}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role"`
	StudentID string `json:"student_id"`
}

func (controller *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	role := entities.UserRole(req.Role)
	if role == "" {
		role = entities.UserRoleStudent
	}

	user, err := controller.service.Register(auth.RegisterParams{
		Email:     req.Email,
		Name:      req.Name,
		Password:  req.Password,
		Role:      role,
		StudentID: req.StudentID,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
			return
		}
		respondBadRequest(c, err.Error())
		return
	}

	respondCreated(c, user)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	User  *entities.User `json:"user"`
	Token string         `json:"token"`
}

// Login verifies credentials, establishes a server-side session for
// browser clients and returns a bearer token for API clients.
func (controller *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, err := controller.service.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAccountLocked) {
			c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: err.Error()})
			return
		}
		// Same response for unknown email and wrong password
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		return
	}

	if controller.sessionManager != nil {
		if err := controller.sessionManager.CreateSession(c.Request, user); err != nil {
			respondInternalError(c, err, "create session")
			return
		}
	}

	token, err := auth.IssueToken(user, controller.service.TokenSecret(), controller.service.TokenExpiry())
	if err != nil {
		respondInternalError(c, err, "issue token")
		return
	}

	c.JSON(http.StatusOK, loginResponse{User: user, Token: token})
}

// CSRFToken hands browser clients the per-request CSRF token so they can
// echo it back in the X-CSRF-Token header on mutating requests.
func (controller *AuthController) CSRFToken(c *gin.Context) {
	token := auth.GetCSRFToken(c)
	if token == "" {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "CSRF protection is disabled"})
		return
	}
	c.Header(auth.CSRFTokenHeader, token)
	c.JSON(http.StatusOK, gin.H{"csrf_token": token, "header": auth.CSRFTokenHeader})
}

func (controller *AuthController) Logout(c *gin.Context) {
	if controller.sessionManager != nil {
		if err := controller.sessionManager.DestroySession(c.Request); err != nil {
			respondInternalError(c, err, "destroy session")
			return
		}
	}
	respondSuccess(c, "logged out")
}
