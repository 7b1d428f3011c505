package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"moviesmama/internal/domain"
	"moviesmama/internal/service"
)

const (
	msgUserExists      = "User already exists"
	msgInvalidLogin    = "Invalid email or password"
	msgUserNotFound    = "User not found"
	msgWrongPassword   = "Current password is incorrect"
	msgPasswordChanged = "Password changed successfully"
	msgInvalidBody     = "Invalid request body"
	msgInternal        = "Internal server error"
	msgNotFound        = "Not found"
	msgNoToken         = "Not authorized, no token"
	msgTokenFailed     = "Not authorized, token failed"
	msgTooManyRequests = "Too many requests, please try again later."
)

const contextUserIDKey = "userID"

// TokenParser validates bearer tokens and returns the user id they carry.
type TokenParser interface {
	Parse(token string) (string, error)
}

// Options configures the cross-cutting middleware.
type Options struct {
	AllowedOrigin   string
	RateLimit       int
	RateLimitWindow time.Duration
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users  service.UserService
	tokens TokenParser
	logger logrus.FieldLogger
	opts   Options
}

func NewHandler(users service.UserService, tokens TokenParser, logger logrus.FieldLogger, opts Options) *Handler {
	if opts.AllowedOrigin == "" {
		opts.AllowedOrigin = "*"
	}
	return &Handler{
		users:  users,
		tokens: tokens,
		logger: logger,
		opts:   opts,
	}
}

// NewRouter builds a gin engine with the full middleware stack and all routes.
func (h *Handler) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(h.recoveryMiddleware(), h.requestLogger())
	h.RegisterRoutes(router)
	return router
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(securityHeaders(), corsMiddleware(h.opts.AllowedOrigin))
	if h.opts.RateLimit > 0 && h.opts.RateLimitWindow > 0 {
		router.Use(newRateLimiter(h.opts.RateLimit, h.opts.RateLimitWindow).middleware())
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, messageResponse{Message: msgNotFound})
	})

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		users := api.Group("/users")
		users.POST("/register", h.register)
		users.POST("/login", h.login)

		private := users.Group("", h.requireAuth())
		private.GET("/profile", h.getProfile)
		private.PATCH("/profile", h.updateProfile)
		private.POST("/change-password", h.changePassword)
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name                 *string         `json:"name"`
	NotificationSettings map[string]bool `json:"notificationSettings"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// UserResponse is the public view of a user; it never carries credentials.
type UserResponse struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Email                string          `json:"email"`
	IsVerified           bool            `json:"isVerified"`
	LastLogin            *string         `json:"lastLogin,omitempty"`
	NotificationSettings map[string]bool `json:"notificationSettings"`
	CreatedAt            string          `json:"createdAt"`
	UpdatedAt            string          `json:"updatedAt"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, messageResponse{Message: msgInvalidBody})
		return
	}

	res, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, authToResponse(res))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, messageResponse{Message: msgInvalidBody})
		return
	}

	res, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, messageResponse{Message: msgInvalidLogin})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, authToResponse(res))
}

func (h *Handler) getProfile(c *gin.Context) {
	user, err := h.users.GetProfile(c.Request.Context(), c.GetString(contextUserIDKey))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, messageResponse{Message: msgInvalidBody})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), c.GetString(contextUserIDKey), req.Name, req.NotificationSettings)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, messageResponse{Message: msgInvalidBody})
		return
	}

	err := h.users.ChangePassword(c.Request.Context(), c.GetString(contextUserIDKey), req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, messageResponse{Message: msgWrongPassword})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: msgPasswordChanged})
}

// respondError maps domain errors to stable responses. Anything unknown is
// logged and hidden behind a generic 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, messageResponse{Message: vErr.Message})
	case errors.Is(err, domain.ErrUserAlreadyExists):
		c.JSON(http.StatusBadRequest, messageResponse{Message: msgUserExists})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, messageResponse{Message: msgUserNotFound})
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, messageResponse{Message: msgTokenFailed})
	default:
		_ = c.Error(err)
		h.logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("request failed")
		c.JSON(http.StatusInternalServerError, messageResponse{Message: msgInternal})
	}
}

func authToResponse(res *service.AuthResult) AuthResponse {
	return AuthResponse{
		ID:    res.User.ID,
		Name:  res.User.Name,
		Email: res.User.Email,
		Token: res.Token,
	}
}

func userToResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:                   user.ID,
		Name:                 user.Name,
		Email:                user.Email,
		IsVerified:           user.IsVerified,
		NotificationSettings: user.NotificationSettings,
		CreatedAt:            user.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:            user.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if resp.NotificationSettings == nil {
		resp.NotificationSettings = map[string]bool{}
	}
	if user.LastLogin != nil && !user.LastLogin.IsZero() {
		v := user.LastLogin.UTC().Format(time.RFC3339)
		resp.LastLogin = &v
	}
	return resp
}
