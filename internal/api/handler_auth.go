package api

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SEB120195/gestion-palettes-backend/internal/apperr"
	"github.com/SEB120195/gestion-palettes-backend/internal/auth"
	"github.com/SEB120195/gestion-palettes-backend/internal/model"
	"github.com/SEB120195/gestion-palettes-backend/internal/mw"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authenticatedUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(c, apperr.Validation("name, email and password are required"))
		return
	}
	if !emailPattern.MatchString(req.Email) {
		respondError(c, apperr.Validation("invalid email format"))
		return
	}
	if len(req.Password) < 6 {
		respondError(c, apperr.Validation("password must be at least 6 characters"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}

	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(c, apperr.Validation("email and password are required"))
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apiResponse{
			Success: false,
			Message: "invalid email or password",
		})
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

// Profile handles GET /api/auth/profile.
func (h *Handler) Profile(c *gin.Context) {
	user := mw.CurrentUser(c)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, apiResponse{
			Success: false,
			Message: "not authenticated",
		})
		return
	}
	respondData(c, http.StatusOK, user)
}

func (h *Handler) respondWithToken(c *gin.Context, status int, user *model.User) {
	token, err := auth.GenerateToken(h.auth.JWTSecret, h.auth.TokenTTL, user.ID, user.Email, user.Role)
	if err != nil {
		respondError(c, apperr.Internal(err))
		return
	}
	respondData(c, status, authenticatedUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Token: token,
	})
}
