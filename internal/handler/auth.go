package handler

import (
	"net/http"

	"github.com/MukamaJ-2/crypto-vault/internal/middleware"
	"github.com/MukamaJ-2/crypto-vault/internal/state"
	"github.com/MukamaJ-2/crypto-vault/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	Manager *state.Manager
	Log     *zap.Logger
}

func NewAuthHandler(m *state.Manager, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Manager: m, Log: log}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates the account and its profile row, and returns a fresh
// bearer token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request: "+err.Error())
		return
	}

	s := h.Manager.NewSession()
	s.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if !s.IsAuthenticated() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, s.Error())
		return
	}

	user := s.CurrentUser()
	h.Manager.Adopt(user.ID, s)

	util.Success(c, util.Response{
		"token": s.Token(),
		"user":  user,
	})
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request: "+err.Error())
		return
	}

	s := h.Manager.NewSession()
	s.Login(c.Request.Context(), req.Email, req.Password)
	if !s.IsAuthenticated() {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, s.Error())
		return
	}

	user := s.CurrentUser()
	h.Manager.Adopt(user.ID, s)

	util.Success(c, util.Response{
		"token": s.Token(),
		"user":  user,
	})
}

// Logout revokes the session. Local state is dropped even when the remote
// revocation fails, so the call always succeeds from the client's view.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}
	token := middleware.CurrentToken(c)

	s := h.Manager.SessionFor(c.Request.Context(), userID, token)
	s.Logout(c.Request.Context(), token)
	if msg := s.Error(); msg != "" {
		h.Log.Warn("logout finished with remote error", zap.String("user_id", userID), zap.String("error", msg))
	}
	h.Manager.Drop(userID)

	util.Success(c, util.Response{"message": "logged out"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	s := h.Manager.SessionFor(c.Request.Context(), userID, middleware.CurrentToken(c))
	user := s.CurrentUser()
	if user == nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "profile not found")
		return
	}

	util.Success(c, util.Response{"user": user})
}
