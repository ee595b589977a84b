package handler

import (
	"net/http"

	"github.com/MukamaJ-2/crypto-vault/internal/middleware"
	"github.com/MukamaJ-2/crypto-vault/internal/state"
	"github.com/MukamaJ-2/crypto-vault/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	Manager *state.Manager
	Log     *zap.Logger
}

func NewProfileHandler(m *state.Manager, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{Manager: m, Log: log}
}

// Pointer fields so an absent key is distinguishable from an explicit "".
type updateProfileRequest struct {
	Name                *string `json:"name"`
	BTCWalletAddress    *string `json:"btc_wallet_address"`
	SolanaWalletAddress *string `json:"solana_wallet_address"`
}

// Update patches the profile row with the supplied fields only.
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request: "+err.Error())
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		if *req.Name == "" || len(*req.Name) > 64 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name must be 1-64 characters")
			return
		}
		updates["name"] = *req.Name
	}
	if req.BTCWalletAddress != nil {
		if err := util.ValidateWalletAddress(*req.BTCWalletAddress); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		updates["btc_wallet_address"] = *req.BTCWalletAddress
	}
	if req.SolanaWalletAddress != nil {
		if err := util.ValidateWalletAddress(*req.SolanaWalletAddress); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		updates["solana_wallet_address"] = *req.SolanaWalletAddress
	}
	if len(updates) == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "nothing to update")
		return
	}

	s := h.Manager.SessionFor(c.Request.Context(), userID, middleware.CurrentToken(c))
	s.UpdateProfile(c.Request.Context(), updates)
	if msg := s.Error(); msg != "" {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, msg)
		return
	}

	util.Success(c, util.Response{"user": s.CurrentUser()})
}
