package handler

import (
	"net/http"

	"github.com/MukamaJ-2/crypto-vault/internal/ledger"
	"github.com/MukamaJ-2/crypto-vault/internal/middleware"
	"github.com/MukamaJ-2/crypto-vault/internal/models"
	"github.com/MukamaJ-2/crypto-vault/internal/rates"
	"github.com/MukamaJ-2/crypto-vault/internal/state"
	"github.com/MukamaJ-2/crypto-vault/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PlanHandler struct {
	Manager *state.Manager
	Log     *zap.Logger
}

func NewPlanHandler(m *state.Manager, log *zap.Logger) *PlanHandler {
	return &PlanHandler{Manager: m, Log: log}
}

// planView is a plan row plus the aggregates derived from its ledger.
type planView struct {
	models.SavingsPlan
	SavedAmount float64 `json:"saved_amount"`
	Progress    float64 `json:"progress"`
	IsMature    bool    `json:"is_mature"`
}

func toView(p models.SavingsPlan) planView {
	return planView{
		SavingsPlan: p,
		SavedAmount: ledger.SavedAmount(&p),
		Progress:    ledger.Progress(&p),
		IsMature:    ledger.IsMature(&p),
	}
}

func toViews(plans []models.SavingsPlan) []planView {
	views := make([]planView, 0, len(plans))
	for _, p := range plans {
		views = append(views, toView(p))
	}
	return views
}

type createPlanRequest struct {
	Name               string  `json:"name" binding:"required,max=64"`
	TargetAmount       float64 `json:"target_amount" binding:"required,gt=0"`
	WeeklyContribution float64 `json:"weekly_contribution" binding:"required,gt=0"`
	PreferredCrypto    string  `json:"preferred_crypto" binding:"required,oneof=btc solana"`
}

type depositRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// List resyncs from the store and returns all plans, newest first.
func (h *PlanHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	l := h.Manager.LedgerFor(userID)
	l.FetchPlans(c.Request.Context())
	if msg := l.Error(); msg != "" {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, msg)
		return
	}

	util.Success(c, util.Response{"plans": toViews(l.Plans())})
}

// Create validates and stores a new savings plan.
func (h *PlanHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req createPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request: "+err.Error())
		return
	}

	l := h.Manager.LedgerFor(userID)
	input := ledger.CreatePlanInput{
		Name:               req.Name,
		TargetAmount:       req.TargetAmount,
		WeeklyContribution: req.WeeklyContribution,
		PreferredCrypto:    models.CryptoType(req.PreferredCrypto),
	}
	if err := l.ValidatePlan(input); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	l.CreatePlan(c.Request.Context(), input)
	if msg := l.Error(); msg != "" {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, msg)
		return
	}

	plans := l.Plans()
	if len(plans) == 0 {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "plan not found after create")
		return
	}

	util.Success(c, util.Response{"plan": toView(plans[0])})
}

// Deposit records a completed weekly contribution on a plan, converting the
// fiat amount at the plan's fixed asset rate.
func (h *PlanHandler) Deposit(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}
	planID := c.Param("id")

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request: "+err.Error())
		return
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	l := h.Manager.LedgerFor(userID)
	l.FetchPlans(c.Request.Context())

	plan := l.PlanByID(planID)
	if plan == nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "plan not found")
		return
	}
	if plan.Status != models.PlanActive {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "plan is no longer active")
		return
	}

	l.AddTransaction(c.Request.Context(), planID, req.Amount,
		rates.Convert(req.Amount, plan.PreferredCrypto), plan.PreferredCrypto, models.TxDeposit)
	if msg := l.Error(); msg != "" {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, msg)
		return
	}

	util.Success(c, util.Response{"plan": toView(*l.PlanByID(planID))})
}

// Withdraw drains a matured plan in full.
func (h *PlanHandler) Withdraw(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}
	planID := c.Param("id")

	l := h.Manager.LedgerFor(userID)
	l.FetchPlans(c.Request.Context())

	if l.PlanByID(planID) == nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "plan not found")
		return
	}

	if !l.WithdrawFunds(c.Request.Context(), planID) {
		msg := l.Error()
		if msg == "" {
			msg = "plan is locked or already withdrawn"
		}
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, msg)
		return
	}

	util.Success(c, util.Response{"plan": toView(*l.PlanByID(planID))})
}

// Current returns the first active plan, or null when none is active.
func (h *PlanHandler) Current(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	l := h.Manager.LedgerFor(userID)
	l.FetchPlans(c.Request.Context())
	if msg := l.Error(); msg != "" {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, msg)
		return
	}

	plan := l.CurrentPlan()
	if plan == nil {
		util.Success(c, util.Response{"plan": nil})
		return
	}
	util.Success(c, util.Response{"plan": toView(*plan)})
}

// Stats summarizes the user's savings across all plans.
func (h *PlanHandler) Stats(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	l := h.Manager.LedgerFor(userID)
	l.FetchPlans(c.Request.Context())
	if msg := l.Error(); msg != "" {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, msg)
		return
	}

	var activeCount int
	var weeklyTotal float64
	plans := l.Plans()
	for i := range plans {
		if plans[i].Status == models.PlanActive {
			activeCount++
			weeklyTotal += plans[i].WeeklyContribution
		}
	}

	util.Success(c, util.Response{
		"total_saved":  l.TotalSaved(),
		"plan_count":   len(plans),
		"active_plans": activeCount,
		"total_weekly": weeklyTotal,
	})
}
