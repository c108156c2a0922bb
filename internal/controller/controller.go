package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vtmai/celwrite/internal/dto"
	"github.com/vtmai/celwrite/internal/middleware"
	"github.com/vtmai/celwrite/internal/service"
	"github.com/vtmai/celwrite/internal/task"
	"gorm.io/gorm"
)

type Controller struct {
	scoringSvc     service.ScoringService
	attemptSvc     service.AttemptService
	statsSvc       service.StatsService
	entitlementSvc service.EntitlementService
}

func NewController(
	scoringSvc service.ScoringService,
	attemptSvc service.AttemptService,
	statsSvc service.StatsService,
	entitlementSvc service.EntitlementService,
) *Controller {
	return &Controller{
		scoringSvc:     scoringSvc,
		attemptSvc:     attemptSvc,
		statsSvc:       statsSvc,
		entitlementSvc: entitlementSvc,
	}
}

func (ctrl *Controller) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	apiV1 := router.Group("/api/v1")
	apiV1.Use(auth)
	{
		apiV1.POST("/score", ctrl.ScoreWritingHandler)

		attempts := apiV1.Group("/attempts")
		attempts.POST("", ctrl.CreateAttemptHandler)
		attempts.GET("", ctrl.ListAttemptsHandler)
		attempts.GET("/:attempt_id", ctrl.GetAttemptHandler)

		apiV1.GET("/stats", ctrl.GetStatsHandler)
		apiV1.GET("/prompts", ctrl.GetPromptsHandler)

		apiV1.POST("/promo", ctrl.ApplyPromoHandler)
		apiV1.GET("/entitlement", ctrl.GetEntitlementHandler)
		apiV1.POST("/checkout", ctrl.CreateCheckoutHandler)
	}
}

// ScoreWritingHandler godoc
// @Summary Score a writing response
// @Description Evaluate a writing response against the examiner rubric and return per-criterion bands, feedback and improvement tips.
// @Tags scoring
// @Accept json
// @Produce json
// @Param request body dto.ScoreRequest true "Response to score"
// @Success 200 {object} dto.ScoringResult
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 500 {object} dto.ErrorResponse "Scoring failed"
// @Router /score [post]
func (ctrl *Controller) ScoreWritingHandler(c *gin.Context) {
	var req dto.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind ScoreRequest")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	taskType, err := task.Parse(req.TaskType)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := ctrl.scoringSvc.ScoreWriting(c.Request.Context(), taskType, req.Prompt, req.Response, req.WordCount)
	if err != nil {
		log.Error().Err(err).Str("taskType", req.TaskType).Msg("Scoring failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to score writing"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateAttemptHandler godoc
// @Summary Record a finished writing attempt
// @Description Persist a scored attempt. The attempt belongs to the signed-in user when a bearer token is present, otherwise to the supplied guest id.
// @Tags attempts
// @Accept json
// @Produce json
// @Param attempt body dto.AttemptCreateRequest true "Attempt to record"
// @Success 201 {object} dto.AttemptResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attempts [post]
func (ctrl *Controller) CreateAttemptHandler(c *gin.Context) {
	var req dto.AttemptCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind AttemptCreateRequest")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	actor := middleware.ActorFrom(c)
	attempt, err := ctrl.attemptSvc.CreateAttempt(actor, req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create attempt")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to save attempt"})
		return
	}
	c.JSON(http.StatusCreated, attempt)
}

// ListAttemptsHandler godoc
// @Summary List the caller's attempts, or fetch one by id
// @Description Without an id, returns the caller's attempts newest first. With ?id=, returns that single attempt.
// @Tags attempts
// @Produce json
// @Param id query string false "Attempt ID to fetch"
// @Param guestId query string false "Guest ID for anonymous callers"
// @Param limit query int false "Maximum number of attempts to return"
// @Success 200 {array} dto.AttemptResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid limit"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attempts [get]
func (ctrl *Controller) ListAttemptsHandler(c *gin.Context) {
	if id := c.Query("id"); id != "" {
		ctrl.respondWithAttempt(c, id)
		return
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		val, err := strconv.Atoi(limitStr)
		if err != nil || val < 0 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit"})
			return
		}
		limit = val
	}

	actor := middleware.ActorFrom(c)
	attempts, err := ctrl.attemptSvc.ListAttempts(actor, c.Query("guestId"), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list attempts")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to fetch attempts"})
		return
	}
	c.JSON(http.StatusOK, attempts)
}

// GetAttemptHandler godoc
// @Summary Get one attempt by id
// @Tags attempts
// @Produce json
// @Param attempt_id path string true "Attempt ID"
// @Success 200 {object} dto.AttemptResponse
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /attempts/{attempt_id} [get]
func (ctrl *Controller) GetAttemptHandler(c *gin.Context) {
	ctrl.respondWithAttempt(c, c.Param("attempt_id"))
}

func (ctrl *Controller) respondWithAttempt(c *gin.Context, id string) {
	attempt, err := ctrl.attemptSvc.GetAttempt(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Attempt not found"})
			return
		}
		log.Error().Err(err).Str("attemptID", id).Msg("Failed to fetch attempt")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to fetch attempt"})
		return
	}
	c.JSON(http.StatusOK, attempt)
}

// GetStatsHandler godoc
// @Summary Aggregate statistics for the caller's identity
// @Description Attempt count, mean overall band, total time, total words and the five most recent attempts.
// @Tags stats
// @Produce json
// @Param guestId query string false "Guest ID for anonymous callers"
// @Success 200 {object} dto.StatsResponse
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /stats [get]
func (ctrl *Controller) GetStatsHandler(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	stats, err := ctrl.statsSvc.GetStats(actor, c.Query("guestId"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute stats")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to fetch statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetPromptsHandler godoc
// @Summary Built-in prompt bank for a task type
// @Tags prompts
// @Produce json
// @Param taskType query string true "Task type (email or survey)"
// @Success 200 {object} dto.PromptBankResponse
// @Failure 400 {object} dto.ErrorResponse "Unknown task type"
// @Router /prompts [get]
func (ctrl *Controller) GetPromptsHandler(c *gin.Context) {
	taskType, err := task.Parse(c.Query("taskType"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	bank := dto.PromptBankResponse{TaskType: taskType.String()}
	for _, p := range taskType.Prompts() {
		bank.Prompts = append(bank.Prompts, dto.PromptDTO{ID: p.ID, Title: p.Title, Text: p.Text})
	}
	c.JSON(http.StatusOK, bank)
}

// ApplyPromoHandler godoc
// @Summary Apply a promo code to the signed-in user's entitlement
// @Description Guests apply promo codes locally in the client; this endpoint requires a bearer token.
// @Tags entitlement
// @Accept json
// @Produce json
// @Param request body dto.PromoRequest true "Promo code"
// @Success 200 {object} dto.PromoResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse "Not signed in"
// @Router /promo [post]
func (ctrl *Controller) ApplyPromoHandler(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if !actor.IsSigned() {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Sign in to apply a promo code"})
		return
	}

	var req dto.PromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	ent, err := ctrl.entitlementSvc.ApplyPromoCode(actor, req.Code)
	resp := dto.PromoResponse{
		Entitlement: dto.EntitlementResponse{
			HasUsedFreeTest:  ent.HasUsedFreeTest,
			PromoCodeApplied: ent.PromoCodeApplied,
			RemainingTests:   ent.RemainingTests,
		},
	}
	if err != nil {
		if errors.Is(err, service.ErrInvalidPromoCode) {
			resp.Message = "Invalid promo code"
			c.JSON(http.StatusOK, resp)
			return
		}
		log.Error().Err(err).Str("userID", actor.UserID).Msg("Promo application failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to apply promo code"})
		return
	}
	resp.Success = true
	resp.Message = fmt.Sprintf("Promo applied: %d practice tests unlocked", service.PromoGrant)
	c.JSON(http.StatusOK, resp)
}

// GetEntitlementHandler godoc
// @Summary Entitlement snapshot for the signed-in user
// @Description Lazily creates the user record on first access. Anonymous callers get the all-false default; their real entitlement lives client-side.
// @Tags entitlement
// @Produce json
// @Success 200 {object} dto.EntitlementResponse
// @Router /entitlement [get]
func (ctrl *Controller) GetEntitlementHandler(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor.IsSigned() {
		ctrl.entitlementSvc.EnsureRecordExists(actor)
	}
	ent := ctrl.entitlementSvc.Load(actor)
	c.JSON(http.StatusOK, dto.EntitlementResponse{
		HasUsedFreeTest:  ent.HasUsedFreeTest,
		PromoCodeApplied: ent.PromoCodeApplied,
		RemainingTests:   ent.RemainingTests,
	})
}

// CreateCheckoutHandler godoc
// @Summary Start a checkout session (stub)
// @Description Payment processing is not implemented; this returns a placeholder checkout URL.
// @Tags payment
// @Accept json
// @Produce json
// @Param request body dto.CheckoutRequest false "Checkout options"
// @Success 200 {object} dto.CheckoutResponse
// @Router /checkout [post]
func (ctrl *Controller) CreateCheckoutHandler(c *gin.Context) {
	var req dto.CheckoutRequest
	_ = c.ShouldBindJSON(&req)

	sessionID := "cs_test_" + uuid.NewString()
	c.JSON(http.StatusOK, dto.CheckoutResponse{
		SessionID:   sessionID,
		CheckoutURL: "https://checkout.example.com/pay/" + sessionID,
	})
}
