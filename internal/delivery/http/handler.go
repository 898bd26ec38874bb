package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nutrikatori/backend/internal/domain"
)

const (
	serviceName    = "nutrikatori-backend"
	serviceVersion = "1.0.0"
)

// NutritionEstimator is the usecase surface the handlers need
type NutritionEstimator interface {
	EstimateDish(ctx context.Context, query string, table domain.FoodTable) (*domain.DishEstimate, error)
	EstimateIngredients(ctx context.Context, lines []domain.IngredientLine, table domain.FoodTable) (*domain.Estimate, error)
	EstimateMass(ingredientName, quantityText string) float64
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	service NutritionEstimator
	table   domain.FoodTable
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler. A nil service makes every nutrition
// endpoint answer 501.
func NewHandler(service NutritionEstimator, table domain.FoodTable, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service: service,
		table:   table,
		logger:  logger,
	}
}

// EstimateDishRequest is the body of POST /api/v1/nutrition/estimate
type EstimateDishRequest struct {
	DishName string `json:"dishName"`
}

// EstimateIngredientsRequest is the body of POST /api/v1/nutrition/ingredients
type EstimateIngredientsRequest struct {
	Ingredients []domain.IngredientLine `json:"ingredients"`
}

// EstimateMassRequest is the body of POST /api/v1/nutrition/mass
type EstimateMassRequest struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

// EstimateMassResponse reports the grams estimated for one ingredient line
type EstimateMassResponse struct {
	Name     string  `json:"name"`
	Quantity string  `json:"quantity"`
	Grams    float64 `json:"grams"`
}

// DishEstimateResponse wraps a dish estimate with its degraded flag
type DishEstimateResponse struct {
	*domain.DishEstimate
	Degraded bool `json:"degraded"`
}

// EstimateResponse wraps an ingredient estimate with its degraded flag
type EstimateResponse struct {
	*domain.Estimate
	Degraded bool `json:"degraded"`
}

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error     string   `json:"error"`
	Code      string   `json:"code"`
	Unmatched []string `json:"unmatched,omitempty"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	foods := 0
	if h.table != nil {
		foods = len(h.table.Records())
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
		"foods":   foods,
	})
}

// EstimateDish handles free-text dish estimation requests
func (h *Handler) EstimateDish(c *gin.Context) {
	if h.service == nil {
		h.notConfigured(c)
		return
	}

	var req EstimateDishRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.DishName) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "User input is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	result, err := h.service.EstimateDish(c.Request.Context(), req.DishName, h.table)
	if err != nil {
		var estimate *domain.Estimate
		if result != nil {
			estimate = result.Estimate
		}
		h.writeError(c, err, estimate)
		return
	}

	c.JSON(http.StatusOK, DishEstimateResponse{
		DishEstimate: result,
		Degraded:     result.Estimate.Degraded(),
	})
}

// EstimateIngredients handles estimation of an explicit ingredient list
func (h *Handler) EstimateIngredients(c *gin.Context) {
	if h.service == nil {
		h.notConfigured(c)
		return
	}

	var req EstimateIngredientsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Ingredients) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "At least one ingredient is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	estimate, err := h.service.EstimateIngredients(c.Request.Context(), req.Ingredients, h.table)
	if err != nil {
		h.writeError(c, err, estimate)
		return
	}

	c.JSON(http.StatusOK, EstimateResponse{
		Estimate: estimate,
		Degraded: estimate.Degraded(),
	})
}

// EstimateMass converts one household quantity to grams
func (h *Handler) EstimateMass(c *gin.Context) {
	if h.service == nil {
		h.notConfigured(c)
		return
	}

	var req EstimateMassRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Ingredient name is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	c.JSON(http.StatusOK, EstimateMassResponse{
		Name:     req.Name,
		Quantity: req.Quantity,
		Grams:    h.service.EstimateMass(req.Name, req.Quantity),
	})
}

func (h *Handler) notConfigured(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, ErrorResponse{
		Error: "Nutrition service not configured",
		Code:  "NOT_CONFIGURED",
	})
}

// writeError maps usecase errors to HTTP responses
func (h *Handler) writeError(c *gin.Context, err error, estimate *domain.Estimate) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
	case errors.Is(err, domain.ErrDishNotRecognized):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error: "Dish name could not be extracted from input",
			Code:  "DISH_NOT_RECOGNIZED",
		})
	case errors.Is(err, domain.ErrNoIngredientsMatched):
		resp := ErrorResponse{Error: "No ingredients could be matched", Code: "NO_MATCH"}
		if estimate != nil {
			resp.Unmatched = estimate.Unmatched
		}
		c.JSON(http.StatusUnprocessableEntity, resp)
	case errors.Is(err, domain.ErrEmptyTable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Food table not loaded",
			Code:  "TABLE_UNAVAILABLE",
		})
	case errors.Is(err, domain.ErrReasoningNotConfigured):
		c.JSON(http.StatusNotImplemented, ErrorResponse{
			Error: "Reasoning service not configured",
			Code:  "NOT_CONFIGURED",
		})
	case errors.Is(err, domain.ErrReasoningFailure), errors.Is(err, domain.ErrMalformedPayload):
		h.logger.Warn("reasoning service failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: "Reasoning service temporarily unavailable",
			Code:  "UPSTREAM_ERROR",
		})
	default:
		h.logger.Error("estimation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
			Code:  "INTERNAL_ERROR",
		})
	}
}
