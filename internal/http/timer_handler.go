package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"countdown-api/internal/repository"
	"countdown-api/internal/service"
)

// TimerHandler mantiene dependencias para los endpoints de timers.
type TimerHandler struct {
	logger    *zap.Logger
	timerServ *service.TimerService
}

// NewTimerHandler crea una instancia de TimerHandler con dependencias necesarias.
func NewTimerHandler(logger *zap.Logger, timerServ *service.TimerService) *TimerHandler {
	return &TimerHandler{
		logger:    logger,
		timerServ: timerServ,
	}
}

// ListTimers maneja GET /api/auth/timers.
func (h *TimerHandler) ListTimers(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	status := c.DefaultQuery("status", service.StatusFilterActive)
	timers, err := h.timerServ.List(c.Request.Context(), claims.UserID, status)
	if err != nil {
		h.writeTimerError(c, err, "list timers")
		return
	}
	c.JSON(http.StatusOK, timers)
}

// SearchTimers maneja GET /api/auth/timers/search.
func (h *TimerHandler) SearchTimers(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	query := c.Query("q")
	status := c.DefaultQuery("status", service.StatusFilterActive)
	timers, err := h.timerServ.Search(c.Request.Context(), claims.UserID, query, status)
	if err != nil {
		h.writeTimerError(c, err, "search timers")
		return
	}
	c.JSON(http.StatusOK, timers)
}

// CreateTimer maneja POST /api/auth/timers.
func (h *TimerHandler) CreateTimer(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		TargetDate  string `json:"targetDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create timer request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	targetDate, err := parseTargetDate(req.TargetDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target date"})
		return
	}

	timers, err := h.timerServ.Create(c.Request.Context(), claims.UserID, service.CreateTimerInput{
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  targetDate,
	})
	if err != nil {
		h.writeTimerError(c, err, "create timer")
		return
	}
	c.JSON(http.StatusCreated, timers)
}

// UpdateTimer maneja PUT /api/auth/timers/:timerId.
func (h *TimerHandler) UpdateTimer(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Title string `json:"title"`
		// Puntero para distinguir descripcion omitida de vacia.
		Description *string `json:"description"`
		TargetDate  string  `json:"targetDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update timer request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	targetDate, err := parseTargetDate(req.TargetDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target date"})
		return
	}

	timers, err := h.timerServ.Update(c.Request.Context(), claims.UserID, c.Param("timerId"), service.UpdateTimerInput{
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  targetDate,
	})
	if err != nil {
		h.writeTimerError(c, err, "update timer")
		return
	}
	c.JSON(http.StatusOK, timers)
}

// DeleteTimer maneja DELETE /api/auth/timers/:timerId.
func (h *TimerHandler) DeleteTimer(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	timers, err := h.timerServ.Delete(c.Request.Context(), claims.UserID, c.Param("timerId"))
	if err != nil {
		h.writeTimerError(c, err, "delete timer")
		return
	}
	c.JSON(http.StatusOK, timers)
}

func (h *TimerHandler) writeTimerError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, service.ErrTimerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Timer not found"})
	case errors.Is(err, service.ErrTimerFieldsRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and target date are required"})
	case errors.Is(err, repository.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "concurrent update, retry"})
	default:
		h.logger.Error(action+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not " + action})
	}
}

var targetDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTargetDate acepta los formatos de fecha que envia el frontend.
// Valor vacio devuelve cero: la validacion de requerido vive en el servicio.
func parseTargetDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range targetDateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format %q", value)
}
