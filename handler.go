package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"lg/nutriplan-api/internal/store"
)

// Handler holds shared dependencies (store, OpenAI config) for all route handlers.
type Handler struct {
	store         store.Store
	openAIKey     string
	openAIBaseURL string // Base URL for OpenAI API (overridable for tests)
	openAIModel   string
}

/* ─── Response helpers ───────────────────────────────────────────────── */

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// storeError maps store.ErrNotFound to 404 with notFoundMsg and anything else
// to a logged 500 with failMsg.
func storeError(c *gin.Context, op string, err error, notFoundMsg, failMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		apiError(c, http.StatusNotFound, notFoundMsg)
		return
	}
	log.Error().Err(err).Str("op", op).Int("user_id", c.GetInt("user_id")).Msg(failMsg)
	apiError(c, http.StatusInternalServerError, failMsg)
}

// pathID parses the :id route param. Writes a 400 and returns false when it isn't a positive integer.
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		apiError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// validDate reports whether s is a YYYY-MM-DD date.
func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// requestLogger logs one line per request through zerolog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

// newRouter builds the gin engine with recovery, request logging and all routes.
func (h *Handler) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)
	return router
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/profile", h.getProfile)
	api.PATCH("/profile", h.patchProfile)

	api.GET("/planner/targets", h.getTargets)
	api.POST("/planner/calculate", h.calculatePlan)
	api.POST("/planner/custom", h.calculateCustom)
	api.GET("/planner", h.getPlanner)
	api.PUT("/planner", h.savePlanner)
	api.DELETE("/planner/custom", h.resetCustom)
	api.POST("/planner/meals", h.distributeMeals)
	api.POST("/planner/suggest-meals", h.suggestMeals)

	api.GET("/meal-log/daily", h.getDailySummary)
	api.GET("/meal-log/week-summary", h.getWeekSummary)
	api.POST("/meal-log/items", h.createMealLogItem)
	api.PUT("/meal-log/items/:id", h.updateMealLogItem)
	api.DELETE("/meal-log/items/:id", h.deleteMealLogItem)

	api.GET("/body-log", h.getBodyLog)
	api.POST("/body-log", h.upsertBodyLogEntry)
	api.PUT("/body-log/:id", h.updateBodyLogEntry)
	api.DELETE("/body-log/:id", h.deleteBodyLogEntry)

	api.GET("/exercise-planner/preferences", h.getExercisePreferences)
	api.PUT("/exercise-planner/preferences", h.saveExercisePreferences)
	api.GET("/exercise-planner/latest", h.getLatestExercisePlan)
	api.POST("/exercise-planner/generate", h.generateExercisePlan)
}
