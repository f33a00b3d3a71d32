package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	rootMessage = "FailureGuard AI Backend Running"

	errLoadReadings  = "failed to load readings"
	errLoadMachines  = "failed to load machines"
	errAskAssistant  = "failed to answer query"
	errInvalidBody   = "invalid body: "
	errEmptyQuestion = "question must not be empty"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// QueryRequest is the payload of the assistant endpoint.
type QueryRequest struct {
	// Free-text maintenance question
	Question string `json:"question" binding:"required" example:"Why is PUMP_A flagged?"`
}

// @Summary      Liveness
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       / [get]
func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": rootMessage})
}

// @Summary      Latest reading per machine
// @Tags         readings
// @Produce      json
// @Success      200  {object}  models.MachineHealthView
// @Failure      500  {object}  map[string]string
// @Router       /sensors [get]
func (h *Handler) getSensors(c *gin.Context) {
	view, err := h.services.Monitoring.Latest(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadReadings, "sensors_load_failed", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      Anomalous latest readings
// @Tags         readings
// @Produce      json
// @Success      200  {array}   models.DerivedReading
// @Failure      500  {object}  map[string]string
// @Router       /alerts [get]
func (h *Handler) getAlerts(c *gin.Context) {
	alerts, err := h.services.Monitoring.Alerts(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadReadings, "alerts_load_failed", err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// @Summary      Health band per machine
// @Tags         readings
// @Produce      json
// @Success      200  {object}  map[string]models.MachineHealth
// @Failure      500  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) getHealth(c *gin.Context) {
	health, err := h.services.Monitoring.Health(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadReadings, "health_load_failed", err)
		return
	}
	c.JSON(http.StatusOK, health)
}

// @Summary      Fleet summary
// @Tags         readings
// @Produce      json
// @Success      200  {object}  models.Summary
// @Failure      500  {object}  map[string]string
// @Router       /summary [get]
func (h *Handler) getSummary(c *gin.Context) {
	sum, err := h.services.Monitoring.Summary(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadReadings, "summary_load_failed", err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// @Summary      Mirrored machine rows
// @Description  Latest reading per machine as stored in SQLite, with the time it was recorded
// @Tags         history
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, machines"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/machines [get]
func (h *Handler) getMachines(c *gin.Context) {
	machines, err := h.services.Monitoring.Machines(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadMachines, "machines_load_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(machines),
		"machines": machines,
	})
}

// @Summary      Ask the maintenance assistant
// @Description  Answers using the live readings and the maintenance documents
// @Tags         assistant
// @Accept       json
// @Produce      json
// @Param        body  body      QueryRequest  true  "Question"
// @Success      200   {object}  service.QueryResult
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /query [post]
func (h *Handler) query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody + err.Error()})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errEmptyQuestion})
		return
	}
	res, err := h.services.Assistant.Ask(c.Request.Context(), req.Question)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errAskAssistant, "query_failed", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
