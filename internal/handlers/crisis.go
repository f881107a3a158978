package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"mindcare-go/internal/crisis"
	"mindcare-go/internal/models"
	"mindcare-go/internal/platform"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CrisisHandler struct {
	log     *zap.Logger
	manager *crisis.Manager
}

func NewCrisisHandler(log *zap.Logger, manager *crisis.Manager) *CrisisHandler {
	return &CrisisHandler{log: log, manager: manager}
}

type textRequest struct {
	Text string `json:"text"`
}

// launchRequest names the resource to open. Failed reports that the client
// already tried the link and the device could not open it.
type launchRequest struct {
	ResourceID string `json:"resourceId"`
	Failed     bool   `json:"failed"`
}

type followUpRequest struct {
	Severity models.RiskLevel `json:"severity" binding:"required"`
}

// clientActions is what the client must perform on behalf of the server.
type clientActions struct {
	Prompts     []crisis.Prompt      `json:"prompts"`
	Links       []string             `json:"links"`
	Haptics     []crisis.HapticStyle `json:"haptics"`
	VibrationMs []int64              `json:"vibrationMs"`
}

func actionsFrom(c *platform.Capture) clientActions {
	impacts, pattern := c.Haptics()
	out := clientActions{
		Prompts:     c.Prompts(),
		Links:       c.Links(),
		Haptics:     impacts,
		VibrationMs: []int64{},
	}
	if out.Prompts == nil {
		out.Prompts = []crisis.Prompt{}
	}
	if out.Links == nil {
		out.Links = []string{}
	}
	if out.Haptics == nil {
		out.Haptics = []crisis.HapticStyle{}
	}
	for _, d := range pattern {
		out.VibrationMs = append(out.VibrationMs, d.Milliseconds())
	}
	return out
}

// Detect classifies text without responding to it.
func (h *CrisisHandler) Detect(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	c.JSON(http.StatusOK, h.manager.DetectCrisis(req.Text))
}

// Respond classifies text and returns the intervention the client should present.
func (h *CrisisHandler) Respond(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	ctx, capture := platform.WithCapture(c.Request.Context())
	result := h.manager.DetectCrisis(req.Text)
	if err := h.manager.HandleCrisisDetected(ctx, result); err != nil {
		h.log.Error("Failed to handle crisis", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not prepare crisis response"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"detection": result,
		"actions":   actionsFrom(capture),
	})
}

// Call starts a call to a voice resource.
func (h *CrisisHandler) Call(c *gin.Context) {
	h.launch(c, h.manager.CallEmergencyService)
}

// Text opens a message to a text resource.
func (h *CrisisHandler) Text(c *gin.Context) {
	h.launch(c, h.manager.StartTextSupport)
}

func (h *CrisisHandler) launch(c *gin.Context, start func(ctx context.Context, id string) (crisis.LaunchResult, error)) {
	var req launchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	ctx, capture := platform.WithCapture(c.Request.Context())
	if req.Failed {
		capture.RefuseLinks()
	}
	result, err := start(ctx, req.ResourceID)
	body := gin.H{
		"result":  result,
		"actions": actionsFrom(capture),
	}
	switch {
	case err == nil:
	case errors.Is(err, crisis.ErrUnknownResource) && (result.Opened || result.FallbackShown):
		// The primary resource was used instead; tell the client but keep helping.
		body["notice"] = err.Error()
	default:
		h.log.Error("Failed to start emergency contact", zap.String("resource", req.ResourceID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start emergency contact"})
		return
	}
	c.JSON(http.StatusOK, body)
}

// Resources lists emergency resources, optionally narrowed by type and region.
func (h *CrisisHandler) Resources(c *gin.Context) {
	filter := models.ResourceType(c.Query("type"))
	switch filter {
	case "", models.ResourceVoice, models.ResourceText:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be voice or text"})
		return
	}

	var resources []models.EmergencyResource
	if region := c.Query("region"); region != "" {
		resources = h.manager.Resources().ForRegion(region, filter)
	} else {
		resources = h.manager.GetEmergencyResources(filter)
	}
	if resources == nil {
		resources = []models.EmergencyResource{}
	}
	c.JSON(http.StatusOK, gin.H{"resources": resources})
}

// Report returns the anonymized provider report.
func (h *CrisisHandler) Report(c *gin.Context) {
	var since time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be an RFC3339 timestamp"})
			return
		}
		since = t
	}

	report, err := h.manager.PrepareProviderReport(c.Request.Context(), since)
	if err != nil {
		h.log.Error("Failed to prepare provider report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not prepare report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// FollowUp schedules a check-in after a crisis.
func (h *CrisisHandler) FollowUp(c *gin.Context) {
	var req followUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "severity is required"})
		return
	}

	confirmation, err := h.manager.ScheduleFollowUp(c.Request.Context(), req.Severity)
	if err != nil {
		h.log.Error("Failed to schedule follow-up", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not schedule follow-up"})
		return
	}
	c.JSON(http.StatusCreated, confirmation)
}
