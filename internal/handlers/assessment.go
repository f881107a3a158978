package handlers

import (
	"net/http"

	"mindcare-go/internal/models"
	"mindcare-go/internal/scoring"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AssessmentHandler struct {
	log    *zap.Logger
	scorer *scoring.Scorer
}

func NewAssessmentHandler(log *zap.Logger, scorer *scoring.Scorer) *AssessmentHandler {
	return &AssessmentHandler{log: log, scorer: scorer}
}

type scoreRequest struct {
	Answers models.Answers `json:"answers"`
}

// Score scores a completed questionnaire. Answers are keyed by question id.
func (h *AssessmentHandler) Score(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid assessment payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assessment payload"})
		return
	}

	result := h.scorer.Score(req.Answers)
	h.log.Debug("Assessment scored",
		zap.Int("answers", len(req.Answers)),
		zap.Int("overall", result.OverallScore),
		zap.String("severity", string(result.Severity)),
	)
	c.JSON(http.StatusOK, result)
}
