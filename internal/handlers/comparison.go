package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prpulse/prpulse/internal/services"
)

type ComparisonHandler struct {
	snapshotService   *services.SnapshotService
	comparisonService *services.ComparisonService
}

func NewComparisonHandler(snapshotService *services.SnapshotService, comparisonService *services.ComparisonService) *ComparisonHandler {
	return &ComparisonHandler{
		snapshotService:   snapshotService,
		comparisonService: comparisonService,
	}
}

// Compare handles GET /repos/:repo/comparison?days=N, comparing the latest
// stored snapshot against the baseline from N days ago
func (h *ComparisonHandler) Compare(c *gin.Context) {
	repoName := c.Param("repo")

	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
		return
	}

	current, err := h.snapshotService.GetLatest(repoName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if current == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshots for repository"})
		return
	}

	comparison, err := h.comparisonService.GetComparison(current, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if comparison == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no history to compare against"})
		return
	}

	c.JSON(http.StatusOK, comparison)
}
