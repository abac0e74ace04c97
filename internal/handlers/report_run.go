package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prpulse/prpulse/internal/models"
	"github.com/prpulse/prpulse/internal/services"
)

type ReportRunHandler struct {
	runService *services.ReportRunService
}

func NewReportRunHandler(runService *services.ReportRunService) *ReportRunHandler {
	return &ReportRunHandler{
		runService: runService,
	}
}

// List handles GET /repos/:repo/runs, returning the repository's aggregation
// run history newest first
func (h *ReportRunHandler) List(c *gin.Context) {
	repoName := c.Param("repo")

	runs, err := h.runService.GetByRepoName(repoName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []*models.ReportRun{}
	}

	c.JSON(http.StatusOK, gin.H{
		"repo_name": repoName,
		"runs":      runs,
	})
}
