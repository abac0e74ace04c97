package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prpulse/prpulse/internal/models"
	"github.com/prpulse/prpulse/internal/services"
)

type SnapshotHandler struct {
	snapshotService *services.SnapshotService
}

func NewSnapshotHandler(snapshotService *services.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{
		snapshotService: snapshotService,
	}
}

// Latest handles GET /repos/:repo/snapshots/latest
func (h *SnapshotHandler) Latest(c *gin.Context) {
	repoName := c.Param("repo")

	snapshot, err := h.snapshotService.GetLatest(repoName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshots for repository"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// ForDate handles GET /repos/:repo/snapshots/:date, where :date is either a
// calendar day or the literal "latest"
func (h *SnapshotHandler) ForDate(c *gin.Context) {
	repoName := c.Param("repo")

	if c.Param("date") == "latest" {
		h.Latest(c)
		return
	}

	date, err := time.Parse(models.SnapshotDateFormat, c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted YYYY-MM-DD"})
		return
	}

	snapshot, err := h.snapshotService.GetForDate(repoName, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot for date"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// InRange handles GET /repos/:repo/snapshots?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *SnapshotHandler) InRange(c *gin.Context) {
	repoName := c.Param("repo")

	start, err := time.Parse(models.SnapshotDateFormat, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be formatted YYYY-MM-DD"})
		return
	}
	end, err := time.Parse(models.SnapshotDateFormat, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be formatted YYYY-MM-DD"})
		return
	}

	snapshots, err := h.snapshotService.GetInRange(repoName, start, end)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if snapshots == nil {
		snapshots = []*models.Snapshot{}
	}

	c.JSON(http.StatusOK, gin.H{
		"repo_name": repoName,
		"snapshots": snapshots,
	})
}
