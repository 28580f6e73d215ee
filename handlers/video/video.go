package video

import (
	"encoding/json"
	"net/http"

	"screentime-journey-server/models"
	"screentime-journey-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MilestoneReelProps are the flat composition props for a personalized
// milestone video. Field names match the Remotion composition schema.
type MilestoneReelProps struct {
	Username       string `json:"username"`
	MilestoneTitle string `json:"milestoneTitle"`
	MilestoneEmoji string `json:"milestoneEmoji"`
	DaysInFocus    int    `json:"daysInFocus"`
	NextTitle      string `json:"nextTitle"`
	DaysToNext     int    `json:"daysToNext"`
	MediaURL       string `json:"mediaUrl"`
}

// SocialShareReelProps are the flat composition props for a share video.
type SocialShareReelProps struct {
	Username    string `json:"username"`
	Headline    string `json:"headline"`
	DaysInFocus int    `json:"daysInFocus"`
	Percentile  int    `json:"percentile"`
	MediaURL    string `json:"mediaUrl"`
}

func RegisterVideoRoutes(r *gin.Engine) {
	internal := r.Group("/", RenderAPIKeyMiddleware())
	internal.POST("/render_video", RenderVideo)
	internal.GET("/render_progress/:job_id", RenderProgress)
}

// RenderAPIKeyMiddleware guards the render bridge: it is called by backend
// triggers, never by the dashboard.
func RenderAPIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Render-Key") != utils.Cfg.RenderAPIKey || utils.Cfg.RenderAPIKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid render key"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RenderVideo accepts a composition id plus its props, creates a render
// job and hands it to the render farm. Progress is polled asynchronously;
// the caller tracks the job via /render_progress.
func RenderVideo(c *gin.Context) {
	var input struct {
		Composition string          `json:"composition"`
		CustomerID  string          `json:"customer_id"`
		Props       json.RawMessage `json:"props"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if input.Composition != models.CompositionMilestoneReel &&
		input.Composition != models.CompositionSocialShareReel {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown composition."})
		return
	}
	if !validProps(input.Composition, input.Props) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Props do not match the composition schema."})
		return
	}

	job := models.RenderJob{
		JobID:       uuid.NewString(),
		CustomerID:  input.CustomerID,
		Composition: input.Composition,
		PropsJSON:   string(input.Props),
		Status:      models.RenderQueued,
	}
	if err := utils.PortalDB.Create(&job).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create render job."})
		return
	}

	if err := submitRender(&job); err != nil {
		// A failed render is terminal: no retries.
		markJobFailed(&job, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Render farm rejected the job.", "job_id": job.JobID})
		return
	}

	go pollRenderProgress(job.JobID, job.RemoteID)

	c.JSON(http.StatusAccepted, gin.H{"job_id": job.JobID, "status": job.Status})
}

// RenderProgress reports the state of a render job.
func RenderProgress(c *gin.Context) {
	jobID := c.Param("job_id")

	var job models.RenderJob
	if err := utils.PortalDB.Where("job_id = ?", jobID).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Render job not found."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":     job.JobID,
		"status":     job.Status,
		"progress":   job.Progress,
		"output_url": job.OutputURL,
		"error":      job.ErrorText,
	})
}

func validProps(composition string, raw json.RawMessage) bool {
	dec := json.NewDecoder(newReader(raw))
	dec.DisallowUnknownFields()
	switch composition {
	case models.CompositionMilestoneReel:
		var p MilestoneReelProps
		return dec.Decode(&p) == nil
	case models.CompositionSocialShareReel:
		var p SocialShareReelProps
		return dec.Decode(&p) == nil
	}
	return false
}
