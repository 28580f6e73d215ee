package video

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"screentime-journey-server/models"
	"screentime-journey-server/utils"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var renderClient = resty.New()

// pollInterval is how often render progress is fetched while a job runs.
const pollInterval = 5 * time.Second

// maxPollDuration caps how long a single render is tracked before it is
// declared failed.
const maxPollDuration = 15 * time.Minute

type renderStartResponse struct {
	RenderID string `json:"renderId"`
}

type renderProgressResponse struct {
	Done           bool    `json:"done"`
	OverallProgress float64 `json:"overallProgress"`
	OutputFile     string  `json:"outputFile"`
	FatalError     string  `json:"fatalErrorEncountered"`
}

func newReader(raw json.RawMessage) io.Reader {
	return bytes.NewReader(raw)
}

// submitRender posts the composition and props to the render farm and
// records the remote render id on the job.
func submitRender(job *models.RenderJob) error {
	var out renderStartResponse
	resp, err := renderClient.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"composition": job.Composition,
			"inputProps":  json.RawMessage(job.PropsJSON),
		}).
		SetResult(&out).
		Post(utils.Cfg.RemotionRenderURL + "/render")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 || out.RenderID == "" {
		return fmt.Errorf("render farm returned status %d", resp.StatusCode())
	}

	job.RemoteID = out.RenderID
	job.Status = models.RenderRendering
	return utils.PortalDB.Model(job).Updates(map[string]interface{}{
		"remote_id": job.RemoteID,
		"status":    job.Status,
	}).Error
}

// pollRenderProgress tracks one render until it finishes. Runs in its own
// goroutine; the bridge never retries a failed render.
func pollRenderProgress(jobID, remoteID string) {
	deadline := time.Now().Add(maxPollDuration)

	for time.Now().Before(deadline) {
		time.Sleep(pollInterval)

		var progress renderProgressResponse
		resp, err := renderClient.R().
			SetResult(&progress).
			Get(utils.Cfg.RemotionRenderURL + "/progress/" + remoteID)
		if err != nil || resp.StatusCode() != 200 {
			zap.L().Warn("render progress poll failed", zap.String("job_id", jobID), zap.Error(err))
			continue
		}

		if progress.FatalError != "" {
			failJob(jobID, progress.FatalError)
			return
		}

		if progress.Done {
			now := time.Now()
			utils.PortalDB.Model(&models.RenderJob{}).Where("job_id = ?", jobID).
				Updates(map[string]interface{}{
					"status":      models.RenderDone,
					"progress":    1.0,
					"output_url":  progress.OutputFile,
					"finished_at": now,
				})
			zap.L().Info("render finished", zap.String("job_id", jobID), zap.String("output", progress.OutputFile))
			return
		}

		utils.PortalDB.Model(&models.RenderJob{}).Where("job_id = ?", jobID).
			Update("progress", progress.OverallProgress)
	}

	failJob(jobID, "render timed out")
}

func failJob(jobID, reason string) {
	now := time.Now()
	utils.PortalDB.Model(&models.RenderJob{}).Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"status":      models.RenderError,
			"error_text":  reason,
			"finished_at": now,
		})
	zap.L().Error("render failed", zap.String("job_id", jobID), zap.String("reason", reason))
}

func markJobFailed(job *models.RenderJob, err error) {
	failJob(job.JobID, err.Error())
}
