package profile

import (
	"net/http"

	"screentime-journey-server/handlers/session"
	"screentime-journey-server/models"
	"screentime-journey-server/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var commitmentClient = resty.New()

type commitmentVerdict struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// EvaluateCommitment forwards the three commitment answers to the
// evaluation backend and stores the resulting score on the profile.
func EvaluateCommitment(c *gin.Context) {
	customerID := session.CustomerID(c)

	var input struct {
		Why  string `json:"why"`
		Feel string `json:"feel"`
		Goal string `json:"goal"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	if input.Why == "" || input.Feel == "" || input.Goal == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All three commitment answers are required."})
		return
	}

	var verdict commitmentVerdict
	resp, err := commitmentClient.R().
		SetBody(map[string]string{
			"customer_id": customerID,
			"why":         input.Why,
			"feel":        input.Feel,
			"goal":        input.Goal,
		}).
		SetResult(&verdict).
		Post(utils.Cfg.CommitmentEvalURL)
	if err != nil || resp.StatusCode() != 200 {
		zap.L().Error("commitment evaluation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Commitment evaluation is unavailable. Please try again."})
		return
	}

	if err := utils.PortalDB.Model(&models.Customer{}).
		Where("shopify_customer_id = ?", customerID).
		Updates(map[string]interface{}{
			"commitment_why":   input.Why,
			"commitment_feel":  input.Feel,
			"commitment_goal":  input.Goal,
			"commitment_score": verdict.Score,
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store commitment."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "score": verdict.Score, "feedback": verdict.Feedback})
}
