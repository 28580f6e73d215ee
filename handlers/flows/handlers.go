package flows

import (
	"errors"
	"net/http"

	"screentime-journey-server/handlers/session"

	"github.com/gin-gonic/gin"
)

var (
	engine *Engine
	store  *Store
)

// Setup wires the package-level engine and store. Called once from main.
func Setup(e *Engine) {
	engine = e
	store = NewStore()
}

func RegisterFlowRoutes(r *gin.RouterGroup) {
	r.POST("/flows/start", StartFlow)
	r.POST("/flows/next", NextStep)
	r.POST("/flows/prev", PrevStep)
	r.POST("/flows/cancel", CancelFlow)
	r.POST("/flows/generate_vpn", GenerateFlowVPN)
	r.GET("/flows/current", CurrentFlow)
}

func flowView(in *Instance) gin.H {
	step := in.CurrentStepInfo()
	return gin.H{
		"flow": in,
		"step": step,
	}
}

// StartFlow opens a new wizard for the customer.
func StartFlow(c *gin.Context) {
	customerID := session.CustomerID(c)

	var input struct {
		Kind     string `json:"kind"`
		DeviceID string `json:"device_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Kind == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	in, err := engine.Start(customerID, input.Kind, input.DeviceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := store.Put(in); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Another flow is already in progress. Close it first."})
		return
	}

	c.JSON(http.StatusOK, flowView(in))
}

// NextStep advances the customer's open wizard.
func NextStep(c *gin.Context) {
	customerID := session.CustomerID(c)

	in, ok := store.Get(customerID)
	if !ok || in.Status != StatusActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active flow."})
		return
	}

	var input struct {
		Fields map[string]string `json:"fields"`
	}
	// An empty body is fine for steps without input.
	_ = c.ShouldBindJSON(&input)

	if err := engine.Next(in, input.Fields); err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":        "Please correct the highlighted fields.",
				"field_errors": in.FieldErrors,
			})
		case errors.Is(err, ErrFlowFinished):
			c.JSON(http.StatusConflict, gin.H{"error": "This flow is already finished."})
		default:
			// Fail loud, keep state: the customer retries the same action.
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, flowView(in))
}

// PrevStep steps the wizard back one step.
func PrevStep(c *gin.Context) {
	customerID := session.CustomerID(c)

	in, ok := store.Get(customerID)
	if !ok || in.Status != StatusActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active flow."})
		return
	}

	if err := engine.Prev(in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, flowView(in))
}

// CancelFlow abandons the open wizard without persisting anything.
func CancelFlow(c *gin.Context) {
	customerID := session.CustomerID(c)

	in, ok := store.Get(customerID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active flow."})
		return
	}

	engine.Cancel(in)
	store.Drop(customerID)

	c.JSON(http.StatusOK, gin.H{"success": true, "status": StatusCancelled})
}

// GenerateFlowVPN triggers the optional profile generation on the setup
// flow's install step.
func GenerateFlowVPN(c *gin.Context) {
	customerID := session.CustomerID(c)

	in, ok := store.Get(customerID)
	if !ok || in.Status != StatusActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active flow."})
		return
	}

	if err := engine.GenerateVPN(in); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, flowView(in))
}

// CurrentFlow returns the customer's open wizard, if any.
func CurrentFlow(c *gin.Context) {
	customerID := session.CustomerID(c)

	in, ok := store.Get(customerID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active flow."})
		return
	}

	c.JSON(http.StatusOK, flowView(in))
}
