package profile

import (
	"errors"
	"net/http"

	"screentime-journey-server/handlers/session"
	"screentime-journey-server/models"
	"screentime-journey-server/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func RegisterProfileRoutes(r *gin.RouterGroup) {
	r.POST("/check_username", CheckUsername)
	r.GET("/get_profile", GetProfile)
	r.POST("/update_profile", UpdateProfile)
	r.POST("/save_profile", SaveProfile)
	r.POST("/evaluate_commitment", EvaluateCommitment)
}

// ValidUsername enforces the portal username rules: 3-20 characters,
// lowercase letters and digits only.
func ValidUsername(username string) bool {
	if len(username) < 3 || len(username) > 20 {
		return false
	}
	for _, r := range username {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func usernameTaken(username, exceptCustomerID string) (bool, error) {
	var existing models.Customer
	err := utils.PortalDB.Where("username = ? AND shopify_customer_id <> ?", username, exceptCustomerID).
		First(&existing).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// CheckUsername reports whether a username is valid and available.
func CheckUsername(c *gin.Context) {
	customerID := session.CustomerID(c)

	var input struct {
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	if !ValidUsername(input.Username) {
		c.JSON(http.StatusOK, gin.H{
			"available": false,
			"error":     "Username must be 3-20 characters, lowercase letters and numbers only.",
		})
		return
	}

	taken, err := usernameTaken(input.Username, customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check username."})
		return
	}
	if taken {
		c.JSON(http.StatusOK, gin.H{"available": false, "error": "This username is already taken."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"available": true})
}

// GetProfile returns the customer's stored profile.
func GetProfile(c *gin.Context) {
	customerInterface, exists := c.Get("customer")
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": customerInterface.(models.Customer)})
}

// SaveProfile creates the customer record on first save. Username
// availability is re-checked immediately before the commit so a name seen
// as free earlier cannot be grabbed in between.
func SaveProfile(c *gin.Context) {
	customerID := session.CustomerID(c)

	var input struct {
		Username       string `json:"username"`
		Gender         string `json:"gender"`
		Email          string `json:"email"`
		WhatsappNumber string `json:"whatsapp_number"`
		CommitmentWhy  string `json:"commitment_why"`
		CommitmentFeel string `json:"commitment_feel"`
		CommitmentGoal string `json:"commitment_goal"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	if !ValidUsername(input.Username) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be 3-20 characters, lowercase letters and numbers only."})
		return
	}

	taken, err := usernameTaken(input.Username, customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check username."})
		return
	}
	if taken {
		c.JSON(http.StatusConflict, gin.H{"error": "This username is already taken."})
		return
	}

	var customer models.Customer
	err = utils.PortalDB.Where("shopify_customer_id = ?", customerID).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		customer = models.Customer{ShopifyCustomerID: customerID}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile."})
		return
	}

	customer.Username = input.Username
	customer.Gender = input.Gender
	customer.Email = input.Email
	customer.WhatsappNumber = input.WhatsappNumber
	customer.CommitmentWhy = input.CommitmentWhy
	customer.CommitmentFeel = input.CommitmentFeel
	customer.CommitmentGoal = input.CommitmentGoal

	if err := utils.PortalDB.Save(&customer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "profile": customer})
}

// UpdateProfile applies partial edits to an existing profile.
func UpdateProfile(c *gin.Context) {
	customerInterface, exists := c.Get("customer")
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found. Save your profile first."})
		return
	}
	customer := customerInterface.(models.Customer)

	var input struct {
		Username       *string `json:"username"`
		Gender         *string `json:"gender"`
		Email          *string `json:"email"`
		WhatsappNumber *string `json:"whatsapp_number"`
		CommitmentWhy  *string `json:"commitment_why"`
		CommitmentFeel *string `json:"commitment_feel"`
		CommitmentGoal *string `json:"commitment_goal"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	if input.Username != nil && *input.Username != customer.Username {
		if !ValidUsername(*input.Username) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be 3-20 characters, lowercase letters and numbers only."})
			return
		}
		taken, err := usernameTaken(*input.Username, customer.ShopifyCustomerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check username."})
			return
		}
		if taken {
			c.JSON(http.StatusConflict, gin.H{"error": "This username is already taken."})
			return
		}
		customer.Username = *input.Username
	}

	if input.Gender != nil {
		customer.Gender = *input.Gender
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}
	if input.WhatsappNumber != nil && *input.WhatsappNumber != customer.WhatsappNumber {
		customer.WhatsappNumber = *input.WhatsappNumber
		customer.WhatsappVerified = false
	}
	if input.CommitmentWhy != nil {
		customer.CommitmentWhy = *input.CommitmentWhy
	}
	if input.CommitmentFeel != nil {
		customer.CommitmentFeel = *input.CommitmentFeel
	}
	if input.CommitmentGoal != nil {
		customer.CommitmentGoal = *input.CommitmentGoal
	}

	if err := utils.PortalDB.Save(&customer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "profile": customer})
}
