package main

import (
	"log"
	"time"

	"screentime-journey-server/handlers/devices"
	"screentime-journey-server/handlers/flows"
	"screentime-journey-server/handlers/milestones"
	"screentime-journey-server/handlers/notifications"
	"screentime-journey-server/handlers/profile"
	"screentime-journey-server/handlers/session"
	"screentime-journey-server/handlers/subscription"
	"screentime-journey-server/handlers/system"
	"screentime-journey-server/handlers/video"
	"screentime-journey-server/handlers/whatsapp"
	"screentime-journey-server/migrations"
	"screentime-journey-server/seed"
	"screentime-journey-server/tasks"
	"screentime-journey-server/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env file:", err)
	}
}

func main() {
	if err := utils.LoadConfig(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	utils.InitLogger()
	defer utils.Log.Sync()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://app.screentimejourney.com", "https://" + utils.Cfg.ShopDomain},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	utils.ConnectDatabase()

	migrations.MigrateCustomers()
	migrations.MigrateDevices()
	migrations.MigrateMilestones()
	migrations.MigrateRenderJobs()

	// Seed reference data
	if err := seed.SeedMilestones(); err != nil {
		log.Fatalf("Failed to seed milestones: %v", err)
	}

	flows.Setup(flows.NewEngine(flows.LiveBackend{}, flows.LiveBackend{}))

	// Public routes
	r.GET("/vpn_profile/:token", devices.ServeVPNProfile)
	r.GET("/get_system_config", system.GetSystemConfig)

	// Render bridge (internal, API-key protected)
	video.RegisterVideoRoutes(r)

	protected := r.Group("/")
	protected.Use(session.SessionMiddleware())
	{
		protected.POST("/session", session.IssueSession)
		protected.GET("/get_milestones", milestones.GetMilestones)
		protected.POST("/calculate_percentile", milestones.CalculatePercentile)
		profile.RegisterProfileRoutes(protected)
		devices.RegisterDeviceRoutes(protected)
		flows.RegisterFlowRoutes(protected)
		whatsapp.RegisterWhatsappRoutes(protected)
		subscription.RegisterSubscriptionRoutes(protected)
		notifications.RegisterNotificationsRoutes(protected)
	}

	relock := tasks.NewRelockTask()
	relock.Start()

	port := utils.Cfg.Port
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
