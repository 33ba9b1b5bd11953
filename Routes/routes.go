package Routes

import (
	"net/http"

	"github.com/RafaelFrancoD/CRM-hol-stico/Controllers"
	"github.com/RafaelFrancoD/CRM-hol-stico/Middleware"
	"github.com/RafaelFrancoD/CRM-hol-stico/SSE"
	"github.com/RafaelFrancoD/CRM-hol-stico/Whatsapp"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

func ConfigRoutes(router *gin.Engine) {
	// Gzip Compression
	router.Use(gzip.Gzip(gzip.BestSpeed))

	// Public routes
	public := router.Group("/api")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Server is healthy"})
		})
		public.POST("/auth/login", Controllers.Login)
		public.POST("/auth/register", Controllers.Register)
		public.POST("/auth/logout", Controllers.Logout)
	}

	// Authorized routes
	authorized := router.Group("/api")
	authorized.Use(Middleware.JwtAuthMiddleware())
	authorized.Use(Middleware.SetOwner())
	{
		// User-related routes
		authorized.GET("/auth/me", Controllers.CurrentUser)

		// Generic store routes
		authorized.GET("/data/:store", Controllers.ListStoreRecords)
		authorized.POST("/data/:store", Controllers.CreateStoreRecord)
		authorized.GET("/data/:store/:id", Controllers.GetStoreRecord)
		authorized.PUT("/data/:store/:id", Controllers.UpdateStoreRecord)
		authorized.DELETE("/data/:store/:id", Controllers.DeleteStoreRecord)

		// Scheduler routes
		authorized.POST("/appointments/schedule", Controllers.ScheduleAppointment)
		authorized.POST("/appointments/delete", Controllers.DeleteAppointment)
		authorized.POST("/patients/delete", Controllers.DeletePatient)

		// File upload
		authorized.POST("/files/upload", Controllers.UploadFile)

		// Template text generation
		authorized.POST("/gemini/generate", Controllers.GenerateText)
		authorized.POST("/gemini/strategy", Controllers.GenerateStrategy)

		// WhatsApp-related routes
		authorized.POST("/whatsapp/links", Whatsapp.Links)

		// Finance export routes
		authorized.POST("/finance/export", Controllers.ExportTransactionsExcel)
		authorized.GET("/finance/summary", Controllers.FinanceSummary)

		// SSE (Server-Sent Events) route
		authorized.GET("/events", SSE.StreamEvents)
	}

	// Static file serving
	router.Static("/uploads", Controllers.UploadDir())
}
