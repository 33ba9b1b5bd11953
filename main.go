package main

import (
	"log"
	"os"

	"github.com/RafaelFrancoD/CRM-hol-stico/Controllers"
	"github.com/RafaelFrancoD/CRM-hol-stico/CronJobs"
	"github.com/RafaelFrancoD/CRM-hol-stico/Models"
	"github.com/RafaelFrancoD/CRM-hol-stico/Routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func allowedOrigins() []string {
	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if origin := os.Getenv("CLIENT_ORIGIN"); origin != "" {
		origins = append(origins, origin)
	}
	return origins
}

func main() {
	Models.ConnectDataBase()

	if err := Controllers.EnsureUploadDir(); err != nil {
		log.Fatal("failed to create upload directory:", err)
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))
	Routes.ConfigRoutes(router)

	reminderService := CronJobs.NewAppointmentReminder(Models.DB)
	scheduler := reminderService.StartReminderCron()
	_ = scheduler

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	router.Run(":" + port)
}
