package main

import (
	"fmt"
	"log"
	"os"

	"glowdesk-backend/config"
	"glowdesk-backend/models"
	"glowdesk-backend/routes"
	"glowdesk-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.Business{},
		&models.User{},
		&models.Staff{},
		&models.Customer{},
		&models.Service{},
		&models.Product{},
		&models.Appointment{},
		&models.Bill{},
		&models.BillItem{},
		&models.NotificationTemplate{},
		&models.NotificationLog{},
	)
}

func main() {
	taxes, err := config.LoadTaxTable("")
	if err != nil {
		log.Fatalf("Failed to load tax table: %v", err)
	}

	rdb := config.ConnectRedis()

	notifier := services.NewNotifier(config.DB)
	notifier.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter(taxes, rdb)
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
