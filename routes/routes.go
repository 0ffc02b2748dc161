package routes

import (
	"net/http"
	"os"
	"strings"

	"glowdesk-backend/config"
	"glowdesk-backend/controllers"
	"glowdesk-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func SetupRouter(taxes config.TaxTable, rdb *redis.Client) *gin.Engine {
	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		allowedOrigins = strings.Split(env, ",")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())
	r.Use(config.MetricsCollector())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", config.MetricsHandler())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Customer routes
		customers := api.Group("/customers", utils.RequirePermission(utils.PermManageCustomers))
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)
		}

		// Service catalog routes
		services := api.Group("/services", utils.RequirePermission(utils.PermManageCatalog))
		{
			services.POST("", controllers.CreateService)
			services.GET("", controllers.GetServices)
			services.GET("/:id", controllers.GetService)
			services.PUT("/:id", controllers.UpdateService)
			services.DELETE("/:id", controllers.DeleteService)
		}

		// Inventory routes
		products := api.Group("/products", utils.RequirePermission(utils.PermManageInventory))
		{
			products.POST("", controllers.CreateProduct)
			products.GET("", controllers.GetProducts)
			products.GET("/:id", controllers.GetProduct)
			products.PUT("/:id", controllers.UpdateProduct)
			products.POST("/:id/stock", controllers.AdjustStock)
			products.DELETE("/:id", controllers.DeleteProduct)
		}

		// Staff routes
		staff := api.Group("/staff", utils.RequirePermission(utils.PermManageStaff))
		{
			staff.POST("", controllers.CreateStaff)
			staff.GET("", controllers.GetStaff)
			staff.GET("/:id", controllers.GetStaffMember)
			staff.PUT("/:id", controllers.UpdateStaffMember)
			staff.PUT("/:id/hours", controllers.UpdateStaffHours)
			staff.PUT("/:id/services", controllers.UpdateStaffServices)
			staff.DELETE("/:id", controllers.DeleteStaffMember)
		}

		// Appointment routes
		appointments := api.Group("/appointments", utils.RequirePermission(utils.PermManageBilling))
		{
			appointments.GET("", controllers.GetAppointments)
			appointments.GET("/:id", controllers.GetAppointment)
			appointments.PUT("/:id/cancel", controllers.CancelAppointment)
			appointments.PUT("/:id/complete", controllers.CompleteAppointment)
		}

		// Bill routes
		bills := api.Group("/bills", utils.RequirePermission(utils.PermManageBilling))
		{
			bills.GET("", controllers.GetBills)
			bills.GET("/:id", controllers.GetBill)
		}

		// Dashboard routes
		api.GET("/dashboard", utils.RequirePermission(utils.PermViewDashboard), controllers.GetDashboardOverview)

		// Settings routes
		profile := api.Group("/profile", utils.RequirePermission(utils.PermManageProfile))
		{
			profile.GET("", controllers.GetProfile)
			profile.PUT("", controllers.UpdateProfile)
			profile.PUT("/notifications", controllers.UpdateNotifications)
			profile.PUT("/templates", controllers.UpdateTemplate)
		}
	}

	// Public booking microsite, keyed by business slug
	website := controllers.NewWebsiteController(config.DB, taxes, rdb)
	public := r.Group("/public")
	{
		public.GET("/:slug", website.GetBusiness)
		public.POST("/:slug/availability", website.GetAvailability)
		public.POST("/:slug/book", website.Book)
		public.POST("/:slug/bills/:id/pay", website.PayBill)
	}

	return r
}
