package routes

import (
	"streampro-backend/config"
	"streampro-backend/controllers"
	"streampro-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Controllers bundles the handlers that need wired dependencies (job sink,
// services, clock). Stateless handlers stay package-level functions.
type Controllers struct {
	Clients   *controllers.ClientController
	Reminders *controllers.ReminderController
	Payments  *controllers.PaymentController
	Dashboard *controllers.DashboardController
}

func SetupRouter(ctl Controllers) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"https://app.streampro.digital",
			"http://localhost:3000",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	// Provider callbacks carry no user token.
	r.POST("/webhook/mercadopago", ctl.Payments.MercadoPagoWebhook)

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		clients := api.Group("/clients")
		{
			clients.POST("", ctl.Clients.CreateClient)
			clients.GET("", ctl.Clients.GetClients)
			clients.GET("/:id", ctl.Clients.GetClient)
			clients.PUT("/:id", ctl.Clients.UpdateClient)
			clients.DELETE("/:id", ctl.Clients.DeleteClient)
			clients.POST("/:id/renew", ctl.Clients.RenewClient)
		}

		templates := api.Group("/templates")
		{
			templates.POST("", controllers.CreateTemplate)
			templates.GET("", controllers.GetTemplates)
			templates.PUT("/:id", controllers.UpdateTemplate)
			templates.DELETE("/:id", controllers.DeleteTemplate)
			templates.POST("/restore-defaults", controllers.RestoreDefaultTemplates)
		}

		reminders := api.Group("/reminders")
		{
			reminders.POST("/run", ctl.Reminders.RunNow)
			reminders.GET("/logs", ctl.Reminders.GetLogs)
		}

		settings := api.Group("/settings")
		{
			settings.GET("/schedule", ctl.Reminders.GetScheduleSettings)
			settings.PUT("/schedule", ctl.Reminders.UpdateScheduleSettings)
		}

		payments := api.Group("/payments")
		{
			payments.POST("/pix", ctl.Payments.CreatePixPayment)
		}

		api.GET("/dashboard", ctl.Dashboard.GetOverview)
	}

	return r
}
