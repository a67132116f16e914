package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"streampro-backend/config"
	"streampro-backend/controllers"
	"streampro-backend/models"
	"streampro-backend/routes"
	"streampro-backend/services"
	"streampro-backend/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	settings := config.Load()

	config.ConnectDB()
	if err := config.DB.AutoMigrate(
		&models.User{},
		&models.UserScheduleSettings{},
		&models.Client{},
		&models.MessageTemplate{},
		&models.MessageLog{},
		&models.Subscription{},
	); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	clock, err := utils.NewClock(settings.Timezone)
	if err != nil {
		log.Fatalf("Clock setup failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := services.NewGormStore(config.DB)
	sender := services.NewTwilioSender(settings)
	notifier := services.NewWhatsAppNotifier(store, sender, settings.SendTimeout)

	pool := services.NewSenderPool(store, sender, services.SenderPoolConfig{
		Workers:     settings.WorkerCount,
		QueueSize:   settings.QueueSize,
		RatePerSec:  settings.RatePerSec,
		MaxRetries:  settings.MaxRetries,
		RetryDelay:  settings.RetryDelay,
		SendTimeout: settings.SendTimeout,
	})
	pool.Start(ctx)

	reminders := services.NewReminderService(store, clock, pool)
	reports := services.NewReportService(store, clock, notifier)
	payments := services.NewPaymentService(config.DB, settings, clock, notifier)

	scheduler := services.NewScheduler(store, reminders, reports, payments, notifier, clock, settings)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Scheduler failed to start: %v", err)
	}

	router := routes.SetupRouter(routes.Controllers{
		Clients:   &controllers.ClientController{Sink: pool},
		Reminders: &controllers.ReminderController{Reminders: reminders, Store: store},
		Payments:  &controllers.PaymentController{Payments: payments},
		Dashboard: &controllers.DashboardController{Clock: clock},
	})

	server := &http.Server{
		Addr:    ":" + settings.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Listening on :%s", settings.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}

	scheduler.Stop()
	pool.Stop()
	log.Println("Bye")
}
