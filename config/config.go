package config

import (
	"os"
	"strconv"
	"time"
)

// Settings carries everything the scheduler and sender pool need, loaded
// from the environment once at startup. Dependencies receive values from
// here instead of reading os.Getenv ad hoc.
type Settings struct {
	Port     string
	Timezone string

	TickInterval    time.Duration // schedule evaluator tick
	DueDateInterval time.Duration // overdue housekeeping pass
	PaymentInterval time.Duration // payment reconciliation poll

	WorkerCount int
	QueueSize   int
	RatePerSec  int // outbound messages per second, shared across workers
	MaxRetries  int
	RetryDelay  time.Duration
	SendTimeout time.Duration // per-attempt transport deadline

	TrialPeriodDays   int
	OverdueGraceDays  int // overdue days before housekeeping deactivates a client
	SubscriptionPrice float64

	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	MercadoPagoToken   string
	MercadoPagoBaseURL string
}

func Load() Settings {
	return Settings{
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("TIMEZONE", "America/Sao_Paulo"),

		TickInterval:    getEnvDuration("TICK_INTERVAL", 30*time.Second),
		DueDateInterval: getEnvDuration("DUE_DATE_INTERVAL", time.Hour),
		PaymentInterval: getEnvDuration("PAYMENT_POLL_INTERVAL", 2*time.Minute),

		WorkerCount: getEnvInt("SEND_WORKERS", 4),
		QueueSize:   getEnvInt("SEND_QUEUE_SIZE", 2000),
		RatePerSec:  getEnvInt("SEND_RATE_PER_SEC", 8),
		MaxRetries:  getEnvInt("SEND_MAX_RETRIES", 3),
		RetryDelay:  getEnvDuration("SEND_RETRY_DELAY", time.Second),
		SendTimeout: getEnvDuration("SEND_TIMEOUT", 20*time.Second),

		TrialPeriodDays:   getEnvInt("TRIAL_PERIOD_DAYS", 7),
		OverdueGraceDays:  getEnvInt("OVERDUE_GRACE_DAYS", 7),
		SubscriptionPrice: getEnvFloat("MONTHLY_SUBSCRIPTION_PRICE", 20.00),

		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom: os.Getenv("TWILIO_WHATSAPP_NUMBER"),
		MercadoPagoToken:   os.Getenv("MERCADO_PAGO_ACCESS_TOKEN"),
		MercadoPagoBaseURL: getEnv("MERCADO_PAGO_BASE_URL", "https://api.mercadopago.com"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
