package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"payment-webhook-service/internal/config"
	"payment-webhook-service/internal/db"
	"payment-webhook-service/internal/kafka"
	"payment-webhook-service/internal/logging"
	"payment-webhook-service/internal/metrics"
	"payment-webhook-service/internal/reservation"
	"payment-webhook-service/internal/stripeclient"
	"payment-webhook-service/internal/webhook"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoadConfig(".")

	logger := logging.GetLogger(cfg.Logs)
	slog.SetDefault(logger)

	metrics.Setup(cfg.Metrics)

	// Both secrets are read once here and passed down as values.
	apiKey := config.GetRequired("STRIPE_API_KEY")
	webhookSecret := config.GetRequired("STRIPE_WEBHOOK_SECRET")

	connStr := db.GetConnStr(cfg.Database)

	if err := db.RunMigrations(connStr, "migrations"); err != nil {
		log.Fatal(err)
	}

	pool, err := db.GetPool(connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	repo := db.NewReservationRepository(pool)

	writer := kafka.NewWriter(cfg.Kafka)
	defer writer.Close()

	notifier := kafka.NewNotifier(writer, logger)
	intents := stripeclient.New(cfg.Stripe.BaseURL, apiKey)

	handlers := reservation.NewService(repo, intents, notifier, logger)

	tolerance := time.Duration(cfg.Stripe.ToleranceSeconds) * time.Second
	processor := webhook.NewProcessor(webhookSecret, tolerance, handlers, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /liveness", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("POST /payment/stripe/webhook", webhook.NewHandler(processor, logger))

	logger.Info("Starting server", "port", cfg.Server.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Server.Port, mux))
}
