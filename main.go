package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"nets-gateway/internal/api"
	"nets-gateway/internal/config"
	"nets-gateway/internal/db"
	"nets-gateway/internal/event"
	"nets-gateway/internal/gateway"
	"nets-gateway/internal/logging"
	"nets-gateway/internal/metrics"
	"nets-gateway/internal/netaxept"
)

func main() {
	godotenv.Load()

	cfg := config.MustLoadConfig(".")

	logger := logging.GetLogger(cfg.Logs)
	metrics.Setup(cfg.Metrics)

	connStr := db.GetConnStr(cfg.Database)
	db.RunMigrations(connStr, "migrations")

	dbpool, err := db.GetPool(connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer dbpool.Close()

	repo := db.NewPaymentRepository(dbpool)

	var publisher *event.Publisher
	if cfg.Kafka.Broker.URL != "" {
		writer := event.NewWriter(cfg.Kafka)
		defer writer.Close()
		publisher = event.NewPublisher(writer, logger)
	}

	client := netaxept.NewClient(cfg.Gateway, cfg.Client, logger)
	manager := gateway.NewManager(cfg.Gateway, client, gateway.NewQueryCache(), publisher, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /liveness", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	api.NewHandler(manager, repo, logger).Register(mux)

	logger.Info("Starting gateway", "mode", cfg.Gateway.Mode, "endpoint", client.Endpoint())
	log.Fatal(http.ListenAndServe(":"+cfg.Server.Port, mux))
}
