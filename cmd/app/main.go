package main

import (
	"flag"
	"log"
	"os"

	"SigTrail/internal/di"
	"SigTrail/pkg/config"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	log.Printf("starting env=%s backend=%s db=%s", cfg.Environment, cfg.Backend.Type, cfg.ClickHouse.Database)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}
	if cfg.Backend.Type == "kafka" {
		log.Printf("kafka: brokers=%v topic=%s", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
