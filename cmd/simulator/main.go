package main

import (
	"log"

	"linguacall/config"
	"linguacall/internal/simulator"
	"linguacall/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()
	lg := logger.New(cfg.LogMode)
	defer lg.Sync()

	state := simulator.NewState()
	if err := simulator.SeedDemo(state); err != nil {
		log.Fatalf("Failed to seed demo accounts: %v", err)
	}

	srv := simulator.NewServer(state, lg, cfg.SimulatorJWTSecret, cfg.SimulatorJWTExpiry)

	lg.Infof("simulator listening on port %s", cfg.SimulatorPort)
	if err := srv.Router().Run(":" + cfg.SimulatorPort); err != nil {
		log.Fatalf("Failed to start simulator: %v", err)
	}
}
