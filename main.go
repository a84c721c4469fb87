package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"congestion-server/config"
	"congestion-server/di"
	"congestion-server/util"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "prod"
	}

	var envCfg *config.Env
	if appEnv == "prod" {
		cfg, err := config.LoadEnv()
		if err != nil {
			log.Fatalf("Failed to load environment config: %v", err)
		}
		envCfg = cfg
	} else {
		envCfg = &config.Env{HTTPPort: "8080"}
	}

	container := di.NewContainer(appEnv, envCfg)

	ctx := context.Background()
	if appEnv != "prod" {
		seedVenues(ctx, container)
	}

	log.Println("refreshing patterns!")
	if err := container.PatternsRefresherService.RefreshPatterns(ctx); err != nil {
		log.Printf("Initial patterns refresh failed: %v", err)
	}

	log.Println("starting periodic job!")
	container.PatternsRefresherService.StartPeriodicJob(config.PATTERNS_REFRESHER_SCHEDULE_MINUTES * time.Minute)

	log.Println("starting server!")
	container.CongestionHttpServer.Start()
}

// seedVenues loads the venue catalog fixture so dev environments have data.
func seedVenues(ctx context.Context, container *di.Container) {
	venues, err := util.ReadVenuesFromJSON(config.GetResourcePath(config.VENUES_SEED_RESOURCE))
	if err != nil {
		log.Printf("Failed to read venue seed: %v", err)
		return
	}
	for i := range venues {
		if err := container.VenueStore.Save(ctx, &venues[i]); err != nil {
			log.Printf("Failed to seed venue %s: %v", venues[i].PlaceID, err)
		}
	}
	log.Printf("Seeded %d venues", len(venues))
}
