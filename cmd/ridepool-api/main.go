// README: Entry point; loads config, wires modules, starts the HTTP server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"ridepool/internal/config"
	httptransport "ridepool/internal/http"
	"ridepool/internal/infra"
	"ridepool/internal/modules/account"
	"ridepool/internal/modules/complaint"
	"ridepool/internal/modules/location"
	"ridepool/internal/modules/trip"
	"ridepool/internal/modules/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("postgres init", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	var estimator trip.DistanceEstimator
	if cfg.Maps.APIKey != "" {
		estimator, err = trip.NewGoogleEstimator(cfg.Maps.APIKey)
		if err != nil {
			logger.Fatal("maps client init", zap.Error(err))
		}
	}

	accountStore := account.NewStore(dbPool)
	accountSvc := account.NewService(accountStore, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger)

	walletStore := wallet.NewStore(dbPool)

	locationStore := location.NewStore(redisClient)
	locationSvc := location.NewService(locationStore, logger)

	tripStore := trip.NewStore(dbPool)
	tripSvc := trip.NewService(tripStore, walletStore, locationSvc, estimator, logger)

	complaintStore := complaint.NewStore(dbPool)
	complaintSvc := complaint.NewService(complaintStore, accountStore, logger)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Accounts:   accountSvc,
		Trips:      tripSvc,
		Complaints: complaintSvc,
		Wallets:    walletStore,
		Locations:  locationSvc,
		Log:        logger,
	})

	server := httptransport.NewServer(cfg.HTTP.Addr, router, logger)
	if err := server.Run(ctx); err != nil {
		logger.Fatal("http server", zap.Error(err))
	}
}
