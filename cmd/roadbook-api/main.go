// README: Entry point; loads config, wires services, starts the HTTP server and drains the ordering batcher on shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"roadbook/internal/config"
	httptransport "roadbook/internal/http"
	"roadbook/internal/infra"
	"roadbook/internal/maps"
	"roadbook/internal/modules/availability"
	"roadbook/internal/modules/booking"
	"roadbook/internal/modules/fleet"
	"roadbook/internal/modules/location"
	"roadbook/internal/modules/ordering"
	"roadbook/internal/modules/pricing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}
	log := infra.NewLogger(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		log.Fatal("ROADBOOK_FIREBASE_PROJECT_ID is required")
	}
	fbApp, err := infra.NewFirebaseApp(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.WithError(err).Fatal("firebase init")
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, fbApp)
	if err != nil {
		log.WithError(err).Fatal("firebase auth init")
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.WithError(err).Fatal("postgres init")
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())
	tz := cfg.Location()

	var meter location.DistanceMeter = location.Haversine{}
	if cfg.Distance.Provider == "google" {
		routes, err := maps.NewRouteService(cfg.Distance.GoogleAPIKey)
		if err != nil {
			log.WithError(err).Fatal("maps init")
		}
		meter = routes
	}
	locationSvc := location.NewService(location.NewStore(dbPool), meter)

	pricingStore := pricing.NewStore(dbPool)
	settings := pricing.NewCachedSettings(pricingStore, redisClient, cfg.Pricing.SettingsCacheTTL, log)
	pricingSvc := pricing.NewService(pricingStore, settings, validate, log)

	fleetSvc := fleet.NewService(fleet.NewStore(dbPool), log)

	searchSvc := availability.NewService(locationSvc, fleetSvc, settings, pricingSvc, validate, log, tz)

	var publishers booking.MultiPublisher
	if cfg.Kafka.Enabled {
		producer, err := infra.NewKafkaProducer(cfg.Kafka.Brokers, "roadbook-api")
		if err != nil {
			log.WithError(err).Fatal("kafka init")
		}
		defer producer.Close()
		publishers = append(publishers, booking.NewKafkaPublisher(producer, cfg.Kafka.Topic))
	}
	if cfg.Firebase.PushEnabled {
		msg, err := infra.NewMessaging(ctx, fbApp)
		if err != nil {
			log.WithError(err).Fatal("firebase messaging init")
		}
		publishers = append(publishers, booking.NewPushNotifier(msg))
	}

	bookingSvc := booking.NewService(booking.Deps{
		Repo:      booking.NewStore(dbPool),
		Locations: locationSvc,
		Vehicles:  fleetSvc,
		Settings:  settings,
		Overrides: pricingSvc,
		Publisher: publishers,
		Validate:  validate,
		Log:       log,
		Timezone:  tz,
	})

	orderingSvc := ordering.NewService(ordering.NewStore(dbPool), log, ordering.Options{
		BatchWindow: cfg.Ordering.BatchWindow,
		MaxRetries:  cfg.Ordering.MaxRetries,
	})

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Search:    searchSvc,
		Bookings:  bookingSvc,
		Pricing:   pricingSvc,
		Fleet:     fleetSvc,
		Ordering:  orderingSvc,
		Locations: locationSvc,
		Verifier:  verifier,
		Log:       log,
	})
	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("http shutdown")
		}
		if err := orderingSvc.Close(shutdownCtx); err != nil {
			log.WithError(err).Warn("flush pending display order")
		}
	}()

	log.WithFields(logrus.Fields{"addr": cfg.HTTP.Addr, "distance": cfg.Distance.Provider}).Info("roadbook api listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("http server")
	}
	<-drained
}
