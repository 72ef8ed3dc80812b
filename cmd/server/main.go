package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"    // .env bootstrap for local development
	"github.com/labstack/echo/v4" // Echo web framework
	"github.com/rs/zerolog"

	"github.com/iliyamo/library-seat-reservation/internal/config"
	"github.com/iliyamo/library-seat-reservation/internal/database"
	"github.com/iliyamo/library-seat-reservation/internal/engine"
	"github.com/iliyamo/library-seat-reservation/internal/handler"
	appmw "github.com/iliyamo/library-seat-reservation/internal/middleware"
	"github.com/iliyamo/library-seat-reservation/internal/notify"
	"github.com/iliyamo/library-seat-reservation/internal/queue"
	"github.com/iliyamo/library-seat-reservation/internal/router"
	"github.com/iliyamo/library-seat-reservation/internal/store"
	"github.com/iliyamo/library-seat-reservation/internal/store/memstore"
	"github.com/iliyamo/library-seat-reservation/internal/store/mysqlstore"
)

func main() {
	_ = godotenv.Load() // missing .env is fine in deployed environments

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := openStore(ctx, cfg, log)
	eng := engine.New(st, log)

	// Process-lifetime expiry sweeps.
	reaper := engine.NewReaper(eng, cfg.SweepInterval, log)
	reaper.Start(ctx)

	// Change fan-out: broker events for every booking transition.
	notifier := notify.NewNotifier(log)
	notifier.Register(notify.NewAMQPObserver(log))
	go notifier.Run(ctx, st)

	// Event log consumer; runs its own reconnect loop forever.
	go queue.StartBookingConsumer(log)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable, rate limiting and seat cache disabled")
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Auth:      handler.NewAuthHandler(cfg, st),
		Seats:     handler.NewSeatHandler(st, rdb, cfg.SeatCacheTTL, log),
		Bookings:  handler.NewBookingHandler(eng, st),
		Admin:     handler.NewAdminHandler(eng, st),
		JWTSecret: cfg.JWTSecret,
		RateLimit: appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	})

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Str("store", cfg.StoreBackend).Msg("listening")

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	reaper.Wait()
}

// openStore selects the persistence backend.  The in-memory store exists
// for local development and tests; production runs on MySQL.
func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) store.Store {
	if cfg.StoreBackend == "memory" {
		log.Info().Msg("using in-memory store")
		return memstore.New()
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	st := mysqlstore.New(db)
	if err := st.EnsureCatalog(ctx); err != nil {
		log.Fatal().Err(err).Msg("seat catalog seeding failed")
	}
	return st
}
