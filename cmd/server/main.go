package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/library-seat-reservation/internal/appeal"
	"github.com/iliyamo/library-seat-reservation/internal/audit"
	"github.com/iliyamo/library-seat-reservation/internal/config"
	"github.com/iliyamo/library-seat-reservation/internal/database"
	"github.com/iliyamo/library-seat-reservation/internal/event"
	"github.com/iliyamo/library-seat-reservation/internal/handler"
	"github.com/iliyamo/library-seat-reservation/internal/middleware"
	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/monitor"
	"github.com/iliyamo/library-seat-reservation/internal/router"
	"github.com/iliyamo/library-seat-reservation/internal/store"
	"github.com/iliyamo/library-seat-reservation/internal/utils"
)

// monitorInterval is the occupancy evaluation cadence.  One minute
// matches the granularity of the away-minute counters.
const monitorInterval = time.Minute

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	settings := config.LoadSettings()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis backs the distributed seat lock and the rate limiter; nil
	// disables both.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; seat lock and rate limiting disabled")
	}

	// MySQL backs the audit log only; the logger degrades to stdout
	// without it.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Printf("audit database unavailable: %v; logging to stdout", err)
		db = nil
	}

	// Event pipeline: store -> audit -> relay -> broadcaster.  The relay
	// mirrors everything onto the seat.lifecycle broker queue; the
	// broadcaster fans out to websocket subscribers.
	broadcaster := event.NewBroadcaster()
	if !settings.MessageSquareEnabled {
		broadcaster.DisableTopic(event.TopicMessages)
		broadcaster.DisableTopic(event.TopicOnlineStatus)
	}
	relay := event.NewRelay(ctx, broadcaster)
	sink := audit.NewLogger(ctx, db, relay)

	go func() {
		if err := event.StartLifecycleConsumer(); err != nil {
			log.Printf("lifecycle consumer stopped: %v", err)
		}
	}()

	credit := store.NewMemoryLedger()
	st := store.New(settings, credit, sink,
		store.WithSeatLocker(store.NewSeatLocker(rdb)),
		store.WithQRVerifier(func(token string, seatID uint64) error {
			return utils.VerifySeatToken(cfg.JWTSecret, token, seatID)
		}))
	seedSeats(st)

	mon := monitor.New(st, settings, sink, monitorInterval)
	go mon.Run(ctx)

	wf := appeal.NewWorkflow(st, credit, sink)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.Register(e, router.Handlers{
		Reservation: handler.NewReservationHandler(st),
		Seat:        handler.NewSeatHandler(st, cfg.JWTSecret),
		Admin:       handler.NewAdminHandler(st, mon),
		Appeal:      handler.NewAppealHandler(wf),
		WS:          handler.NewWSHandler(broadcaster, cfg.JWTSecret),
	}, cfg.JWTSecret, rateLimit)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Println(err)
	}
}

// seedSeats loads the seat layout from SEAT_LAYOUT_FILE (a JSON array
// of seats) or falls back to a small default grid so development
// machines work without provisioning.
func seedSeats(st *store.Store) {
	if path := os.Getenv("SEAT_LAYOUT_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("read seat layout: %v", err)
		}
		var seats []model.Seat
		if err := json.Unmarshal(data, &seats); err != nil {
			log.Fatalf("parse seat layout: %v", err)
		}
		for _, seat := range seats {
			st.AddSeat(seat)
		}
		log.Printf("loaded %d seats from %s", len(seats), path)
		return
	}

	id := uint64(1)
	for _, area := range []string{"A", "B"} {
		for n := 1; n <= 20; n++ {
			st.AddSeat(model.Seat{
				ID:     id,
				SeatNo: fmt.Sprintf("%s-%02d", area, n),
				Area:   area,
				X:      n % 5,
				Y:      n / 5,
			})
			id++
		}
	}
	log.Println("seeded default 40-seat layout")
}
