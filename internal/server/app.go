package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	. "crabtrain/internal/game"

	"go.uber.org/zap"
)

type AppConfig struct {
	SimConfigPath string
	Overrides     TuningOverrides
	Dev           bool
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		SimConfigPath: "configs/sim.json",
	}
}

func NewLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func resolveTuning(cfg AppConfig, log *zap.Logger) Tuning {
	tuning := DefaultTuning()
	loaded, err := loadTuningFromFile(cfg.SimConfigPath, tuning)
	if err != nil {
		log.Warn("sim config unusable, using defaults", zap.String("path", cfg.SimConfigPath), zap.Error(err))
	} else {
		tuning = loaded
	}
	return cfg.Overrides.apply(tuning)
}

// runSim ticks every room at SimHz until ctx is cancelled.
func runSim(ctx context.Context, hub *Hub) {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / SimHz))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tickRooms(hub)
		}
	}
}

func tickRooms(hub *Hub) {
	rooms := hub.RoomList()
	roomsGauge.Set(float64(len(rooms)))
	for _, r := range rooms {
		start := time.Now()
		report := r.Tick()
		observeTick(r.ID, report, time.Since(start))
	}
}

// runCleanup drops idle rooms once a minute.
func runCleanup(ctx context.Context, hub *Hub) {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range hub.CleanupIdleRooms() {
				forgetRoom(id)
			}
		}
	}
}

func StartApp(addr string, cfg AppConfig) error {
	log, err := NewLogger(cfg.Dev)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	tuning := resolveTuning(cfg, log)
	hub := NewHub(tuning, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go runSim(ctx, hub)
	go runCleanup(ctx, hub)

	srv := &http.Server{Addr: addr, Handler: newMux(hub, log)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("starting web server",
		zap.String("addr", addr),
		zap.Int("followers", tuning.Followers),
		zap.Float64("gap", tuning.Chain.Gap),
		zap.Float64("record_interval", tuning.RecordInterval),
		zap.Int("history_capacity", tuning.HistoryCapacity()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("server stopped")
	return nil
}
