package server

import (
	"time"

	"crabtrain/internal/game"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crabtrain_ticks_total",
		Help: "Fixed simulation ticks run across all rooms.",
	})
	historyRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crabtrain_history_records_total",
		Help: "Leader positions written into trajectory history.",
	})
	detachesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crabtrain_detaches_total",
		Help: "Detach requests by result.",
	}, []string{"result"})
	explosionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crabtrain_explosions_total",
		Help: "Projectile explosions by cause.",
	}, []string{"cause"})
	followersGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crabtrain_followers",
		Help: "Followers still attached to the leader.",
	}, []string{"room"})
	projectilesGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crabtrain_projectiles",
		Help: "Detached followers in flight.",
	}, []string{"room"})
	roomsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crabtrain_rooms",
		Help: "Live rooms.",
	})
	connectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crabtrain_ws_connections",
		Help: "Open websocket connections.",
	})
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crabtrain_tick_duration_seconds",
		Help:    "Wall time spent in one room tick.",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
	})
)

func observeTick(roomID string, report game.TickReport, elapsed time.Duration) {
	ticksTotal.Inc()
	tickDuration.Observe(elapsed.Seconds())
	if report.Records > 0 {
		historyRecordsTotal.Add(float64(report.Records))
	}
	for _, ex := range report.Explosions {
		explosionsTotal.WithLabelValues(string(ex.Cause)).Inc()
	}
	followersGauge.WithLabelValues(roomID).Set(float64(report.Followers))
	projectilesGauge.WithLabelValues(roomID).Set(float64(report.Projectiles))
}

func observeDetach(ok bool) {
	if ok {
		detachesTotal.WithLabelValues("launched").Inc()
		return
	}
	detachesTotal.WithLabelValues("empty").Inc()
}

func forgetRoom(roomID string) {
	followersGauge.DeleteLabelValues(roomID)
	projectilesGauge.DeleteLabelValues(roomID)
}
