package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"crabtrain/internal/server"
)

func main() {
	addr := flag.String("addr", ":8080", "address to listen on (e.g., 127.0.0.1:8080)")
	simConfigPath := flag.String("sim-config", "configs/sim.json", "path to simulation tuning JSON")
	logDev := flag.Bool("log-dev", false, "use human-readable development logging")
	followers := flag.Float64("followers", math.NaN(), "override initial follower count")
	interval := flag.Float64("record-interval", math.NaN(), "override seconds between trajectory records")
	gap := flag.Float64("gap", math.NaN(), "override delay between consecutive followers in seconds")
	pursuit := flag.Float64("pursuit", math.NaN(), "override follower pursuit gain")
	maxSpeed := flag.Float64("max-speed", math.NaN(), "override leader planar speed cap")
	steerRate := flag.Float64("steer-rate", math.NaN(), "override degrees of yaw per unit speed per second")
	launchMin := flag.Float64("launch-min", math.NaN(), "override minimum launch speed")
	launchMax := flag.Float64("launch-max", math.NaN(), "override maximum launch speed")
	launchScale := flag.Float64("launch-scale", math.NaN(), "override launch velocity scale")
	flag.Parse()

	cfg := server.DefaultAppConfig()
	cfg.SimConfigPath = *simConfigPath
	cfg.Dev = *logDev

	cfg.Overrides = server.TuningOverrides{
		Followers:      flagOverride(*followers),
		RecordInterval: flagOverride(*interval),
		Gap:            flagOverride(*gap),
		PursuitSpeed:   flagOverride(*pursuit),
		MaxPlanarSpeed: flagOverride(*maxSpeed),
		SteerRate:      flagOverride(*steerRate),
		LaunchMinSpeed: flagOverride(*launchMin),
		LaunchMaxSpeed: flagOverride(*launchMax),
		VelocityScale:  flagOverride(*launchScale),
	}

	if err := server.StartApp(*addr, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flagOverride maps the NaN "unset" sentinel to nil.
func flagOverride(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
