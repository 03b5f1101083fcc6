package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rgbw-ng/internal/config"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./dev.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rt, err := newLightRuntime(cfg)
	if err != nil {
		log.Fatalf("runtime init failed: %v", err)
	}
	defer rt.Close()

	log.Printf("rgbw-ng starting")
	log.Printf("animator step=%d interval=%s sat=%d val=%d edge_policy=%s",
		cfg.Animator.Step, cfg.Animator.Interval, cfg.Animator.Saturation, cfg.Animator.Value, cfg.Converter.EdgePolicy)
	log.Printf("pwm tick_hz=%d pwm_hz=%.1f publish=%s backend=%s",
		cfg.PWM.TickHz, cfg.PWMFrequencyHz(), cfg.PWM.Publish, cfg.Output.Backend)

	if err := rt.Run(ctx); err != nil {
		log.Printf("rgbw-ng stopped: %v", err)
	}
	log.Printf("rgbw-ng stopping")
}
