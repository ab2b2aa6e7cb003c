package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/verdant-games/gecko/internal/core/assets"
	"github.com/verdant-games/gecko/internal/core/config"
	"github.com/verdant-games/gecko/internal/core/events"
	"github.com/verdant-games/gecko/internal/core/events/bus"
	"github.com/verdant-games/gecko/internal/core/game"
	"github.com/verdant-games/gecko/internal/core/observability/log"
)

func main() {
	configPath := flag.String("config", "", "path to a yaml session config")
	manifestPath := flag.String("manifest", "", "path to a yaml asset manifest overriding the config visuals")
	flag.Parse()

	lg := log.New(log.LevelInfo)

	cfg := config.Default()
	if *configPath != "" {
		f, err := os.Open(*configPath)
		if err != nil {
			fmt.Println("Error opening config:", err)
			os.Exit(1)
		}
		cfg, err = config.LoadYAML(f)
		_ = f.Close()
		if err != nil {
			fmt.Println("Error loading config:", err)
			os.Exit(1)
		}
	}

	if *manifestPath != "" {
		f, err := os.Open(*manifestPath)
		if err != nil {
			fmt.Println("Error opening manifest:", err)
			os.Exit(1)
		}
		m, err := assets.LoadManifest(f)
		_ = f.Close()
		if err != nil {
			fmt.Println("Error loading manifest:", err)
			os.Exit(1)
		}
		if p, ok := m.Visuals["avatar"]; ok {
			cfg.Assets.Avatar = p
		}
		if p, ok := m.Visuals["ground"]; ok {
			cfg.Assets.Ground = p
		}
		if p, ok := m.Visuals["marker"]; ok {
			cfg.Assets.Marker = p
		}
	}

	session := game.NewSession(cfg, game.WithLogger(lg))

	// headless host glue: start play as soon as the session is ready and
	// report the game flow on the console
	bus.On(session.Bus(), events.ModeUpdated, func(t events.ModeTransition) {
		if t.Curr == events.ModeWaiting {
			bus.Emit(session.Bus(), events.CmdStartGame, struct{}{})
		}
	})
	bus.On(session.Bus(), events.TargetRelocated, func(r events.Relocation) {
		lg.Info("objective advanced", log.Int("index", r.Index))
	})
	bus.Once(session.Bus(), events.GameWon, func(w events.WinEvent) {
		lg.Info("session won", log.Int("scans", w.Scans))
	})

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	<-stopCh
	session.Dispose()
}
