package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"terragen/internal/config"
	"terragen/internal/export"
	"terragen/internal/worldgen"
)

func main() {
	var (
		cfgPath string
		outDir  string
		seed    int64
		workers int
		noMesh  bool
	)
	flag.StringVar(&cfgPath, "config", "", "path to generation settings (JSON or YAML)")
	flag.StringVar(&outDir, "out", "out", "directory receiving the generated artifacts")
	flag.Int64Var(&seed, "seed", 0, "override the configured seed")
	flag.IntVar(&workers, "workers", 0, "override the configured worker count")
	flag.BoolVar(&noMesh, "no-mesh", false, "skip isosurface extraction")
	flag.Parse()

	if wrote, err := writeSettingsFromEnv(cfgPath); err != nil {
		log.Fatalf("sync settings: %v", err)
	} else if wrote {
		log.Printf("settings written from environment to %s", cfgPath)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load settings: %v", err)
	}
	applyOverrides(cfg, flagsSet(), seed, workers, noMesh)

	ctx, cancel := signalContext()
	defer cancel()

	world, err := worldgen.Generate(ctx, cfg)
	if err != nil {
		log.Fatalf("generate world: %v", err)
	}
	if _, err := export.WriteWorld(outDir, world); err != nil {
		log.Fatalf("write artifacts: %v", err)
	}
}

func flagsSet() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// applyOverrides copies explicitly passed flags over the loaded settings.
func applyOverrides(cfg *config.Settings, set map[string]bool, seed int64, workers int, noMesh bool) {
	if set["seed"] {
		cfg.Seed = seed
	}
	if set["workers"] {
		cfg.Workers = workers
	}
	if noMesh {
		cfg.Mesh.Enabled = false
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
			return
		}

		// A run only observes cancellation between phases.
		time.AfterFunc(10*time.Second, func() {
			log.Printf("forced shutdown after timeout")
			os.Exit(1)
		})
	}()

	return ctx, cancel
}
