package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/MDidoStar/blinkwell/internal/analysis"
	"github.com/MDidoStar/blinkwell/internal/blink"
	"github.com/MDidoStar/blinkwell/internal/capture"
	"github.com/MDidoStar/blinkwell/internal/config"
	"github.com/MDidoStar/blinkwell/internal/demographics"
	"github.com/MDidoStar/blinkwell/internal/detector"
	"github.com/MDidoStar/blinkwell/internal/gemini"
	"github.com/MDidoStar/blinkwell/internal/monitor"
	"github.com/MDidoStar/blinkwell/internal/notify"
	"github.com/MDidoStar/blinkwell/internal/server"
	"github.com/MDidoStar/blinkwell/internal/store"
	"github.com/MDidoStar/blinkwell/internal/tray"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagListen != "" {
		cfg.ListenAddr = flagListen
	}
	if flagCamera >= 0 {
		cfg.CameraID = flagCamera
	}

	fmt.Println("Blinkwell - Eye Health Monitor")

	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var catalog *demographics.Catalog
	if c, err := demographics.Load(cfg.CatalogPath); err != nil {
		log.Printf("demographics catalog unavailable: %v", err)
	} else {
		catalog = c
		go func() {
			if err := catalog.Watch(ctx); err != nil {
				log.Printf("demographics watcher stopped: %v", err)
			}
		}()
	}

	notifiers := notify.NewManager(cfg.Notifiers.Dir)
	if err := notifiers.Discover(); err != nil {
		log.Printf("notifier discovery failed: %v", err)
	} else if n := len(notifiers.List()); n > 0 {
		log.Printf("discovered %d notifiers in %s", n, notifiers.Dir())
	}

	// Try the FaceMesh sidecar first, fall back to the mock detector so the
	// server still comes up on machines without the Python environment.
	var det detector.Detector
	if fm, err := detector.NewFaceMeshDetector(detector.DefaultConfig()); err == nil {
		det = fm
		log.Println("Using FaceMesh landmark detection")
	} else {
		log.Printf("FaceMesh not available (%v), using mock detector", err)
		det = detector.NewMockDetector()
	}

	appTray := tray.New()

	mon := monitor.New(monitor.Config{
		Camera:    capture.NewCamera(cfg.CameraID),
		Detector:  det,
		Notifiers: notify.NewDispatcher(notifiers, cfg.Notifiers.Timeout),
		OnMinute: func(summary blink.MinuteSummary) {
			if !flagNoTray {
				appTray.ShowMinute(summary)
			}
		},
	})
	defer mon.Stop()

	var analyzer *analysis.Analyzer
	if key := cfg.Gemini.APIKey(); key != "" {
		client, err := gemini.NewClient(ctx, key, cfg.Gemini.Model)
		if err != nil {
			return fmt.Errorf("initialize gemini client: %w", err)
		}
		analyzer = analysis.NewAnalyzer(client)
		log.Printf("analysis enabled (model %s)", client.Model())
	} else {
		log.Printf("%s is not set, analysis endpoints disabled", cfg.Gemini.APIKeyEnv)
	}

	webDir := cfg.StaticDir
	if webDir == "" {
		webDir = findWebDir()
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		Store:     st,
		Monitor:   mon,
		Catalog:   catalog,
		Analyzer:  analyzer,
		StaticDir: webDir,
	})

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.ListenAddr)
		errCh <- srv.ListenAndServe(cfg.ListenAddr)
	}()

	if flagNoTray {
		return <-errCh
	}

	appTray.OnToggle(func(monitoring bool) {
		if monitoring {
			if err := mon.Start(); err != nil {
				log.Printf("failed to start monitor: %v", err)
				appTray.SetMonitoring(false)
			}
		} else {
			mon.Stop()
		}
	})
	appTray.OnDashboard(func() {
		openBrowser("http://" + cfg.ListenAddr + "/")
	})
	appTray.OnQuit(func() {
		mon.Stop()
		cancel()
	})

	go func() {
		if err := <-errCh; err != nil {
			log.Printf("server failed: %v", err)
			appTray.Quit()
		}
	}()

	// Blocks until Quit is selected from the menu.
	appTray.Run()
	return nil
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.blinkwell/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".blinkwell", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

// openBrowser opens url with the platform's default browser.
func openBrowser(url string) {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", url)
	case "windows":
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		c = exec.Command("xdg-open", url)
	}
	if err := c.Start(); err != nil {
		log.Printf("failed to open browser: %v", err)
	}
}
