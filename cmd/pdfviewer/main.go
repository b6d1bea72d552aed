// PDF Viewer - renders base64 pdf payloads bound by a report host.
//
// The viewer validates each host update, loads the document through a PDF
// engine and renders the current page onto a surface. It runs as an
// interactive shell, as an HTTP/WebSocket service for a host, or both.
//
// Components:
//   - pipeline: update cycle, page navigation and zoom
//   - license: service plan lookup and feature gating
//   - engine: pdfium (WebAssembly) and preview renderers
//   - api: host-facing HTTP and WebSocket endpoints
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/DanielSallander/Pdf-Viewer/pkg/api"
	"github.com/DanielSallander/Pdf-Viewer/pkg/config"
	"github.com/DanielSallander/Pdf-Viewer/pkg/engine"
	"github.com/DanielSallander/Pdf-Viewer/pkg/engine/pdfium"
	"github.com/DanielSallander/Pdf-Viewer/pkg/engine/preview"
	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
	"github.com/DanielSallander/Pdf-Viewer/pkg/export"
	"github.com/DanielSallander/Pdf-Viewer/pkg/format"
	"github.com/DanielSallander/Pdf-Viewer/pkg/layout"
	"github.com/DanielSallander/Pdf-Viewer/pkg/license"
	"github.com/DanielSallander/Pdf-Viewer/pkg/pipeline"
	"github.com/DanielSallander/Pdf-Viewer/pkg/shell"
	"github.com/DanielSallander/Pdf-Viewer/pkg/surface"
	"github.com/DanielSallander/Pdf-Viewer/pkg/visual"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "Config file path (default: ./pdfviewer.yaml)")
	initConfig := flag.Bool("init", false, "Initialize default config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	serve := flag.Bool("serve", false, "Serve the host API")
	headless := flag.Bool("headless", false, "Serve without the interactive shell (implies -serve)")
	openFile := flag.String("open", "", "Open a pdf file on start")
	flag.Parse()

	if *showVersion {
		fmt.Printf("PDF Viewer %s\n", version)
		os.Exit(0)
	}
	if *headless {
		*serve = true
	}

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}

	if *initConfig {
		if err := config.InitConfig(cfgPath); err != nil {
			werrors.Display(err)
			os.Exit(1)
		}
		fmt.Printf("Config initialized at: %s\n", cfgPath)
		fmt.Println("Edit this file to choose the engine and license provider.")
		os.Exit(0)
	}

	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		werrors.Display(err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║                      PDF Viewer                           ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("Config: %s\n", cfgPath)
	} else {
		fmt.Printf("Config: (using defaults, run -init to create)\n")
	}

	eng, closeEngine, err := setupEngine(cfg.Engine)
	if err != nil {
		werrors.Display(err)
		os.Exit(1)
	}
	defer closeEngine()
	fmt.Printf("Engine: %s\n", eng.Name())

	gate := license.NewGate(cfg.License.PlanKeyword)
	provider, closeProvider, err := license.NewProvider(ctx, cfg.License)
	if err != nil {
		werrors.Display(err)
		fmt.Println("License: lookup unavailable, running unlicensed")
		<-gate.Resolve(ctx, license.StaticProvider{})
	} else {
		defer closeProvider.Close()
		resolved := gate.Resolve(ctx, provider)
		go func() {
			<-resolved
			if gate.IsLicensed() {
				fmt.Println("\nLicense: active")
			}
		}()
		fmt.Printf("License: %s provider\n", cfg.License.Provider)
	}
	fmt.Println()

	// Wire the viewer. With the API enabled, events, notifications and
	// downloads also go to connected hosts.
	var (
		hub       *api.Hub
		notifier  license.Notifier = consoleNotifier{w: os.Stderr}
		observer  pipeline.Observer
		downloads export.DownloadService = &export.FileService{Dir: cfg.Export.Dir}
	)
	if *serve {
		hub = api.NewHub()
		go hub.Run()
		defer hub.Stop()
		notifier = api.HubNotifier{Hub: hub}
		observer = api.HubObserver{Hub: hub}
		downloads = api.HubDownloads{Hub: hub, Store: downloads}
	}

	canvas := surface.New()
	p := pipeline.New(pipeline.Options{
		Engine:             eng,
		Surface:            canvas,
		Gate:               gate,
		Notifier:           notifier,
		Observer:           observer,
		OversampleScale:    cfg.Viewer.OversampleScale,
		MeasureNotifyDelay: cfg.License.MeasureNotifyDelay,
		Defaults: format.Settings{
			ShowHeader:       cfg.Viewer.ShowHeader,
			ScrollOverflow:   cfg.Viewer.ScrollOverflow,
			ShowExportButton: cfg.Viewer.ShowExportButton,
		},
	})
	defer p.Close()

	v := visual.New(visual.Options{
		Pipeline:          p,
		Notifier:          notifier,
		Downloads:         downloads,
		ExportNotifyDelay: cfg.License.ExportNotifyDelay,
	})

	if *serve {
		srv := api.NewServer(cfg.Server)
		api.NewViewerHandler(ctx, v, canvas, hub).RegisterRoutes(srv.Router())
		if err := srv.Start(); err != nil {
			fmt.Printf("Failed to start server: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("API: http://%s (WebSocket /ws)\n\n", srv.Address())
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	viewport := layout.Size{Width: cfg.Viewer.ViewportWidth, Height: cfg.Viewer.ViewportHeight}

	if *headless {
		if *openFile != "" {
			fmt.Println("Ignoring -open in headless mode; the host sends documents.")
		}
		<-ctx.Done()
		fmt.Println("Goodbye!")
		return
	}

	homeDir, _ := os.UserHomeDir()
	sh, err := shell.New(v, canvas, shell.Config{
		HistoryFile: filepath.Join(homeDir, ".pdfviewer_history"),
		Viewport:    viewport,
	})
	if err != nil {
		fmt.Printf("Failed to create shell: %v\n", err)
		os.Exit(1)
	}

	if *openFile != "" {
		if err := sh.Exec(ctx, "/open "+*openFile); err != nil {
			werrors.Display(err)
		}
	}

	if err := sh.Run(ctx); err != nil && err != context.Canceled {
		fmt.Printf("Shell error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Goodbye!")
}

// setupEngine registers the available engines and returns the configured one.
func setupEngine(cfg config.EngineConfig) (engine.Engine, func(), error) {
	registry := engine.NewRegistry()
	closers := []io.Closer{}

	if err := registry.Register(preview.New(cfg.Preview.MaxTextRuns)); err != nil {
		return nil, nil, err
	}

	if cfg.Name == pdfium.Name {
		pe, err := pdfium.New(pdfium.Config{
			MinIdle:         cfg.Pdfium.MinIdle,
			MaxIdle:         cfg.Pdfium.MaxIdle,
			MaxTotal:        cfg.Pdfium.MaxTotal,
			InstanceTimeout: cfg.Pdfium.InstanceTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, pe)
		if err := registry.Register(pe); err != nil {
			pe.Close()
			return nil, nil, err
		}
	}

	closeAll := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	eng, err := registry.Get(cfg.Name)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	return eng, closeAll, nil
}

// consoleNotifier prints license notifications when no host is connected.
type consoleNotifier struct {
	w io.Writer
}

func (n consoleNotifier) NotifyFeatureBlocked(message string) error {
	_, err := fmt.Fprintf(n.w, "\033[33m[license] %s\033[0m\n", message)
	return err
}

func (n consoleNotifier) ClearNotification() error { return nil }
