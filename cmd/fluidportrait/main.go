package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/fluidportrait/internal/app"
	"github.com/ayusman/fluidportrait/internal/config"
	"github.com/ayusman/fluidportrait/internal/render"
	"github.com/ayusman/fluidportrait/internal/server"
	"github.com/ayusman/fluidportrait/internal/tray"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	configFile string
	cameraID   int
	addr       string
	width      int
	height     int
	seed       uint64
	noWindow   bool
	noTray     bool
	noCamera   bool
	noServer   bool
	withTray   bool
)

// The OpenCV window and the tray both need the main OS thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "fluidportrait",
		Short: "particle swarm that traces your face and hands",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "start the portrait",
		RunE:  runPortrait,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&noWindow, "no-window", false, "do not open the OpenCV window")
	runCmd.Flags().BoolVar(&noTray, "no-tray", false, "do not show the tray menu")
	runCmd.Flags().BoolVar(&withTray, "tray", false, "show the tray menu")
	runCmd.Flags().BoolVar(&noServer, "no-server", false, "do not start the HTTP server")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "inspect configuration",
	}
	printCmd := &cobra.Command{
		Use:   "print",
		Short: "print the effective configuration as yaml",
		RunE:  printConfig,
	}
	addConfigFlags(printCmd)
	configCmd.AddCommand(printCmd)

	rootCmd.AddCommand(runCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().IntVar(&cameraID, "camera", 0, "camera device id")
	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "HTTP listen address")
	cmd.Flags().IntVar(&width, "width", config.DefaultWidth, "canvas width")
	cmd.Flags().IntVar(&height, "height", config.DefaultHeight, "canvas height")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().BoolVar(&noCamera, "no-camera", false, "run without a camera")
}

// loadConfig reads the config file, if any, and applies the flags the
// user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("camera") {
		cfg.Camera.Device = cameraID
	}
	if flags.Changed("addr") {
		cfg.Server.Addr = addr
	}
	if flags.Changed("width") {
		cfg.Canvas.Width = width
	}
	if flags.Changed("height") {
		cfg.Canvas.Height = height
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if noCamera {
		cfg.Camera.Enabled = false
	}
	if noWindow {
		cfg.Window.Enabled = false
	}
	if withTray {
		cfg.Tray.Enabled = true
	}
	if noTray {
		cfg.Tray.Enabled = false
	}
	if noServer {
		cfg.Server.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func printConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runPortrait(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg.AppConfig(), app.Deps{})
	defer a.Close()

	if cfg.Server.Enabled {
		srv := server.New(server.Config{StaticDir: cfg.Server.StaticDir, Portrait: a})
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
				log.Printf("Server failed: %v", err)
			}
		}()
	}

	if cfg.Tray.Enabled {
		if cfg.Window.Enabled {
			log.Println("Tray enabled, running without the OpenCV window")
		}
		return runWithTray(ctx, stop, a)
	}

	var win *render.Window
	if cfg.Window.Enabled {
		win = render.NewWindow(cfg.Window.Title, cfg.Canvas.Width, cfg.Canvas.Height)
		defer win.Close()
	}

	if err := a.Run(ctx, win); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// runWithTray keeps the tray on the main thread and the frame loop on a
// goroutine.
func runWithTray(ctx context.Context, stop context.CancelFunc, a *app.App) error {
	t := tray.New()
	t.OnAction(func(action app.Action) {
		if err := a.Do(action); err != nil {
			log.Printf("Dropped tray action %s: %v", action, err)
		}
	})
	t.OnQuit(stop)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(ctx, nil)
	}()

	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				t.Quit()
				return
			case <-ticker.C:
				t.Update(a.Snapshot())
			}
		}
	}()

	t.Run()
	stop()
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
