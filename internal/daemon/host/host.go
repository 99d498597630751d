// Package host assembles the desktop host: single-instance guard, event loop,
// windows, overlay, tray, command channel and lifecycle.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/mydecisions/deskhost/internal/config"
	"github.com/mydecisions/deskhost/internal/daemon/events"
	"github.com/mydecisions/deskhost/internal/daemon/instance"
	"github.com/mydecisions/deskhost/internal/daemon/lifecycle"
	"github.com/mydecisions/deskhost/internal/daemon/loop"
	"github.com/mydecisions/deskhost/internal/daemon/overlay"
	"github.com/mydecisions/deskhost/internal/daemon/server"
	"github.com/mydecisions/deskhost/internal/daemon/tray"
	"github.com/mydecisions/deskhost/internal/daemon/watcher"
	"github.com/mydecisions/deskhost/internal/daemon/window"
	"github.com/mydecisions/deskhost/internal/geometry"
	"github.com/mydecisions/deskhost/internal/models"
	"github.com/mydecisions/deskhost/internal/platform"
	"github.com/mydecisions/deskhost/internal/telemetry"
)

// ErrAlreadyRunning is returned by New when another host owns the session.
// That host has been asked to bring its dashboard forward.
var ErrAlreadyRunning = errors.New("host already running")

// HeadlessScreen is the work area reported by --headless runs.
var HeadlessScreen = geometry.Region{Width: 1920, Height: 1080}

const (
	loopCapacity = 64
	eventBuffer  = 16
)

// Options configures a Host.
type Options struct {
	Settings *models.Settings
	// Tray shows the system tray icon. Run then blocks the calling goroutine
	// in the tray, which must be the main goroutine.
	Tray bool
	// Headless uses the in-memory window backend.
	Headless bool
	// Backend overrides the window backend.
	Backend platform.Backend
	// Guard overrides the single-instance guard selected by settings.
	Guard instance.Guard
	// RunDir is the guard's runtime directory (default ~/.mydecisions/run).
	RunDir string
	// QuitOnAllClosed overrides the platform default.
	QuitOnAllClosed *bool
	// SettingsPath is watched while running. Changes to log.level are applied
	// to LogLevel; other settings take effect on the next start.
	SettingsPath string
	LogLevel     *slog.LevelVar
	Logger       *slog.Logger
}

// Host is one running desktop host process.
type Host struct {
	settings *models.Settings
	logger   *slog.Logger

	guard       instance.Guard
	loop        *loop.Loop
	hub         *events.Hub
	backend     platform.Backend
	windows     *window.Registry
	overlay     *overlay.Machine
	coordinator *lifecycle.Coordinator
	controller  *tray.Controller
	server      *server.Server
	telemetry   *telemetry.Client
	settingsW   *watcher.Watcher
	logLevel    *slog.LevelVar

	trayEnabled bool
	startedAt   time.Time

	mu     sync.Mutex
	runErr error

	shutdownOnce sync.Once
}

// New acquires the single-instance guard and builds the host. Nothing else is
// constructed unless this process is the primary instance.
func New(opts Options) (*Host, error) {
	settings := opts.Settings
	if settings == nil {
		settings = models.NewSettings()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	guard := opts.Guard
	if guard == nil {
		dir := opts.RunDir
		if dir == "" {
			var err error
			if dir, err = config.EnsureGlobalRunDir(); err != nil {
				return nil, fmt.Errorf("failed to create run directory: %w", err)
			}
		}
		var err error
		guard, err = instance.New(settings.Instance.Backend, dir, logger.With("component", "instance"))
		if err != nil {
			return nil, err
		}
	}

	primary, err := guard.Acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire instance lock: %w", err)
	}
	if !primary {
		return nil, ErrAlreadyRunning
	}

	h := &Host{
		settings:    settings,
		logger:      logger,
		guard:       guard,
		logLevel:    opts.LogLevel,
		trayEnabled: opts.Tray,
	}
	if err := h.build(opts); err != nil {
		h.abort()
		return nil, err
	}
	return h, nil
}

// abort undoes a partial build.
func (h *Host) abort() {
	if h.settingsW != nil {
		h.settingsW.Stop()
	}
	if h.server != nil {
		h.server.Stop()
	}
	if h.backend != nil {
		_ = h.backend.Close()
	}
	h.release()
}

func (h *Host) build(opts Options) error {
	s := h.settings
	h.loop = loop.New(loopCapacity, h.logger.With("component", "loop"))
	h.hub = events.NewHub(eventBuffer, h.logger.With("component", "events"))

	h.backend = opts.Backend
	if h.backend == nil {
		backend, err := h.newBackend(opts.Headless)
		if err != nil {
			return err
		}
		h.backend = backend
	}

	srv, err := server.New(h, h.hub, server.Options{
		Host:           s.Server.Host,
		Port:           s.Server.Port,
		AllowedOrigins: s.Server.AllowedOrigins,
		Logger:         h.logger.With("component", "server"),
	})
	if err != nil {
		return err
	}
	h.server = srv

	urls, err := window.ContentSource{
		Dev:          s.DevMode,
		DevOverlay:   s.Renderer.DevOverlayURL,
		DevDashboard: s.Renderer.DevDashboardURL,
		ResourcesDir: resourcesDir(s.Renderer.ResourcesDir),
		Bridge:       srv.Addr(),
	}.Resolve()
	if err != nil {
		return err
	}

	h.windows = window.New(window.Options{
		Backend:  h.backend,
		URLs:     urls,
		Backdrop: s.Overlay.Backdrop,
		Logger:   h.logger.With("component", "windows"),
	})
	h.overlay = overlay.New(h.windows, h.hub, h.logger.With("component", "overlay"))
	h.coordinator = lifecycle.New(lifecycle.Options{
		Windows:         h.windows,
		ShowDashboard:   s.Dashboard.ShowOnStartup,
		QuitOnAllClosed: opts.QuitOnAllClosed,
		Logger:          h.logger.With("component", "lifecycle"),
	})
	h.controller = tray.NewController(h.windows, h.trackedOverlay("tray"), h.hub,
		h.coordinator.RequestQuit, h.logger.With("component", "tray"))

	h.telemetry = h.newTelemetry()

	if opts.SettingsPath != "" && opts.LogLevel != nil {
		w, err := watcher.New(filepath.Dir(opts.SettingsPath), []string{filepath.Base(opts.SettingsPath)},
			h.logger.With("component", "watcher"))
		if err != nil {
			h.logger.Warn("settings will not be reloaded", "error", err)
		} else {
			h.settingsW = w
		}
	}

	h.guard.OnSecondInstance(func() {
		h.logger.Info("second instance launched")
		h.loop.Post(h.coordinator.SecondInstance)
	})
	h.coordinator.OnTerminate(h.terminated)
	return nil
}

// resourcesDir defaults packaged content to resources/ next to the executable.
func resourcesDir(configured string) string {
	if configured != "" {
		return configured
	}
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(exe), "resources")
}

func (h *Host) newBackend(headless bool) (platform.Backend, error) {
	if headless {
		return platform.NewHeadless(HeadlessScreen, h.logger.With("component", "headless")), nil
	}
	command := h.settings.Renderer.Command
	if len(command) == 0 {
		command = platform.DefaultRendererCommand
	}
	x, err := platform.NewX11(platform.X11Options{
		Dispatch: func(fn func()) { h.loop.Post(fn) },
		Renderer: &platform.Renderer{Command: command, Logger: h.logger.With("component", "renderer")},
		Logger:   h.logger.With("component", "x11"),
	})
	if err != nil {
		return nil, err
	}
	return x, nil
}

func (h *Host) newTelemetry() *telemetry.Client {
	cfg := h.settings.Telemetry
	if !cfg.Enabled {
		return nil
	}
	state, err := config.LoadOrCreateTelemetryState()
	if err != nil {
		h.logger.Warn("telemetry disabled", "error", err)
		return nil
	}
	client, err := telemetry.New(cfg, state.InstallID, h.logger.With("component", "telemetry"))
	if err != nil {
		h.logger.Warn("telemetry disabled", "error", err)
		return nil
	}
	return client
}

// Addr returns the command channel address.
func (h *Host) Addr() string {
	return h.server.Addr()
}

// State returns the lifecycle state.
func (h *Host) State() lifecycle.State {
	return h.coordinator.State()
}

// Run starts the host and blocks until it has terminated. Cancelling ctx, a
// SIGINT/SIGTERM, the tray Quit entry or the last window closing all go
// through the coordinated quit.
func (h *Host) Run(ctx context.Context) error {
	go h.loop.Run(context.Background())
	if el, ok := h.backend.(interface{ EventLoop() }); ok {
		go el.EventLoop()
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- h.server.Serve() }()

	if err := h.loop.Do(ctx, h.coordinator.Start); err != nil {
		h.loop.Stop()
		h.shutdown()
		return fmt.Errorf("failed to start host: %w", err)
	}
	h.startedAt = time.Now()
	h.watchSettings()
	h.publish()
	h.telemetry.Capture(telemetry.EventHostStarted, map[string]any{
		"dev_mode": h.settings.DevMode,
		"tray":     h.trayEnabled,
	})

	go h.watch(ctx, serveErr)

	if h.trayEnabled {
		h.runTray()
		// The tray can also go away on its own.
		h.quit()
	}

	<-h.loop.Done()
	h.shutdown()

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runErr
}

// publish writes instance.yaml so clients can find the command channel.
func (h *Host) publish() {
	host, portStr, err := net.SplitHostPort(h.server.Addr())
	if err != nil {
		h.logger.Warn("failed to parse listen address", "addr", h.server.Addr(), "error", err)
		return
	}
	port, _ := strconv.Atoi(portStr)
	info := models.NewInstanceInfo(host, port, os.Getpid(), uuid.NewString())
	info.DevMode = h.settings.DevMode
	if err := config.SaveInstanceInfo(info); err != nil {
		h.logger.Warn("failed to write instance info", "error", err)
		return
	}
	h.logger.Info("host started", "addr", h.server.Addr(), "pid", info.PID)
}

func (h *Host) runTray() {
	icon, err := tray.LoadIcon(h.settings.Tray.IconPath)
	if err != nil && h.settings.Tray.IconPath != "" {
		h.logger.Warn("using placeholder tray icon", "error", err)
	}
	tray.Run(h.trayOptions(icon))
}

// trayOptions binds the icon's left click to the same toggle as the
// "Toggle Overlay" entry.
func (h *Host) trayOptions(icon []byte) tray.Options {
	return tray.Options{
		Icon:     icon,
		Tooltip:  h.settings.Tray.Tooltip,
		Items:    h.controller.Items(),
		OnClick:  h.controller.Click,
		Dispatch: func(fn func()) { h.loop.Post(fn) },
		OnReady:  func() { h.logger.Debug("tray ready") },
	}
}

func (h *Host) watch(ctx context.Context, serveErr <-chan error) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		h.logger.Info("received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
	case err := <-serveErr:
		if err == nil {
			return
		}
		h.logger.Error("command channel failed", "error", err)
		h.mu.Lock()
		h.runErr = err
		h.mu.Unlock()
	case <-h.loop.Done():
		return
	}
	h.quit()
}

func (h *Host) watchSettings() {
	if h.settingsW == nil {
		return
	}
	if err := h.settingsW.Start(); err != nil {
		h.logger.Warn("settings will not be reloaded", "error", err)
		return
	}
	go func() {
		for ev := range h.settingsW.Events() {
			h.reloadSettings(ev.Path)
		}
	}()
}

// reloadSettings applies the live part of a changed settings file.
func (h *Host) reloadSettings(path string) {
	s, err := config.LoadSettingsFrom(path)
	if err != nil {
		h.logger.Warn("ignoring settings change", "error", err)
		return
	}
	lvl, err := config.ParseLogLevel(s.Log.Level)
	if err != nil {
		return
	}
	if h.logLevel.Level() != lvl {
		h.logLevel.Set(lvl)
		h.logger.Info("log level changed", "level", lvl.String())
	}
}

// quit starts the coordinated shutdown.
func (h *Host) quit() {
	h.loop.Post(h.coordinator.RequestQuit)
}

// terminated runs on the loop once every window is closed.
func (h *Host) terminated() {
	h.loop.Stop()
	if h.trayEnabled {
		tray.Quit()
	}
}

// shutdown releases everything the host holds. It runs off the loop.
func (h *Host) shutdown() {
	h.shutdownOnce.Do(func() {
		if h.settingsW != nil {
			h.settingsW.Stop()
		}
		h.server.Stop()
		h.hub.Close()
		if err := h.backend.Close(); err != nil {
			h.logger.Warn("failed to close window backend", "error", err)
		}
		if err := config.RemoveInstanceInfo(os.Getpid()); err != nil {
			h.logger.Warn("failed to remove instance info", "error", err)
		}
		h.release()

		props := map[string]any{}
		if !h.startedAt.IsZero() {
			props["uptime_seconds"] = int(time.Since(h.startedAt).Seconds())
		}
		h.telemetry.Capture(telemetry.EventHostStopped, props)
		if err := h.telemetry.Close(); err != nil {
			h.logger.Warn("failed to flush telemetry", "error", err)
		}
		h.logger.Info("host stopped")
	})
}

func (h *Host) release() {
	if err := h.guard.Release(); err != nil {
		h.logger.Warn("failed to release instance lock", "error", err)
	}
}
