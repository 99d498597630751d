package models

import (
	"fmt"
	"net"
	"strconv"
)

// ServerConfig configures the command channel listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"` // 0 = pick a free port
	// AllowedOrigins lists extra browser origins allowed to call the bridge.
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// RendererConfig configures where window content comes from.
type RendererConfig struct {
	// Command embeds a page into a native window. {xid}, {url} and {title}
	// are substituted. Empty uses the built-in default.
	Command         []string `yaml:"command,omitempty"`
	DevOverlayURL   string   `yaml:"dev_overlay_url"`
	DevDashboardURL string   `yaml:"dev_dashboard_url"`
	ResourcesDir    string   `yaml:"resources_dir"`
}

// InstanceConfig selects the single-instance mechanism.
type InstanceConfig struct {
	Backend string `yaml:"backend"` // "file" | "dbus"
}

// TrayConfig holds tray icon settings.
type TrayConfig struct {
	IconPath string `yaml:"icon_path"`
	Tooltip  string `yaml:"tooltip"`
}

// DashboardConfig holds dashboard window settings.
type DashboardConfig struct {
	ShowOnStartup bool `yaml:"show_on_startup"`
}

// OverlayConfig holds overlay window settings.
type OverlayConfig struct {
	Backdrop string `yaml:"backdrop"` // "" disables
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
	File  string `yaml:"file"`  // empty = ~/.mydecisions/logs/host.log
}

// TelemetryConfig holds opt-in analytics settings.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
}

// Settings represents global host settings.
// This corresponds to ~/.mydecisions/settings.yaml.
type Settings struct {
	Version   int             `yaml:"version"`
	DevMode   bool            `yaml:"dev_mode"`
	Server    ServerConfig    `yaml:"server"`
	Renderer  RendererConfig  `yaml:"renderer"`
	Instance  InstanceConfig  `yaml:"instance"`
	Tray      TrayConfig      `yaml:"tray"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Overlay   OverlayConfig   `yaml:"overlay"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 0,
		},
		Renderer: RendererConfig{
			DevOverlayURL:   "http://localhost:5179/#/overlay",
			DevDashboardURL: "http://localhost:5174",
		},
		Instance: InstanceConfig{
			Backend: "file",
		},
		Tray: TrayConfig{
			Tooltip: "MyDecisions - AI Decision Intelligence",
		},
		Dashboard: DashboardConfig{
			ShowOnStartup: true,
		},
		Overlay: OverlayConfig{
			Backdrop: "blur",
		},
		Log: LogConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Endpoint: "https://us.i.posthog.com",
		},
	}
}

// Validate checks settings that would otherwise fail late.
func (s *Settings) Validate() error {
	if s.Server.Port < 0 || s.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", s.Server.Port)
	}
	if ip := net.ParseIP(s.Server.Host); ip == nil || !ip.IsLoopback() {
		if s.Server.Host != "localhost" {
			return fmt.Errorf("server.host %q must be a loopback address", s.Server.Host)
		}
	}
	switch s.Instance.Backend {
	case "", "file", "dbus":
	default:
		return fmt.Errorf("instance.backend %q must be file or dbus", s.Instance.Backend)
	}
	switch s.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not a valid level", s.Log.Level)
	}
	return nil
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
