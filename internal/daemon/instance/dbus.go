package instance

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	// DefaultBusName is the well-known session bus name owned by the host.
	DefaultBusName = "io.mydecisions.Host"
	// DBusPath is the object path of the activation object.
	DBusPath = dbus.ObjectPath("/io/mydecisions/Host")
	// DBusInterface is the interface carrying the Activate method.
	DBusInterface = "io.mydecisions.Host"
)

// DBusGuard uses ownership of a session bus name as the lock. A second launch
// calls Activate on the owner and exits.
type DBusGuard struct {
	name   string
	logger *slog.Logger

	handlers handlers

	mu    sync.Mutex
	conn  *dbus.Conn
	owner bool
}

var _ Guard = (*DBusGuard)(nil)

// NewDBusGuard creates a guard for the given bus name.
func NewDBusGuard(name string, logger *slog.Logger) *DBusGuard {
	if logger == nil {
		logger = slog.Default()
	}
	if name == "" {
		name = DefaultBusName
	}
	return &DBusGuard{name: name, logger: logger}
}

// activator is the object exported on the bus.
type activator struct {
	guard *DBusGuard
}

// Activate is invoked by a second launch.
func (a *activator) Activate() *dbus.Error {
	a.guard.logger.Info("second instance launched", "bus", a.guard.name)
	go a.guard.handlers.fire()
	return nil
}

// OnSecondInstance registers fn to run when another launch calls Activate.
func (g *DBusGuard) OnSecondInstance(fn func()) {
	g.handlers.add(fn)
}

// Acquire requests the bus name. If it is taken, the owner is activated.
func (g *DBusGuard) Acquire() (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.owner {
		return true, nil
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return false, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(&activator{guard: g}, DBusPath, DBusInterface); err != nil {
		_ = conn.Close()
		return false, fmt.Errorf("failed to export activator: %w", err)
	}

	reply, err := conn.RequestName(g.name, dbus.NameFlagDoNotQueue)
	if err != nil {
		_ = conn.Close()
		return false, fmt.Errorf("failed to request bus name: %w", err)
	}

	if reply != dbus.RequestNameReplyPrimaryOwner {
		defer conn.Close()
		g.logger.Info("another instance is running, forwarding activation", "bus", g.name)
		call := conn.Object(g.name, DBusPath).Call(DBusInterface+".Activate", 0)
		if call.Err != nil {
			return false, fmt.Errorf("failed to activate running instance: %w", call.Err)
		}
		return false, nil
	}

	g.conn = conn
	g.owner = true
	g.logger.Debug("instance bus name acquired", "bus", g.name)
	return true, nil
}

// Release gives up the bus name and closes the connection.
func (g *DBusGuard) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.owner {
		return nil
	}
	g.owner = false
	if _, err := g.conn.ReleaseName(g.name); err != nil {
		g.logger.Warn("failed to release bus name", "error", err)
	}
	return g.conn.Close()
}
