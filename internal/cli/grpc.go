package cli

import (
	"fmt"

	"google.golang.org/grpc"

	"github.com/mydecisions/deskhost/internal/config"
	"github.com/mydecisions/deskhost/internal/daemon/server"
)

// connectHost establishes a command channel connection to the running host.
func connectHost() (*server.Client, *grpc.ClientConn, error) {
	running, info, err := config.IsHostRunning()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load instance info: %w", err)
	}
	if !running || info == nil {
		return nil, nil, fmt.Errorf("host not running. Start it with 'mydecisions start'")
	}
	return server.Dial(info.Addr())
}
