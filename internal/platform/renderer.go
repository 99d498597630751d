package platform

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultRendererCommand embeds the page into the host-created window via XEmbed.
var DefaultRendererCommand = []string{"surf", "-e", "{xid}", "{url}"}

// Renderer launches the out-of-process web renderer that paints a window's
// content. Command arguments may use the placeholders {url}, {xid} and {title}.
type Renderer struct {
	Command []string
	Logger  *slog.Logger
}

// Args expands the placeholders of the command template.
func (r *Renderer) Args(url string, xid uint32, title string) []string {
	repl := strings.NewReplacer(
		"{url}", url,
		"{xid}", strconv.FormatUint(uint64(xid), 10),
		"{title}", title,
	)
	args := make([]string, len(r.Command))
	for i, a := range r.Command {
		args[i] = repl.Replace(a)
	}
	return args
}

// Start launches the renderer for a window. The returned process is killed
// when the window closes. A nil Renderer or empty command starts nothing.
func (r *Renderer) Start(url string, xid uint32, title string) (*os.Process, error) {
	if r == nil || len(r.Command) == 0 || url == "" {
		return nil, nil
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	args := r.Args(url, xid, title)
	path, err := exec.LookPath(args[0])
	if err != nil {
		return nil, fmt.Errorf("renderer %q not found: %w", args[0], err)
	}

	cmd := exec.Command(path, args[1:]...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start renderer: %w", err)
	}
	logger.Info("renderer started", "pid", cmd.Process.Pid, "xid", xid, "url", url)

	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Debug("renderer exited", "pid", cmd.Process.Pid, "error", err)
		}
	}()
	return cmd.Process, nil
}
