package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mydecisions/deskhost/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		WriteVersion(cmd.OutOrStdout(), "mydecisions")
	},
}

// WriteVersion prints the build information of the named binary in the CLI
// palette. The host binary uses it too.
func WriteVersion(w io.Writer, binary string) {
	fmt.Fprintf(w, "  %s %s\n", styleBrand.Render(binary), styleVersion.Render(buildinfo.Short()))
	fmt.Fprintf(w, "    %s   %s\n", styleLabel.Render("Built"), styleValue.Render(buildinfo.BuildDate))
	fmt.Fprintf(w, "    %s %s\n", styleLabel.Render("OS/Arch"), styleValue.Render(runtime.GOOS+"/"+runtime.GOARCH))
	fmt.Fprintf(w, "    %s      %s\n", styleLabel.Render("Go"), styleValue.Render(runtime.Version()))
}
