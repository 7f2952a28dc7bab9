package cmd

import (
	"fmt"
	runtimedebug "runtime/debug"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags, e.g.
// go build -ldflags "-X .../cmd.Version=v1.0.0"
var (
	Version = "dev"
	Commit  = ""
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build metadata",
	Args:  cobra.NoArgs,
	Run: func(*cobra.Command, []string) {
		fmt.Printf("jetson-install %s\n", resolvedVersion())
	},
}

func resolvedVersion() string {
	v := Version
	c := Commit
	if info, ok := runtimedebug.ReadBuildInfo(); ok {
		if (v == "" || v == "dev") && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
		if c == "" {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					c = s.Value
				}
			}
		}
	}
	if len(c) > 12 {
		c = c[:12]
	}
	if c != "" {
		return v + " (" + c + ")"
	}
	return v
}
