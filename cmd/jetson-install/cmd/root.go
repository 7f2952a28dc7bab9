// Package cmd implements the jetson-install command line interface.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	jetson "github.com/jetsonhacks/install-deep-stream"
	"github.com/jetsonhacks/install-deep-stream/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:           "jetson-install",
	Short:         "DeepStream and Ultralytics installer for NVIDIA Jetson",
	Long:          "jetson-install sets up NVIDIA DeepStream and Ultralytics YOLO on Jetson devices,\nsurviving the reboots the installations require.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// Execute runs the CLI. It exits non-zero on any failure.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, markFailure()+" "+err.Error())
		os.Exit(1)
	}
}

func loadConfig() (*jetson.Config, error) {
	if configPath != "" {
		return jetson.LoadConfig(configPath)
	}
	return jetson.DefaultConfig()
}

// buildHost assembles a host with logging to both the console and the
// persistent log file. The returned closer flushes the file log.
func buildHost(c *cobra.Command) (*jetson.Host, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	closer := func() {}
	var fileWriter io.Writer
	if filelog, err := log.OpenFileLog(cfg.LogPath); err == nil {
		fileWriter = filelog.Writer()
		closer = func() { _ = filelog.Close() }
	} else {
		fmt.Fprintln(c.ErrOrStderr(), markWarning()+" "+err.Error())
	}
	logger := log.NewTeeLogger(c.ErrOrStderr(), fileWriter, level)

	host, err := jetson.NewHost(cfg, jetson.WithLogger(logger))
	if err != nil {
		closer()
		return nil, nil, err
	}
	return host, closer, nil
}
