package cmd

import (
	"fmt"

	"github.com/jetsonhacks/install-deep-stream/plan"
	"github.com/jetsonhacks/install-deep-stream/sequence"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(deepstreamCmd, ultralyticsCmd, runCmd)
}

var deepstreamCmd = &cobra.Command{
	Use:   "deepstream",
	Short: "Install NVIDIA DeepStream SDK",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return executePlan(c, "deepstream")
	},
}

var ultralyticsCmd = &cobra.Command{
	Use:   "ultralytics",
	Short: "Install Ultralytics YOLO with CUDA-enabled PyTorch",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return executePlan(c, "ultralytics")
	},
}

var runCmd = &cobra.Command{
	Use:   "run <plan.yaml>",
	Short: "Run a custom installation plan from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return executePlan(c, args[0])
	},
}

func executePlan(c *cobra.Command, name string) error {
	p, err := plan.Resolve(name)
	if err != nil {
		return err
	}

	host, closeLog, err := buildHost(c)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := c.Context()
	if err := host.Connect(ctx); err != nil {
		return err
	}

	seq, err := p.Sequencer(host)
	if err != nil {
		return err
	}

	printHeader("Installing " + p.Name)
	if err := seq.Run(ctx); err != nil {
		return fmt.Errorf("plan %s: %w", p.Name, err)
	}

	switch seq.Status() {
	case sequence.StatusAwaitingReboot:
		// normally unreachable, the reboot ends the process
		printStatus(markInfo(), p.Name, "continues after reboot")
	default:
		printStatus(markSuccess(), p.Name, "completed")
	}
	return nil
}
