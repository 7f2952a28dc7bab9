package cmd

import (
	"github.com/spf13/cobra"
)

var resumePlan string

func init() {
	resumeCmd.Flags().StringVar(&resumePlan, "plan", "", "plan to resume")
	_ = resumeCmd.MarkFlagRequired("plan")
	rootCmd.AddCommand(resumeCmd)
}

// resumeCmd is invoked by the resume trigger unit after a reboot. Hidden
// because operators normally never run it by hand; doing so anyway is safe,
// without a run state record the plan simply starts from the beginning.
var resumeCmd = &cobra.Command{
	Use:    "resume",
	Short:  "Resume an installation interrupted by a reboot",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return executePlan(c, resumePlan)
	},
}
