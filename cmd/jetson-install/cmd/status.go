package cmd

import (
	"errors"
	"fmt"

	jetson "github.com/jetsonhacks/install-deep-stream"
	"github.com/jetsonhacks/install-deep-stream/initsystem"
	"github.com/jetsonhacks/install-deep-stream/state"
	"github.com/jetsonhacks/install-deep-stream/trigger"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pending run state and resume trigger presence",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		printHeader("Installer status")

		store, err := state.NewFileStore(cfg.StatePath)
		if err != nil {
			return err
		}
		rs, err := store.Load()
		switch {
		case errors.Is(err, state.ErrNoState):
			printStatus(markInfo(), "run state", "none, no installation in progress")
		case err != nil:
			printStatus(markFailure(), "run state", err.Error())
		default:
			printStatus(markWarning(), "run state",
				fmt.Sprintf("plan %s waiting to resume at step %s (since %s)", rs.Plan, rs.NextStepID, rs.CreatedAt.Format("2006-01-02 15:04:05")))
		}

		// the unit file check needs no privileges
		host, err := jetson.NewHost(cfg)
		if err != nil {
			return err
		}
		if (initsystem.Systemd{}).UnitExists(c.Context(), host.Runner(), trigger.UnitName) {
			printStatus(markWarning(), "resume trigger", "installed ("+trigger.UnitName+".service)")
		} else {
			printStatus(markInfo(), "resume trigger", "not installed")
		}
		return nil
	},
}
