package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jetsonhacks/install-deep-stream/initsystem"
	"github.com/jetsonhacks/install-deep-stream/packagemanager"
	"github.com/spf13/cobra"
)

const connectivityProbeURL = "https://pypi.org"

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Pre-flight check (platform, privileges, package manager, network)",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		host, closeLog, err := buildHost(c)
		if err != nil {
			return err
		}
		defer closeLog()
		ctx := c.Context()

		printHeader("Pre-flight checks")
		var passed, failed int
		check := func(name string, detail string, err error) {
			switch {
			case err != nil:
				failed++
				printStatus(markFailure(), name, err.Error())
			case detail == "":
				passed++
				printStatus(markSuccess(), name, "ok")
			default:
				passed++
				printStatus(markSuccess(), name, detail)
			}
		}

		osr, err := host.OSRelease(ctx)
		if err != nil {
			check("operating system", "", err)
		} else if !osr.IsLike("debian") {
			check("operating system", "", fmt.Errorf("%s is not debian-like", osr))
		} else {
			check("operating system", osr.String(), nil)
		}

		j, err := host.Jetson(ctx)
		if err != nil {
			check("jetson platform", "", err)
		} else {
			check("jetson platform", j.String(), nil)
		}

		if err := host.Connect(ctx); err != nil {
			check("privileges", "", err)
			check("init system", "", fmt.Errorf("skipped, no privileges"))
			check("package manager", "", fmt.Errorf("skipped, no privileges"))
		} else {
			check("privileges", "privileged commands available", nil)
			check("init system", "systemd", nil)
			if pm, err := packagemanager.DefaultProvider().Get(host.Sudo()); err != nil {
				check("package manager", "", err)
			} else {
				check("package manager", fmt.Sprintf("%T", pm), nil)
			}
			if (initsystem.Systemd{}).ServiceIsEnabled(ctx, host.Runner(), "nvargus-daemon") {
				// purely informational, the daemon is present on stock L4T
				printStatus(markInfo(), "nvargus-daemon", "enabled")
			}
		}

		client := &http.Client{Timeout: 5 * time.Second}
		req, _ := http.NewRequestWithContext(ctx, http.MethodHead, connectivityProbeURL, nil)
		if resp, err := client.Do(req); err != nil {
			failed++
			printStatus(markFailure(), "network", err.Error())
		} else {
			_ = resp.Body.Close()
			passed++
			printStatus(markSuccess(), "network", connectivityProbeURL+" reachable")
		}

		printSummary(passed, failed)
		if failed > 0 {
			return fmt.Errorf("%d pre-flight checks failed", failed)
		}
		return nil
	},
}
