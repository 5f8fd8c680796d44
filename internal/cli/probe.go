package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/netcfgbu/netcfgbu-go/internal/dispatcher"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "TCP-reachability check the filtered inventory on port 22",
	RunE:  runProbe,
}

func runProbe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rc, err := loadContext(ctx, false)
	if err != nil {
		return err
	}
	defer rc.Close()

	rep, err := dispatcher.Dispatch(ctx, dispatcher.Probe, rc.hosts, rc.rt)
	if err != nil {
		return err
	}

	failuresPath := historyFileName("failures.csv", rep.RunID)
	if err := rep.WriteFailuresCSV(failuresPath); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write %s: %v\n", failuresPath, err)
	}

	rc.rt.Plugins.RunReport(rep)

	fmt.Fprint(cmd.OutOrStdout(), rep.Summary(os.Stdout, rc.cfg.Report.TimestampFormat))
	return nil
}
