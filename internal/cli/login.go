package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/netcfgbu/netcfgbu-go/internal/dispatcher"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Test credential authentication against the filtered inventory without capturing config",
	RunE:  runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rc, err := loadContext(ctx, false)
	if err != nil {
		return err
	}
	defer rc.Close()

	rep, err := dispatcher.Dispatch(ctx, dispatcher.Login, rc.hosts, rc.rt)
	if err != nil {
		return err
	}

	failuresPath := historyFileName("failures.csv", rep.RunID)
	if err := rep.WriteFailuresCSV(failuresPath); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write %s: %v\n", failuresPath, err)
	}
	loginPath := historyFileName("login.csv", rep.RunID)
	if err := rep.WriteLoginCSV(loginPath); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write %s: %v\n", loginPath, err)
	}

	rc.rt.Plugins.RunReport(rep)

	fmt.Fprint(cmd.OutOrStdout(), rep.Summary(os.Stdout, rc.cfg.Report.TimestampFormat))
	return nil
}
