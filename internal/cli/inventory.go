package cli

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Inspect or assemble the device inventory CSV",
}

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the hosts the current --limit/--exclude filters select",
	RunE:  runInventoryList,
}

var (
	flagBuildHostsFile string
	flagBuildOSName    string
	flagBuildOut       string
)

var inventoryBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Assemble an inventory CSV from a plain host list",
	Long: `build is a thin helper, not part of the core (spec.md §1 places
inventory-building helper scripts out of scope): it reads one hostname per
line from --hosts-file and writes an inventory CSV with host/os_name
columns. Richer inventory sources (device discovery, CMDB import) are the
caller's responsibility.`,
	RunE: runInventoryBuild,
}

func init() {
	inventoryCmd.AddCommand(inventoryListCmd, inventoryBuildCmd)

	inventoryBuildCmd.Flags().StringVar(&flagBuildHostsFile, "hosts-file", "", "plain-text file, one hostname per line (required)")
	inventoryBuildCmd.Flags().StringVar(&flagBuildOSName, "os-name", "", "os_name value to stamp on every row")
	inventoryBuildCmd.Flags().StringVar(&flagBuildOut, "output", "inventory.csv", "output CSV path")
}

func runInventoryList(cmd *cobra.Command, args []string) error {
	rc, err := loadContext(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer rc.Close()

	w := csv.NewWriter(cmd.OutOrStdout())
	defer w.Flush()

	if err := w.Write([]string{"host", "ipaddr", "os_name"}); err != nil {
		return err
	}
	for _, h := range rc.hosts {
		if err := w.Write([]string{h["host"], h["ipaddr"], h["os_name"]}); err != nil {
			return err
		}
	}
	return nil
}

func runInventoryBuild(cmd *cobra.Command, args []string) error {
	if flagBuildHostsFile == "" {
		return fmt.Errorf("--hosts-file is required")
	}

	in, err := os.Open(flagBuildHostsFile)
	if err != nil {
		return fmt.Errorf("open hosts file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(flagBuildOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", flagBuildOut, err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write([]string{"host", "os_name"}); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	count := 0
	for scanner.Scan() {
		host := strings.TrimSpace(scanner.Text())
		if host == "" || strings.HasPrefix(host, "#") {
			continue
		}
		if err := w.Write([]string{host, flagBuildOSName}); err != nil {
			return err
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read hosts file: %w", err)
	}
	w.Flush()

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d hosts to %s\n", count, flagBuildOut)
	return nil
}
