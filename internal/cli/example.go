package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const exampleConfig = `# Sample netcfgbu configuration file. See spec.md for the full field
# reference; every value here is a starting point, not a default.

defaults:
  inventory: inventory.csv
  configs_dir: ./configs
  credentials:
    username: ${NETCFGBU_DEFAULT_USERNAME}
    password: ${NETCFGBU_DEFAULT_PASSWORD}

os_name:
  eos:
    pre_get_config:
      - terminal length 0
    get_config: show running-config
    timeout: 60

linters:
  eos:
    config_starts_after: "! boot system"
    config_ends_at: "! end-of-config"
`

var flagExampleOut string

var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Write a sample configuration file to get started",
	RunE:  runExample,
}

func init() {
	exampleCmd.Flags().StringVar(&flagExampleOut, "output", "netcfgbu.yaml", "path to write the sample config")
}

func runExample(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(flagExampleOut); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", flagExampleOut)
	}
	if err := os.WriteFile(flagExampleOut, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", flagExampleOut, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote sample config to %s\n", flagExampleOut)
	return nil
}
