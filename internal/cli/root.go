// Package cli implements the out-of-core CLI surface named in spec.md §1
// and §6: cobra subcommands that parse flags/env vars, build a validated
// *config.Config and []inventory.Host slice, and hand them to the
// internal/dispatcher core. None of this package's logic belongs to the
// core; it exists only to assemble the Runtime the core requires.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/netcfgbu/netcfgbu-go/internal/config"
	"github.com/netcfgbu/netcfgbu-go/internal/filtering"
	"github.com/netcfgbu/netcfgbu-go/internal/historysink"
	"github.com/netcfgbu/netcfgbu-go/internal/hostkeys"
	"github.com/netcfgbu/netcfgbu-go/internal/inventory"
	"github.com/netcfgbu/netcfgbu-go/internal/jumphost"
	"github.com/netcfgbu/netcfgbu-go/internal/plugins"
	"github.com/netcfgbu/netcfgbu-go/internal/runtime"
)

// Flags shared across the backup/login/probe verbs (spec.md §6).
var (
	flagConfigPath    string
	flagInventoryPath string
	flagLimits        []string
	flagExcludes      []string
	flagBatch         int
	flagTimeout       int
	flagDebugSSH      int
	flagKeepHistory   bool
)

var rootCmd = &cobra.Command{
	Use:   "netcfgbu",
	Short: "Concurrent, credential-aware SSH configuration backup for a device fleet",
	Long: `netcfgbu retrieves running configurations from a fleet of network
devices over SSH, with bounded concurrency, jump-host tunneling, and a
per-device credential fallback order, and writes the results to a
version-controlled configs directory.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", os.Getenv("NETCFGBU_CONFIG"), "configuration file path")
	rootCmd.PersistentFlags().StringVar(&flagInventoryPath, "inventory", os.Getenv("NETCFGBU_INVENTORY"), "inventory CSV file path (overrides config)")
	rootCmd.PersistentFlags().StringArrayVar(&flagLimits, "limit", nil, "include constraint (repeatable)")
	rootCmd.PersistentFlags().StringArrayVar(&flagExcludes, "exclude", nil, "exclude constraint (repeatable)")
	rootCmd.PersistentFlags().IntVar(&flagBatch, "batch", 0, "max simultaneous SSH handshakes (1..500, 0 = config default)")
	rootCmd.PersistentFlags().IntVar(&flagTimeout, "timeout", 0, "timeout in seconds (0..300); range-checked only, sessions use the OS profile timeout")
	rootCmd.PersistentFlags().IntVar(&flagDebugSSH, "debug-ssh", 0, "SSH protocol debug verbosity (1..3); range-checked only, no debug output is produced")
	rootCmd.PersistentFlags().BoolVar(&flagKeepHistory, "keep-history", false, "stamp failures.csv/login.csv filenames with the run ID instead of overwriting them")

	rootCmd.AddCommand(backupCmd, loginCmd, probeCmd, inventoryCmd, vcsCmd, exampleCmd)
}

// Execute runs the root command. Exit codes follow spec.md §6: 0 on
// success, non-zero on configuration error or empty inventory match;
// per-task failures never change the exit code.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx as every subcommand's
// cmd.Context(), so an external cancellation signal (spec.md §5) reaches
// the dispatcher's in-flight waits.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// runContext bundles everything a verb needs after flag parsing: the
// loaded config, the filtered host list, and a constructed Runtime.
type runContext struct {
	cfg   *config.Config
	hosts []inventory.Host
	rt    *runtime.Runtime
}

func (c *runContext) Close() {
	if c.rt != nil {
		c.rt.Close()
	}
}

// loadContext loads and validates the config, applies the --batch CLI
// override, range-checks --timeout and --debug-ssh (neither value is used
// beyond that check), loads and filters the inventory, and builds a Runtime.
// A history sink that fails to open is reported on stderr and left out.
// withJumphost controls whether the jump-host registry is initialized and
// connected — only the backup command needs it (spec.md §2: "For backup,
// C is initialized ... before dispatch").
func loadContext(ctx context.Context, withJumphost bool) (*runContext, error) {
	if flagConfigPath == "" {
		return nil, fmt.Errorf("--config or NETCFGBU_CONFIG required")
	}

	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return nil, err
	}

	if flagInventoryPath != "" {
		cfg.Defaults.Inventory = flagInventoryPath
	}
	if flagBatch != 0 && (flagBatch < 1 || flagBatch > 500) {
		return nil, fmt.Errorf("--batch: value %d out of range [1,500]", flagBatch)
	}
	if flagTimeout != 0 && (flagTimeout < 0 || flagTimeout > 300) {
		return nil, fmt.Errorf("--timeout: value %d out of range [0,300]", flagTimeout)
	}
	if flagDebugSSH != 0 {
		if _, err := config.ParsePositiveInt(fmt.Sprint(flagDebugSSH), 1, 3); err != nil {
			return nil, fmt.Errorf("--debug-ssh: %w", err)
		}
	}

	hosts, header, err := inventory.Load(cfg.Defaults.Inventory)
	if err != nil {
		return nil, err
	}

	fieldNames := unionFieldNames(config.InventoryFieldNames, header)

	limits := config.TrimFilterList(flagLimits)
	excludes := config.TrimFilterList(flagExcludes)

	if len(limits) > 0 {
		f, err := filtering.Build(limits, fieldNames, filtering.Include)
		if err != nil {
			return nil, err
		}
		hosts = applyFilter(hosts, f)
	}
	if len(excludes) > 0 {
		f, err := filtering.Build(excludes, fieldNames, filtering.Exclude)
		if err != nil {
			return nil, err
		}
		hosts = applyFilter(hosts, f)
	}
	if len(hosts) == 0 {
		return nil, fmt.Errorf("No inventory matching limits")
	}

	pl := plugins.NewRegistry()
	var sink *historysink.Sink
	if cfg.HistorySink.DSN != "" {
		sink, err = historysink.Open(ctx, cfg.HistorySink.DSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: history sink disabled: %v\n", err)
			sink = nil
		} else {
			sink.Register(pl)
		}
	}

	var hks *hostkeys.Store
	if cfg.Defaults.ConfigsDir != "" {
		if err := config.EnsureDir(cfg.Defaults.ConfigsDir); err != nil {
			return nil, err
		}
		hks, err = hostkeys.Open(cfg.Defaults.ConfigsDir + "/.hostkeys.db")
		if err != nil {
			return nil, err
		}
	}

	var jh *jumphost.Registry
	if withJumphost && len(cfg.Jumphost) > 0 {
		jh, err = jumphost.NewRegistry(cfg.Jumphost, hosts, fieldNames)
		if err != nil {
			return nil, err
		}
		if !jh.ConnectAll(ctx, cfg.Defaults.Credentials) {
			return nil, fmt.Errorf("one or more jump hosts failed to connect")
		}
	}

	rt := runtime.New(cfg, jh, pl, hks, flagBatch)
	if sink != nil {
		rt.HistorySink = sink
	}

	return &runContext{cfg: cfg, hosts: hosts, rt: rt}, nil
}

// historyFileName returns name as-is, or name stamped with runID
// ("failures.csv" -> "failures-<runID>.csv") when --keep-history is set
// (spec.md §6), so repeated runs don't clobber each other's CSVs.
func historyFileName(name, runID string) string {
	if !flagKeepHistory {
		return name
	}
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "-" + runID + ext
}

func applyFilter(hosts []inventory.Host, f *filtering.Filter) []inventory.Host {
	out := hosts[:0]
	for _, h := range hosts {
		if f.Match(filtering.Record(h)) {
			out = append(out, h)
		}
	}
	return out
}

func unionFieldNames(base []string, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	var out []string
	for _, f := range base {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	for _, f := range extra {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
