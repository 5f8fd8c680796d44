package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netcfgbu/netcfgbu-go/internal/config"
	"github.com/netcfgbu/netcfgbu-go/internal/plugins"
	"github.com/netcfgbu/netcfgbu-go/internal/vcs"
)

var vcsCmd = &cobra.Command{
	Use:   "vcs",
	Short: "Manage the version-controlled configs directory",
}

var flagVCSMessage string

var vcsPrepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Initialize the configs directory as a git working tree with the configured remote",
	RunE:  runVCSPrepare,
}

var vcsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Commit (and push, if a remote is configured) the current configs directory state",
	RunE:  runVCSSave,
}

var vcsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the configs directory's git status",
	RunE:  runVCSStatus,
}

func init() {
	vcsCmd.AddCommand(vcsPrepareCmd, vcsSaveCmd, vcsStatusCmd)
	vcsSaveCmd.Flags().StringVar(&flagVCSMessage, "message", "", "commit message (default: \"netcfgbu backup\")")
}

// loadVCSConfig loads just the config and resolves the git spec + configs
// directory; the vcs collaborator does not need a Runtime (no dispatch,
// no SSH), only the plugin registry for the git_report hook.
func loadVCSConfig() (*config.Config, config.GitSpec, *plugins.Registry, error) {
	if flagConfigPath == "" {
		return nil, config.GitSpec{}, nil, fmt.Errorf("--config or NETCFGBU_CONFIG required")
	}
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return nil, config.GitSpec{}, nil, err
	}
	if len(cfg.Git) == 0 {
		return nil, config.GitSpec{}, nil, fmt.Errorf("no [git] remote configured")
	}
	if cfg.Defaults.ConfigsDir == "" {
		return nil, config.GitSpec{}, nil, fmt.Errorf("defaults.configs_dir must be set to use vcs commands")
	}
	return cfg, cfg.Git[0], plugins.NewRegistry(), nil
}

func runVCSPrepare(cmd *cobra.Command, args []string) error {
	cfg, spec, _, err := loadVCSConfig()
	if err != nil {
		return err
	}
	if err := vcs.Prepare(cmd.Context(), spec, cfg.Defaults.ConfigsDir); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "prepared %s for remote %s\n", cfg.Defaults.ConfigsDir, spec.Repo)
	return nil
}

func runVCSSave(cmd *cobra.Command, args []string) error {
	cfg, spec, pl, err := loadVCSConfig()
	if err != nil {
		return err
	}

	res := vcs.Save(cmd.Context(), spec, cfg.Defaults.ConfigsDir, flagVCSMessage)
	pl.GitReport(res.Success, res.Message)

	fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	if !res.Success {
		return fmt.Errorf("vcs save failed: %s", res.Message)
	}
	return nil
}

func runVCSStatus(cmd *cobra.Command, args []string) error {
	cfg, _, _, err := loadVCSConfig()
	if err != nil {
		return err
	}
	status, err := vcs.Status(cmd.Context(), cfg.Defaults.ConfigsDir)
	if err != nil {
		return err
	}
	if status == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "clean")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), status)
	return nil
}
