package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Davincible/meshfec/pkg/config"
	"github.com/Davincible/meshfec/pkg/storage"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	cmd.AddCommand(
		newConfigShowCommand(),
		newConfigInitCommand(),
		newConfigProfilesCommand(),
	)

	return cmd
}

func configManager(cmd *cobra.Command) (*config.ConfigManager, error) {
	path, err := resolveConfigPath(cmd)
	if err != nil {
		return nil, err
	}
	return config.NewConfigManagerAt(path)
}

// resolveConfigPath returns the file named by --config or the default location,
// without reading it.
func resolveConfigPath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	return config.ResolvePath()
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after applying --profile, --n and --k, as
YAML (or JSON with --json).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), cfg)
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath(cmd)
			if err != nil {
				return err
			}

			if storage.NewFileStorage(path, 0600).Exists() && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
			}

			// Never load the existing file: a broken one must still be replaceable.
			cm := config.NewConfigManagerWith(path, config.DefaultConfig())
			if err := cm.SaveConfig(); err != nil {
				return err
			}

			status(cmd, color.FgGreen, "Wrote default configuration to %s", cm.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}

func newConfigProfilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the codec profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := configManager(cmd)
			if err != nil {
				return err
			}
			cfg := cm.GetConfig()

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), cfg.Profiles)
			}

			out := cmd.OutOrStdout()
			cyan := color.New(color.FgCyan, color.Bold)
			for _, name := range cfg.ProfileNames() {
				profile := cfg.Profiles[name]
				cyan.Fprintf(out, "%s", name)
				fmt.Fprintf(out, "  RS(%d,%d) compression=%s  %s\n",
					profile.Codec.N, profile.Codec.K, profile.Chunking.Compression, profile.Description)
			}
			return nil
		},
	}
}
