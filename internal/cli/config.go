package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgpai22/captionchat/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a sample configuration file",
	Long: `Write a commented sample configuration file. Without a path the file goes
to ~/.config/captionchat/config.toml. An existing file is left alone unless
--force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}

	if err := config.CreateSample(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample config: %s\n", path)
	return nil
}
