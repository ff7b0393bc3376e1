package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/extdot/expand"
)

var forceInit bool

// initCmd: extdot init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfigurationFile(cfgFile, forceInit); err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", cfgFile)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing configuration file")
}

func initConfigurationFile(configurationPath string, force bool) error {
	if configurationPath == "" {
		configurationPath = expand.DefaultConfigFile
	}

	if _, err := os.Stat(configurationPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configurationPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	d, err := expand.DefaultConfig().Marshal()
	if err != nil {
		return err
	}

	return os.WriteFile(configurationPath, d, 0o644)
}
