package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "riverfmt",
		Short:        "riverfmt",
		SilenceUsage: true,
		Long:         `riverfmt reformats SQL source into river-aligned layout across ANSI, PostgreSQL, MySQL, and T-SQL dialects.`,
	}

	configPath  string
	dialectFlag string
	verbose     bool

	logger = logrus.New()
)

// Execute executes the root command.
func Execute() error {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a riverfmt.yaml config file")
	rootCmd.PersistentFlags().StringVarP(&dialectFlag, "dialect", "d", "", "dialect name (ansi, postgres, mysql, tsql); overrides config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log recovery and passthrough events to stderr")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetLevel(logrus.InfoLevel)
		} else {
			logger.SetLevel(logrus.WarnLevel)
		}
	}
	return rootCmd.Execute()
}

func init() {
	logger.SetOutput(os.Stderr)
}
