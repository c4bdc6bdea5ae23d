package main

import (
	"fmt"
	"strings"

	"github.com/containers/common/pkg/completion"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/containers/crio-df/version"
)

var (
	rootDescription = `Show CRI-O storage disk usage.

  Reports deduplicated image, layer and container disk usage for a
  containers/storage graph root, plus compressed (download) sizes from
  locally cached registry manifests.`

	rootCmd = &cobra.Command{
		Use:               "crio-df [options]",
		Short:             "Show CRI-O storage disk usage",
		Long:              rootDescription,
		Args:              cobra.NoArgs,
		RunE:              df,
		PersistentPreRunE: preRun,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Example:           `crio-df -v`,
	}

	logLevel  = "warn"
	logLevels = []string{"trace", "debug", "info", "warn", "warning", "error", "fatal", "panic"}
)

func init() {
	pFlags := rootCmd.PersistentFlags()

	rootFlagName := "root"
	pFlags.StringVar(&dfOptions.graphRoot, rootFlagName, "", "Path to the storage graph root (default from storage.conf)")
	_ = rootCmd.RegisterFlagCompletionFunc(rootFlagName, completion.AutocompleteDefault)

	driverFlagName := "storage-driver"
	pFlags.StringVar(&dfOptions.graphDriver, driverFlagName, "", "Storage driver keying the images/layers directories (default from storage.conf)")
	_ = rootCmd.RegisterFlagCompletionFunc(driverFlagName, completion.AutocompleteNone)

	configFlagName := "storage-config"
	pFlags.StringVar(&dfOptions.configPath, configFlagName, "", "Path to storage.conf (default /etc/containers/storage.conf)")
	_ = rootCmd.RegisterFlagCompletionFunc(configFlagName, completion.AutocompleteDefault)

	logLevelFlagName := "log-level"
	pFlags.StringVar(&logLevel, logLevelFlagName, logLevel, fmt.Sprintf("Log messages above specified level (%s)", strings.Join(logLevels, ", ")))
	_ = rootCmd.RegisterFlagCompletionFunc(logLevelFlagName, completion.AutocompleteNone)

	dfFlags(rootCmd)
}

func preRun(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("log level %q is not supported, choose from: %s", logLevel, strings.Join(logLevels, ", "))
	}
	logrus.SetLevel(level)
	return nil
}
