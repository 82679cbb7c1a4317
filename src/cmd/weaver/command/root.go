package command

import (
	"fmt"
	"os"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/weavenet/weaver/src/config"
)

var (
	conf    = config.NewDefaultConfig()
	datadir string
	logs    string
)

// RootCmd is the root command for weaver
var RootCmd = &cobra.Command{
	Use:   "weaver",
	Short: "weaver gossip-bridge node",
	Long: `weaver

A transaction-admission and gossip-bridge node for the weave.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlagsLoadViper(cmd); err != nil {
			return err
		}

		var err error
		conf, err = parseConfig()
		if err != nil {
			return err
		}

		conf.SetDataDir(conf.DataDir)

		logger := newLogger()
		logger.Level = config.LogLevel(conf.LogLevel)
		conf.SetLogger(logger)

		return nil
	},
}

// Execute runs the root command and exits on error.
func Execute() {
	RootCmd.AddCommand(
		NewRunCmd(),
		NewKeygenCmd(),
		NewVersionCmd(),
	)

	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)

		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&datadir, "datadir", "d", conf.DataDir, "Top-level directory for configuration and data")
	RootCmd.PersistentFlags().String("log", conf.LogLevel, "Log level (debug, info, warn, error, fatal, panic)")
	RootCmd.PersistentFlags().StringVar(&logs, "log-dir", "", "Directory to write level-separated log files to")
}

// bindFlagsLoadViper binds all flags and reads the weaver.toml config file
// from the datadir, when present.
func bindFlagsLoadViper(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	viper.SetConfigName("weaver")
	viper.AddConfigPath(datadir)

	if err := viper.ReadInConfig(); err == nil {
		logrus.Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		logrus.Debugf("No config file found in: %s", datadir)
	} else {
		return err
	}

	return nil
}

// parseConfig retrieves the configuration from viper.
func parseConfig() (*config.Config, error) {
	c := config.NewDefaultConfig()
	c.DataDir = datadir
	if err := viper.Unmarshal(c); err != nil {
		return nil, err
	}
	return c, nil
}

// newLogger attaches file hooks for the info and debug levels when a log
// directory was requested.
func newLogger() *logrus.Logger {
	logger := logrus.StandardLogger()

	if logs == "" {
		return logger
	}

	pathMap := lfshook.PathMap{}

	infoPath := logs + "/weaver_info.log"
	if _, err := os.OpenFile(infoPath, os.O_CREATE|os.O_WRONLY, 0666); err != nil {
		logger.Info("Failed to open weaver_info.log file, using default stderr")
	} else {
		pathMap[logrus.InfoLevel] = infoPath
	}

	debugPath := logs + "/weaver_debug.log"
	if _, err := os.OpenFile(debugPath, os.O_CREATE|os.O_WRONLY, 0666); err != nil {
		logger.Info("Failed to open weaver_debug.log file, using default stderr")
	} else {
		pathMap[logrus.DebugLevel] = debugPath
	}

	logger.Hooks.Add(lfshook.NewHook(
		pathMap,
		&logrus.TextFormatter{},
	))

	return logger
}
