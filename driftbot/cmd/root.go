// Copyright (c) Kusari <https://www.kusari.dev/>
// SPDX-License-Identifier: MIT

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/apx-project/semantic-drift-action/pkg/configuration"
	"github.com/apx-project/semantic-drift-action/pkg/constants"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	verbose      bool
	registryRoot string
	localRoot    string
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default ./%s)", configuration.ConfigFilename))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&registryRoot, "registry-root", "registry", "Directory searched recursively for pack.yaml files")
	rootCmd.PersistentFlags().StringVar(&localRoot, "local-root", "packs", "Directory of local pack specs")

	// Bind flags to viper
	mustBindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	mustBindPFlag("registry_root", rootCmd.PersistentFlags().Lookup("registry-root"))
	mustBindPFlag("local_packs_root", rootCmd.PersistentFlags().Lookup("local-root"))
}

var rootCmd = &cobra.Command{
	Use:   "driftbot",
	Short: "Semantic drift bot",
	Long:  "Report semantic drift and config guard findings on pull and merge requests",
}

func Execute() error {

	rootCmd.AddCommand(Run())
	rootCmd.AddCommand(Guard())
	rootCmd.AddCommand(Configuration())

	return rootCmd.Execute()
}

// initConfig layers the config file and SEMANTIC_DRIFT_* env vars under the flags
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(strings.TrimSuffix(configuration.ConfigFilename, ".yaml"))
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: Could not read config file: %v\n", err)
		}
	}

	// Update from viper (this gets env vars + config + flags)
	verbose = viper.GetBool("verbose")
	registryRoot = viper.GetString("registry_root")
	localRoot = viper.GetString("local_packs_root")
}

func mustBindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind flag %s: %v", key, err))
	}
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "driftbot",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
