package main

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// config holds the resolved run parameters, sourced from flags,
// SNAPLERPD_*-prefixed environment variables and a config file, in that
// order of precedence (flags win).
type config struct {
	BufferTime        float64
	CatchupThreshold  int
	CatchupMultiplier float64
	TickRate          float64
	JitterMillis      int
	MetricsAddr       string
	LogLevel          string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "snaplerpd",
		Short: "Demonstrates the snaplerp snapshot interpolation core",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.snaplerpd.yaml)")
	root.AddCommand(newRunCmd())

	return root
}

func initConfig() *viper.Viper {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".snaplerpd")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("snaplerpd")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			logrus.WithError(err).Warn("snaplerpd: failed to read config file, continuing with flags/env only")
		}
	}

	return v
}
