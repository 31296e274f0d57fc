// Copyright © 2018 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/elpsc/diagnostic"
)

var (
	cfgFile   string
	colorFlag string
	logLevel  string
)

// exitCode is returned by commands that have already reported their
// failure and only need the process to exit with a status.
type exitCode int

func (c exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(c))
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "elpsc",
	Short: "elpsc: Lisp analyzer and macro expander",
	Long: `elpsc reads Lisp source, expands macros and analyzes every top-level
form into a tree of typed nodes ready for code generation.

Getting started:
  elpsc analyze file.lisp        Print the analyzed tree of each form
  elpsc analyze ./...            Analyze every .lisp file below a directory
  elpsc expand file.lisp         Expand the macro call of each form once
  elpsc forms                    List special forms and core bindings
  elpsc forms let                Show documentation for a form
  elpsc repl                     Start an interactive analyzer

Language overview:
  Source is read as syntax values: lists, vectors, arrays, maps, tables
  and sets of symbols and literals.  Globals live in namespaces declared
  with (ns name (:require other :as alias)).  Unqualified symbols resolve
  in the current namespace and then in core.  Host interop goes through
  the host/ special forms and the host namespace.

Configuration is read from $HOME/.elpsc.yaml and ELPSC_ environment
variables.  Flags take precedence over both.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_, err := diagnostic.ParseColorMode(viper.GetString("color"))
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var code exitCode
		if errors.As(err, &code) {
			os.Exit(int(code))
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.elpsc.yaml)")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Level of the compiler log written to stderr.")
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in home directory with name ".elpsc" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".elpsc")
	}

	viper.SetEnvPrefix("elpsc")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		newLogger().WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	}
}

// newLogger returns the compiler logger configured by --log-level.
func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	lvl, err := logrus.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		lvl = logrus.WarnLevel
	}
	log.SetLevel(lvl)
	return log
}
