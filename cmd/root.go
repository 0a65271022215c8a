package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"lender/config"
	"lender/core"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/yiplee/structs"
)

const defaultConfigName = ".lender.yaml"

var (
	cfgFile   string
	cfg       core.Config
	debugMode bool
	logFormat string
	loaded    bool
)

var rootCmd = cobra.Command{
	Use:           "lender",
	Short:         "pooled over-collateralized lending market",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(setup)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $HOME/"+defaultConfigName+")")
	flags.BoolVar(&debugMode, "debug", false, "log at debug level")
	flags.StringVar(&logFormat, "log-format", "text", "log output format, text or json")
}

// Execute runs the root command with ver reported by --version
func Execute(ver string) {
	rootCmd.Version = ver
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() {
	if loaded {
		return
	}

	setupLogging()

	file, err := resolveConfigFile(cfgFile)
	if err != nil {
		logrus.WithError(err).Fatalln("resolve config file")
	}

	if file != "" {
		logrus.Debugln("load config from", file)
	}

	if err := config.Load(file, &cfg); err != nil {
		logrus.WithError(err).Fatalln("load config")
	}

	structs.DefaultTagName = "json"
	loaded = true
}

// resolveConfigFile falls back to the file in the home directory when it exists
func resolveConfigFile(file string) (string, error) {
	if file != "" {
		return file, nil
	}

	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}

	candidate := filepath.Join(home, defaultConfigName)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate, nil
	}

	return "", nil
}

func setupLogging() {
	level := logrus.InfoLevel
	if debugMode {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)

	switch logFormat {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
