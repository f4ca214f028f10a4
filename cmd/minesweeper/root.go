package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper-engine/internal/config"
	"github.com/vancomm/minesweeper-engine/internal/mines"
)

var (
	log = logrus.New()

	configPath  string
	development bool
	cfg         config.Config
)

var rootCmd = &cobra.Command{
	Use:   "minesweeper",
	Short: "Minesweeper engine, game server and terminal client",
	Long: `minesweeper runs the classic mine-detection game.

Serve games over websockets
	minesweeper serve -c config.yaml

Play in the terminal
	minesweeper play --level hard
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if development {
			os.Setenv("DEVELOPMENT", "1")
		}
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		return setupLogging()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging() error {
	logLevel := logrus.InfoLevel
	if cfg.Development() {
		logLevel = logrus.DebugLevel
	}
	log.SetLevel(logLevel)
	mines.Log.SetLevel(logLevel)

	if cfg.Development() {
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	mines.Log.SetFormatter(log.Formatter)

	if cfg.Log.File == "" {
		return nil
	}
	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
		Level:      logLevel,
		Formatter:  &logrus.JSONFormatter{},
	})
	if err != nil {
		return fmt.Errorf("unable to open log file: %w", err)
	}
	log.AddHook(hook)
	mines.Log.AddHook(hook)
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&development, "dev", false, "development mode: debug logs and colored output")

	rootCmd.AddCommand(serveCmd, playCmd, scoresCmd, migrateCmd)
}
