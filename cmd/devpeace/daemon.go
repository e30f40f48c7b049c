package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/devpeace/devpeace/internal/config"
	"github.com/devpeace/devpeace/internal/ui"
)

const (
	daemonLogMaxSizeMB = 10
	daemonLogBackups   = 3
	daemonLogMaxAgeDay = 28
)

var daemonLogLevel string

func parseLogLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("unknown log level %q (use debug, info, warn or error)", name)
	}
	return level, nil
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the activity monitor as a long-lived service",
	Long: `Run the activity monitor detached from the terminal's logging: output
goes to a rotating log file next to the config. A pid file plus an
advisory lock guard against double starts.

Intended to be launched by a service manager (systemd, launchd) or with
the shell's own backgrounding. SIGHUP re-reads the repository list;
SIGTERM ends all open sessions and exits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		level, err := parseLogLevel(daemonLogLevel)
		if err != nil {
			return err
		}
		logPath, err := config.LogFilePath()
		if err != nil {
			return err
		}
		logWriter := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    daemonLogMaxSizeMB,
			MaxBackups: daemonLogBackups,
			MaxAge:     daemonLogMaxAgeDay,
			Compress:   true,
		}
		defer func() { _ = logWriter.Close() }()
		logger := slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: level}))

		release, err := acquireDaemonLock()
		if err != nil {
			return err
		}
		defer release()

		sup, cleanup, err := buildMonitor(ctx, logger)
		if err != nil {
			logger.Error("failed to start daemon", "error", err)
			return err
		}
		defer cleanup()

		if err := sup.Start(ctx); err != nil {
			logger.Error("failed to start daemon", "error", err)
			return err
		}
		logger.Info("daemon started", "pid", os.Getpid(), "log", logPath)
		fmt.Println(ui.RenderSuccess(fmt.Sprintf("✓ Daemon running (pid %d), logging to %s", os.Getpid(), logPath)))

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(signals)

		for sig := range signals {
			if sig == syscall.SIGHUP {
				logger.Info("reloading repository list")
				if err := sup.Refresh(ctx); err != nil {
					logger.Error("failed to refresh repositories", "error", err)
				}
				continue
			}
			logger.Info("shutdown signal received", "signal", sig.String())
			break
		}

		sup.Stop()
		logger.Info("daemon stopped")
		return nil
	},
}

func init() {
	daemonCmd.Flags().StringVar(&daemonLogLevel, "log-level", "info", "log level: debug, info, warn or error")
	rootCmd.AddCommand(daemonCmd)
}
