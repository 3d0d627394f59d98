package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bootbridge/internal/commands"
	"bootbridge/internal/domain"
)

//nolint:gochecknoglobals // Cobra CLI pattern for subcommand
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the host's current task",
	Long: `Poll the host task endpoint and print a NewTask line each time the host
reports a different, non-empty task. Runs until interrupted, the --until task
is reached, or --duration elapses.`,
	RunE: runWatch,
}

//nolint:gochecknoinits // Cobra CLI pattern for command registration
func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().
		String("until", "", "Stop once this task is reported (e.g. LaunchingGame)")
	watchCmd.Flags().
		Duration("duration", 0, "Stop after this long (0 watches until interrupted)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}

	until, _ := cmd.Flags().GetString("until")
	duration, _ := cmd.Flags().GetDuration("duration")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	watchCommand := commands.NewWatchCommand(cmd.OutOrStdout(), app.Logger)
	result, err := watchCommand.Execute(ctx, commands.WatchRequest{
		StopAt: domain.TaskToken(until),
	}, app.Services.CreateBridge())
	app.LogMetrics(ctx)
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	app.Logger.InfoContext(ctx, "Watch finished",
		"changes", result.Changes,
		"task", string(result.FinalTask))
	return nil
}
