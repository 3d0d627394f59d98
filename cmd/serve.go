package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bootbridge/internal/commands"
	"bootbridge/internal/domain"
)

//nolint:gochecknoglobals // Cobra CLI pattern for subcommand
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the host task endpoint",
	Long: `Serve GET /current_task, reporting the host's current task in the
x-current-task header, plus Prometheus metrics on /metrics.

With --demo the endpoint walks through CheckingForUpdates, DownloadingClient,
PreparingFiles and LaunchingGame, holding each for --demo-step.`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra CLI pattern for command registration
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().
		String("listen", "", "Listen address (default from host.listen)")
	serveCmd.Flags().
		Bool("demo", false, "Walk through the host bootstrap tasks")
	serveCmd.Flags().
		Duration("demo-step", 0, "How long each demo task is held (default from host.demo_step)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}

	listen, _ := cmd.Flags().GetString("listen")
	demo, _ := cmd.Flags().GetBool("demo")
	demoStep, _ := cmd.Flags().GetDuration("demo-step")
	if listen == "" {
		listen = app.Settings.Host.Listen
	}
	if demoStep <= 0 {
		demoStep = app.Settings.Host.DemoStep
	}

	initial := domain.TaskToken(app.Settings.Bridge.StartingTask)
	if initial == "" {
		initial = domain.TaskCheckingForUpdates
	}
	board := app.Services.CreateTaskBoard(initial)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveCommand := commands.NewServeCommand(app.Logger)
	if err := serveCommand.Execute(ctx, commands.ServeRequest{
		Listen:   listen,
		Demo:     demo,
		DemoStep: demoStep,
	}, app.Services.CreateHostServer(board), board); err != nil {
		return fmt.Errorf("serve failed: %w", err)
	}
	return nil
}
