package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bootbridge/internal/commands"
	"bootbridge/internal/services/delivery"
)

const (
	// extractTimeout bounds the whole three-step exchange.
	extractTimeout = 2 * time.Minute
)

//nolint:gochecknoglobals // Cobra CLI pattern for subcommand
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Redeem an authentication ticket once the login flow lands",
	Long: `Replay page loads through the lifecycle gate. The first location whose path
ends with the terminal marker (default "home") starts the ticket exchange:
anti-forgery token, ticket issuance, then redemption.

The session cookie is read from BOOTBRIDGE_SESSION_COOKIE (a .env file in the
working directory is honoured) or prompted for with echo disabled.`,
	Example: `  bootbridge extract --location https://www.roblox.com/login --location https://www.roblox.com/home`,
	RunE:    runExtract,
}

//nolint:gochecknoinits // Cobra CLI pattern for command registration
func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().
		StringSliceP("location", "l", nil, "Page location loaded, in order (can be specified multiple times)")
	extractCmd.Flags().
		StringP("output", "o", delivery.FormatText, "Outcome format: text or json")
	extractCmd.Flags().
		Bool("reveal", false, "Print the redeemed session cookie unmasked")
	extractCmd.Flags().
		Bool("no-session", false, "Do not seed a session cookie")
	_ = extractCmd.MarkFlagRequired("location")
}

func runExtract(cmd *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}

	locations, _ := cmd.Flags().GetStringSlice("location")
	output, _ := cmd.Flags().GetString("output")
	reveal, _ := cmd.Flags().GetBool("reveal")
	noSession, _ := cmd.Flags().GetBool("no-session")

	deliverer := delivery.NewWriterDeliverer(cmd.OutOrStdout(), output, reveal)
	gate := app.Services.CreateGate(deliverer)

	extractCommand := commands.NewExtractCommand(app.SessionStore, app.SecretReader, app.Logger)

	ctx, cancel := context.WithTimeout(cmd.Context(), extractTimeout)
	defer cancel()
	result, err := extractCommand.Execute(ctx, commands.ExtractRequest{
		Locations:    locations,
		CookieURL:    app.Settings.Identity.LoginURL,
		CookieDomain: app.Settings.Identity.CookieDomain,
		SkipSession:  noSession,
	}, gate)
	app.LogMetrics(ctx)
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	if !result.Triggered {
		fmt.Fprintf(cmd.OutOrStdout(), "No location ended with %q; nothing extracted\n", app.Settings.Gate.TerminalMarker)
	}
	return nil
}
