// Package cli wires the cobra command surface: an interactive root command
// plus list, init, and history subcommands.
package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/keyprov/internal/application"
	"github.com/ericfisherdev/keyprov/internal/domain/model"
)

// options holds persistent flag state shared by all commands.
type options struct {
	verbose bool
}

// NewRootCommand builds the keyprov command tree. Run without a subcommand
// it enters the interactive flow: list services, prompt a selection, and
// provision a key for the chosen one.
func NewRootCommand() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "keyprov",
		Short: "Provision 3scale API keys gated by Red Hat SSO",
		Long: `keyprov authenticates against Red Hat SSO (Keycloak), resolves or creates
your 3scale developer account, and provisions an API key for a chosen
service: reusing an existing application when one matches, registering a
new one otherwise.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInteractive(cmd, o)
		},
	}

	cmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newListCommand(o),
		newInitCommand(o),
		newHistoryCommand(o),
	)
	return cmd
}

func runInteractive(cmd *cobra.Command, o *options) error {
	app, err := newApp(o)
	if err != nil {
		return err
	}
	defer app.close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	services, err := app.provisioner.Services(ctx)
	if err != nil {
		return err
	}
	if len(services) == 0 {
		return fmt.Errorf("no services found in the catalog")
	}

	fmt.Fprintln(out, "Available services:")
	for i, svc := range services {
		fmt.Fprintf(out, "  %d. %s (id %s)\n", i+1, svc.Name, svc.ID)
	}

	svc, err := chooseService(app, services)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Selected service: %s (id %s)\n", svc.Name, svc.ID)

	prov, err := app.provisioner.Provision(ctx, svc)
	if err != nil {
		return err
	}
	printProvision(out, prov)
	return nil
}

// chooseService prompts for a numbered selection until the input is a valid
// index into services.
func chooseService(app *app, services []model.Service) (model.Service, error) {
	for {
		answer, err := app.prompter.Line(fmt.Sprintf("Select a service [1-%d]: ", len(services)))
		if err != nil {
			return model.Service{}, fmt.Errorf("read selection: %w", err)
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < 1 || n > len(services) {
			fmt.Fprintf(app.errOut, "Invalid choice %q; enter a number between 1 and %d.\n", answer, len(services))
			continue
		}
		return services[n-1], nil
	}
}

func printProvision(out io.Writer, prov *application.Provision) {
	state := "new"
	if prov.Key.Reused {
		state = "existing"
	}
	fmt.Fprintf(out, "API key for service %q (plan %q, %s): %s\n",
		prov.Service.Name, prov.Plan.Name, state, prov.Key.Value)
	fmt.Fprintf(out, "To use it in your shell:\n  export GENERATED_API_KEY=%q\n", prov.Key.Value)
}
