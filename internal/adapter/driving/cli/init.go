package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newInitCommand(o *options) *cobra.Command {
	var (
		serviceName string
		serviceID   string
	)

	cmd := &cobra.Command{
		Use:   "init (--name <service> | --id <service-id>)",
		Short: "Provision an API key for one service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (serviceName == "") == (serviceID == "") {
				return errors.New("exactly one of --name or --id must be given")
			}

			app, err := newApp(o)
			if err != nil {
				return err
			}
			defer app.close()

			svc, err := app.provisioner.FindService(cmd.Context(), serviceID, serviceName)
			if err != nil {
				return err
			}

			prov, err := app.provisioner.Provision(cmd.Context(), svc)
			if err != nil {
				return err
			}
			printProvision(cmd.OutOrStdout(), prov)
			return nil
		},
	}

	cmd.Flags().StringVar(&serviceName, "name", "", "select the service by display name (case-insensitive)")
	cmd.Flags().StringVar(&serviceID, "id", "", "select the service by id")
	return cmd
}
