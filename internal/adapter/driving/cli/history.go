package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/keyprov/internal/domain/port/driven"
)

func newHistoryCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show locally recorded provisioning history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(o)
			if err != nil {
				return err
			}
			defer app.close()

			recs, err := app.provisioner.History(cmd.Context())
			if errors.Is(err, driven.ErrEncryptionKeyNotSet) {
				return fmt.Errorf("provisioning history is disabled: %w", err)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, "No provisioning history recorded yet.")
				return nil
			}
			for _, rec := range recs {
				state := "new"
				if rec.Reused {
					state = "reused"
				}
				fmt.Fprintf(out, "%s  %s (service %s, plan %s, %s): %s\n",
					rec.CreatedAt.Format("2006-01-02 15:04:05"),
					rec.ServiceName, rec.ServiceID, rec.PlanID, state, rec.Key)
			}
			return nil
		},
	}
}
