package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List services, split by whether your account holds an API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(o)
			if err != nil {
				return err
			}
			defer app.close()

			statuses, err := app.provisioner.Status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			withKey := false
			fmt.Fprintln(out, "Services with an API key:")
			for _, st := range statuses {
				if st.Key == "" {
					continue
				}
				withKey = true
				fmt.Fprintf(out, "  %s (id %s, url %s): %s\n", st.Service.Name, st.Service.ID, orNA(st.Service.BackendURL), st.Key)
			}
			if !withKey {
				fmt.Fprintln(out, "  (none)")
			}

			withoutKey := false
			fmt.Fprintln(out, "Services without an API key:")
			for _, st := range statuses {
				if st.Key != "" {
					continue
				}
				withoutKey = true
				fmt.Fprintf(out, "  %s (id %s, url %s)\n", st.Service.Name, st.Service.ID, orNA(st.Service.BackendURL))
			}
			if !withoutKey {
				fmt.Fprintln(out, "  (none)")
			}
			return nil
		},
	}
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
