package cmd

import "github.com/spf13/cobra"

func newTypesCommand(newService serviceFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the supported symbologies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), svc.Types())
		},
	}
}
