package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check connectivity and credentials of the email provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			transport, err := loadTransport(cmd.Context())
			if err != nil {
				return err
			}

			if err := transport.Verify(cmd.Context()); err != nil {
				return fmt.Errorf("%s transport verification failed: %w", transport.Name(), err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s transport OK\n", transport.Name())
			return nil
		},
	}
}
