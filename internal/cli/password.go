package cli

import (
	"github.com/BradenHooton/vigil/pkg/auth"
	"github.com/spf13/cobra"
)

func newPasswordStrengthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "password-strength PASSWORD",
		Short: "Score a candidate password from 0 to 5",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), auth.ScorePassword(args[0]))
		},
	}
}
