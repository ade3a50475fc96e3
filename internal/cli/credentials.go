package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCredentialsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "credentials",
		Short: "Check the credentials file",
		Long: `Load and validate the credentials document the sessions log in with and
print the username with the password masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			src := cfg.CredentialSource()
			creds, err := src.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:     %s\n", src.Path)
			fmt.Fprintf(out, "username: %s\n", creds.Username)
			fmt.Fprintf(out, "password: %s\n", mask(creds.Password))
			return nil
		},
	}
}

// mask hides a secret, keeping only its length visible
func mask(secret string) string {
	if secret == "" {
		return "(empty)"
	}
	return strings.Repeat("*", len(secret))
}
