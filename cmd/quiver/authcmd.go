package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/quiverhttp/quiver/pkg/auth"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Auth helpers: token inspection and keyring secrets",
	}

	cmd.AddCommand(newAuthInspectCmd())
	cmd.AddCommand(newAuthStoreSecretCmd())

	return cmd
}

func newAuthInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <token>",
		Short: "Show the claims of a JWT without validating it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := auth.InspectToken(args[0])
			if err != nil {
				return err
			}

			rows := pterm.TableData{
				{"Subject", info.Subject},
				{"Issuer", info.Issuer},
			}
			if !info.IssuedAt.IsZero() {
				rows = append(rows, []string{"Issued", info.IssuedAt.Format("2006-01-02 15:04:05")})
			}
			if !info.ExpiresAt.IsZero() {
				rows = append(rows, []string{"Expires", info.ExpiresAt.Format("2006-01-02 15:04:05")})
			}
			if err := pterm.DefaultTable.WithData(rows).Render(); err != nil {
				return err
			}
			if info.Expired() {
				pterm.Warning.Println("Token is expired")
			}
			return nil
		},
	}
}

func newAuthStoreSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "store-secret <account> <secret>",
		Short: "Store a credential in the OS keyring",
		Long: `Store a credential in the OS keyring and print the keyring:// reference
to use in place of the literal value in auth settings.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			ref, err := auth.StoreSecret(a.cfg.KeyringService, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Println(ref)
			return nil
		},
	}
}
