package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/quiverhttp/quiver/pkg/auth"
	"github.com/quiverhttp/quiver/pkg/collection"
	"github.com/quiverhttp/quiver/pkg/output"
	"github.com/quiverhttp/quiver/pkg/request"
	"github.com/quiverhttp/quiver/pkg/resolve"
	"github.com/quiverhttp/quiver/pkg/secrets"
)

func newResolveCmd() *cobra.Command {
	var (
		envName     string
		skipAuth    bool
		showSecrets bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <request-id>",
		Short: "Compute the send-ready request for a node",
		Long: `Resolve a stored request: layer the ancestor collection settings,
substitute the active environment's variables, and materialize auth into
concrete headers. The output is exactly what the transport would send.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			cfg, err := a.collections.Config()
			if err != nil {
				return err
			}

			node, err := a.collections.Get(args[0])
			if err != nil {
				return err
			}
			if node.Type != collection.TypeRequest || node.Request == nil {
				return fmt.Errorf("node %q is a collection, not a request", args[0])
			}

			settings, err := collection.ResolveSettings(cfg, node.ID)
			if err != nil {
				return err
			}

			env, err := a.activeEnvironment(cmd)
			if err != nil {
				return err
			}

			resolved := resolve.ResolveRequest(*node.Request, settings, env)

			if err := a.history.Record(node.ID, node.Name, resolved.Method, resolved.URL); err != nil {
				pterm.Warning.Printfln("Could not record resolution history: %v", err)
			}

			if resolved.Auth.Type == request.AuthBearer && resolved.Auth.Bearer != nil {
				warnExpiredToken(resolved.Auth.Bearer.Token)
			}

			if !skipAuth {
				resolved, err = auth.Apply(resolved)
				if err != nil {
					return err
				}
			}

			format, err := a.outputFormat(cmd)
			if err != nil {
				return err
			}
			display := resolved
			if !showSecrets {
				display = secrets.MaskRequest(resolved)
			}
			if format == output.FormatText {
				output.Request(os.Stdout, display)
				return nil
			}
			return output.WriteValue(os.Stdout, display, format)
		},
	}

	cmd.Flags().StringVar(&envName, "env", "", "Resolve against this environment instead of the active one")
	cmd.Flags().BoolVar(&skipAuth, "skip-auth", false, "Leave auth unmaterialized (no generated headers)")
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print credential values unmasked")
	return cmd
}

// warnExpiredToken flags a bearer token that is a JWT with an exp claim in
// the past. Non-JWT tokens are left alone.
func warnExpiredToken(token string) {
	if auth.IsSecretRef(token) {
		return
	}
	info, err := auth.InspectToken(token)
	if err != nil {
		return
	}
	if info.Expired() {
		pterm.Warning.Printfln("Bearer token expired at %s", info.ExpiresAt.Format("2006-01-02 15:04:05"))
	}
}
