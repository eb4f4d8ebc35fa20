package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/quiverhttp/quiver/pkg/collection"
	"github.com/quiverhttp/quiver/pkg/output"
	"github.com/quiverhttp/quiver/pkg/request"
)

func newCollectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collection",
		Aliases: []string{"col"},
		Short:   "Manage the collection tree",
	}

	cmd.AddCommand(newCollectionNewCmd())
	cmd.AddCommand(newCollectionListCmd())
	cmd.AddCommand(newCollectionRenameCmd())
	cmd.AddCommand(newCollectionMoveCmd())
	cmd.AddCommand(newCollectionDeleteCmd())
	cmd.AddCommand(newCollectionSetCmd())
	cmd.AddCommand(newCollectionExportCmd())
	cmd.AddCommand(newCollectionRemoteCmd())

	return cmd
}

func newCollectionNewCmd() *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			node, err := a.collections.CreateCollection(args[0], parentID)
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Created collection %s (%s)", node.Name, node.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "Parent collection id (root level when omitted)")
	return cmd
}

func newCollectionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the collection tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			cfg, err := a.collections.Config()
			if err != nil {
				return err
			}
			if len(cfg.Collections) == 0 {
				pterm.Info.Println("No collections yet. Create one with: quiver collection new <name>")
				return nil
			}
			return output.CollectionTree(cfg)
		},
	}
}

func newCollectionRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <new-name>",
		Short: "Rename a node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.collections.RenameNode(args[0], args[1])
		},
	}
}

func newCollectionMoveCmd() *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move a node to another parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.collections.MoveNode(args[0], parentID)
		},
	}

	cmd.Flags().StringVar(&parentID, "to", "", "Destination collection id (root level when omitted)")
	return cmd
}

func newCollectionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a node and, for collections, its whole subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			found, err := a.collections.DeleteNode(args[0])
			if err != nil {
				return err
			}
			if !found {
				pterm.Warning.Printfln("No node with id %s", args[0])
				return nil
			}
			if err := a.history.Forget(args[0]); err != nil {
				pterm.Warning.Printfln("Could not prune resolution history: %v", err)
			}
			pterm.Success.Println("Deleted")
			return nil
		},
	}
}

func newCollectionSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <collection-id>",
		Short: "Update a collection's inherited settings",
		Long: `Update the settings a collection passes down to its descendants.

Only flags you pass are changed; everything else keeps its current state,
including the distinction between "no opinion" and "explicitly cleared".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			node, err := a.collections.Get(args[0])
			if err != nil {
				return err
			}

			settings := node.Settings.Clone()
			if settings == nil {
				settings = &collection.Settings{}
			}
			if err := applySettingsFlags(cmd.Flags(), settings); err != nil {
				return err
			}

			return a.collections.UpdateSettings(args[0], settings)
		},
	}

	cmd.Flags().String("base-url", "", "Base URL prepended to descendant request URLs")
	cmd.Flags().Bool("clear-base-url", false, "Explicitly clear the base URL at this level")
	cmd.Flags().StringArray("header", nil, "Shared header as key=value (repeatable)")
	cmd.Flags().Bool("clear-headers", false, "Drop all shared headers before applying --header flags")
	cmd.Flags().String("auth-type", "", "Shared auth type: none, basic, bearer, api-key")
	cmd.Flags().String("username", "", "Basic auth username")
	cmd.Flags().String("password", "", "Basic auth password (literal or keyring://service/account)")
	cmd.Flags().String("token", "", "Bearer token (literal or keyring://service/account)")
	cmd.Flags().String("api-key", "", "API key header/parameter name")
	cmd.Flags().String("api-value", "", "API key value (literal or keyring://service/account)")
	cmd.Flags().String("api-add-to", "header", "Where the API key goes: header or query")
	cmd.Flags().String("git-remote", "", "Git remote URL recorded for sharing")
	return cmd
}

// applySettingsFlags folds the changed flags into an existing settings
// value. Untouched fields keep their stored state, so "no opinion" and
// "explicitly cleared" survive partial updates.
func applySettingsFlags(flags *pflag.FlagSet, settings *collection.Settings) error {
	if clear, _ := flags.GetBool("clear-base-url"); clear {
		empty := ""
		settings.BaseURL = &empty
	} else if flags.Changed("base-url") {
		baseURL, _ := flags.GetString("base-url")
		settings.BaseURL = &baseURL
	}

	if clear, _ := flags.GetBool("clear-headers"); clear {
		settings.Headers = []request.KeyValuePair{}
	}
	headers, _ := flags.GetStringArray("header")
	for _, raw := range headers {
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			return fmt.Errorf("invalid header %q, expected key=value", raw)
		}
		settings.Headers = append(settings.Headers, request.KeyValuePair{
			Key: key, Value: value, Enabled: true,
		})
	}

	if flags.Changed("auth-type") {
		authType, _ := flags.GetString("auth-type")
		username, _ := flags.GetString("username")
		password, _ := flags.GetString("password")
		token, _ := flags.GetString("token")
		apiKey, _ := flags.GetString("api-key")
		apiValue, _ := flags.GetString("api-value")
		apiAddTo, _ := flags.GetString("api-add-to")
		auth, err := buildAuthConfig(authType, username, password, token, apiKey, apiValue, apiAddTo)
		if err != nil {
			return err
		}
		settings.Auth = auth
	}

	if flags.Changed("git-remote") {
		gitRemote, _ := flags.GetString("git-remote")
		settings.GitRemote = &gitRemote
	}

	return nil
}

func newCollectionExportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the whole collections document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			cfg, err := a.collections.Config()
			if err != nil {
				return err
			}
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			return output.WriteValue(os.Stdout, cfg, f)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Export format: json or yaml")
	return cmd
}

func newCollectionRemoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remote <id>",
		Short: "Open the collection's git remote in the browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			// Inherited: a child collection without its own remote falls
			// back to the nearest ancestor's.
			settings, err := a.collections.ResolveSettingsFor(args[0])
			if err != nil {
				return err
			}
			if settings.GitRemote == nil || *settings.GitRemote == "" {
				return fmt.Errorf("no git remote configured on this collection or its ancestors")
			}
			return open.Run(*settings.GitRemote)
		},
	}
}

func buildAuthConfig(authType, username, password, token, apiKey, apiValue, apiAddTo string) (*request.AuthConfig, error) {
	switch request.AuthType(authType) {
	case request.AuthNone:
		return &request.AuthConfig{Type: request.AuthNone}, nil
	case request.AuthBasic:
		return &request.AuthConfig{
			Type:  request.AuthBasic,
			Basic: &request.BasicAuth{Username: username, Password: password},
		}, nil
	case request.AuthBearer:
		return &request.AuthConfig{
			Type:   request.AuthBearer,
			Bearer: &request.BearerAuth{Token: token},
		}, nil
	case request.AuthAPIKey:
		addTo := request.APIKeyInHeader
		if apiAddTo == string(request.APIKeyInQuery) {
			addTo = request.APIKeyInQuery
		}
		return &request.AuthConfig{
			Type:   request.AuthAPIKey,
			APIKey: &request.APIKeyAuth{Key: apiKey, Value: apiValue, AddTo: addTo},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported auth type %q (none, basic, bearer, api-key)", authType)
	}
}
