package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/quiverhttp/quiver/pkg/collection"
	"github.com/quiverhttp/quiver/pkg/output"
	"github.com/quiverhttp/quiver/pkg/request"
)

func newRequestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "request",
		Aliases: []string{"req"},
		Short:   "Manage saved request definitions",
	}

	cmd.AddCommand(newRequestSaveCmd())
	cmd.AddCommand(newRequestShowCmd())
	cmd.AddCommand(newRequestRecentCmd())

	return cmd
}

func newRequestSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Create or update a request node",
		Long: `Create a request node, or update one in place with --id.

On an update, only the flags you pass change; the stored URL, method,
headers, body, and auth are kept, and the node stays under its current
parent unless --parent is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			existingID, _ := flags.GetString("id")
			parentID, _ := flags.GetString("parent")

			req := request.HttpRequest{
				Method: "GET",
				Auth:   request.AuthConfig{Type: request.AuthNone},
			}
			if existingID != "" {
				node, err := a.collections.Get(existingID)
				if err != nil {
					return err
				}
				if node.Request != nil {
					req = node.Request.Clone()
				}
				if !flags.Changed("parent") {
					cfg, err := a.collections.Config()
					if err != nil {
						return err
					}
					parentID, _ = collection.FindParentCollectionID(cfg, existingID)
				}
			}
			if err := applyRequestFlags(flags, &req); err != nil {
				return err
			}

			node, err := a.collections.SaveRequest(args[0], req, parentID, existingID)
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Saved request %s (%s)", node.Name, node.ID)
			return nil
		},
	}

	cmd.Flags().String("parent", "", "Parent collection id (root level when omitted)")
	cmd.Flags().String("id", "", "Existing request node id to update in place")
	registerRequestFlags(cmd.Flags())
	return cmd
}

// registerRequestFlags declares the flags that describe the request itself,
// shared between registration and the overlay below.
func registerRequestFlags(flags *pflag.FlagSet) {
	flags.String("url", "", "Request URL, may contain {{variables}}")
	flags.String("method", "GET", "HTTP method")
	flags.StringArray("header", nil, "Header as key=value (repeatable)")
	flags.StringArray("param", nil, "Query parameter as key=value (repeatable)")
	flags.String("body-type", "", "Body content kind, e.g. json")
	flags.String("body", "", "Body content, may contain {{variables}}")
	flags.String("auth-type", "", "Request auth type: none, basic, bearer, api-key")
	flags.String("username", "", "Basic auth username")
	flags.String("password", "", "Basic auth password")
	flags.String("token", "", "Bearer token")
	flags.String("api-key", "", "API key header/parameter name")
	flags.String("api-value", "", "API key value")
	flags.String("api-add-to", "header", "Where the API key goes: header or query")
	flags.Bool("no-inherit-auth", false, "Opt this request out of inherited collection auth")
}

// applyRequestFlags folds the changed flags into req, leaving everything
// else as it stands so an --id update only touches what the user passed.
func applyRequestFlags(flags *pflag.FlagSet, req *request.HttpRequest) error {
	if flags.Changed("url") {
		req.URL, _ = flags.GetString("url")
	}
	if flags.Changed("method") {
		method, _ := flags.GetString("method")
		req.Method = strings.ToUpper(method)
	}
	if flags.Changed("body-type") {
		req.Body.Type, _ = flags.GetString("body-type")
	}
	if flags.Changed("body") {
		req.Body.Content, _ = flags.GetString("body")
	}

	if flags.Changed("header") {
		raws, _ := flags.GetStringArray("header")
		req.Headers = nil
		for _, raw := range raws {
			key, value, ok := strings.Cut(raw, "=")
			if !ok {
				return fmt.Errorf("invalid header %q, expected key=value", raw)
			}
			req.Headers = append(req.Headers, request.KeyValuePair{Key: key, Value: value, Enabled: true})
		}
	}
	if flags.Changed("param") {
		raws, _ := flags.GetStringArray("param")
		req.QueryParams = nil
		for _, raw := range raws {
			key, value, ok := strings.Cut(raw, "=")
			if !ok {
				return fmt.Errorf("invalid query parameter %q, expected key=value", raw)
			}
			req.QueryParams = append(req.QueryParams, request.KeyValuePair{Key: key, Value: value, Enabled: true})
		}
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
		auth.DisableInherit = req.Auth.DisableInherit
		req.Auth = *auth
	}
	if flags.Changed("no-inherit-auth") {
		req.Auth.DisableInherit, _ = flags.GetBool("no-inherit-auth")
	}

	return nil
}

func newRequestRecentCmd() *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently resolved requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if clear {
				if err := a.history.Clear(); err != nil {
					return err
				}
				pterm.Success.Println("Cleared resolution history")
				return nil
			}

			entries, err := a.history.List()
			if err != nil {
				return err
			}
			format, err := a.outputFormat(cmd)
			if err != nil {
				return err
			}
			if format == output.FormatText {
				output.RecentRequests(os.Stdout, entries)
				return nil
			}
			return output.WriteValue(os.Stdout, entries, format)
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Forget all recorded resolutions")
	return cmd
}

func newRequestShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a request node as stored, without resolution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			node, err := a.collections.Get(args[0])
			if err != nil {
				return err
			}
			format, err := a.outputFormat(cmd)
			if err != nil {
				return err
			}
			if format == output.FormatText {
				format = output.FormatJSON
			}
			return output.WriteValue(os.Stdout, node, format)
		},
	}
}
