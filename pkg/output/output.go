// Package output renders engine values for the terminal: the collection
// tree, environment tables, and resolved requests in json, yaml, or a
// human-readable text form.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"github.com/quiverhttp/quiver/pkg/collection"
	"github.com/quiverhttp/quiver/pkg/environment"
	"github.com/quiverhttp/quiver/pkg/history"
	"github.com/quiverhttp/quiver/pkg/request"
)

// Format selects a rendering for structured values.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
)

// ParseFormat validates a --output flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatYAML, FormatText:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported output format %q (json, yaml, text)", s)
	}
}

// WriteValue marshals v as JSON or YAML.
func WriteValue(w io.Writer, v any, format Format) error {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
}

// CollectionTree renders the forest as a pterm tree, collections as
// branches and requests as method-prefixed leaves, each suffixed with its
// id so nodes can be addressed from the command line.
func CollectionTree(cfg *collection.Config) error {
	root := pterm.TreeNode{Text: "collections"}
	for _, node := range cfg.Collections {
		root.Children = append(root.Children, treeNode(node))
	}
	return pterm.DefaultTree.WithRoot(root).Render()
}

func treeNode(node *collection.Node) pterm.TreeNode {
	var text string
	if node.Type == collection.TypeRequest {
		method := "GET"
		if node.Request != nil && node.Request.Method != "" {
			method = strings.ToUpper(node.Request.Method)
		}
		text = fmt.Sprintf("%s %s %s", pterm.LightCyan(method), node.Name, pterm.Gray(node.ID))
	} else {
		text = fmt.Sprintf("%s %s", pterm.Bold.Sprint(node.Name), pterm.Gray(node.ID))
	}

	out := pterm.TreeNode{Text: text}
	for _, child := range node.Children {
		out.Children = append(out.Children, treeNode(child))
	}
	return out
}

// EnvironmentTable renders the stored environments, marking the active one.
func EnvironmentTable(cfg *environment.Config) error {
	rows := pterm.TableData{{"", "NAME", "ID", "VARIABLES", "ENV FILE"}}
	for _, env := range cfg.Environments {
		active := ""
		if env.ID == cfg.ActiveEnvironmentID {
			active = "*"
		}
		rows = append(rows, []string{
			active,
			env.Name,
			env.ID,
			fmt.Sprintf("%d", len(env.Variables)),
			env.EnvFilePath,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

// RecentRequests renders the resolution history, newest first.
func RecentRequests(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No requests resolved yet.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s %s %s %s (used %d, last %s)\n",
			pterm.LightCyan(strings.ToUpper(e.Method)),
			e.Name,
			e.URL,
			pterm.Gray(e.RequestID),
			e.UseCount,
			e.LastUsed.Local().Format("2006-01-02 15:04"),
		)
	}
}

// Request renders a resolved request as readable text: request line,
// enabled query parameters and headers, then the body.
func Request(w io.Writer, req request.HttpRequest) {
	method := req.Method
	if method == "" {
		method = "GET"
	}
	fmt.Fprintf(w, "%s %s\n", strings.ToUpper(method), req.URL)

	for _, p := range req.QueryParams {
		if p.Enabled {
			fmt.Fprintf(w, "  ? %s=%s\n", p.Key, p.Value)
		}
	}
	for _, h := range req.Headers {
		if h.Enabled {
			fmt.Fprintf(w, "  %s: %s\n", h.Key, h.Value)
		}
	}
	if req.Body.Content != "" {
		fmt.Fprintf(w, "\n%s\n", req.Body.Content)
	}
}
