// cmd/tools/template-registry/main.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"insertion-workers/pkg/registry"
)

var registryPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "template-registry",
		Short: "Inspect and maintain the notification template registry",
		Long: `template-registry works on the JSON file read by the send-notification worker
(notifications.template_registry). Without --path it reads the built-in registry.

Examples:
  template-registry validate --path configs/templates.json
  template-registry list
  template-registry render eligibility_result --var prenom=Awa --var statutEligibilite=ELIGIBLE
  template-registry export configs/templates.json`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&registryPath, "path", "", "Path to the registry file (built-in when empty)")

	root.AddCommand(newValidateCmd(), newListCmd(), newRenderCmd(), newExportCmd())
	return root
}

func load() (*registry.TemplateRegistry, error) {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	return reg, nil
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check channels, texts and declared variables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := load()
			if err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d templates.\n", len(reg.Templates))
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered notification types",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := load()
			if err != nil {
				return err
			}
			return writeList(cmd.OutOrStdout(), reg)
		},
	}
}

func writeList(w io.Writer, reg *registry.TemplateRegistry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tCHANNELS\tVARIABLES")
	for _, t := range reg.Templates {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Type, strings.Join(t.Channels, ","), strings.Join(t.Variables, ","))
	}
	return tw.Flush()
}

func newRenderCmd() *cobra.Command {
	var vars []string

	cmd := &cobra.Command{
		Use:   "render <type>",
		Short: "Preview a template with sample values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := load()
			if err != nil {
				return err
			}
			tmpl, ok := reg.Lookup(args[0])
			if !ok {
				return fmt.Errorf("template %s not found (known: %s)", args[0], strings.Join(sorted(reg.Types()), ", "))
			}
			data, err := parseVars(vars)
			if err != nil {
				return err
			}
			return writeRendered(cmd.OutOrStdout(), tmpl, data)
		},
	}
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Template value as key=value (repeatable)")
	return cmd
}

func parseVars(vars []string) (map[string]interface{}, error) {
	data := make(map[string]interface{}, len(vars))
	for _, kv := range vars {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --var %q, want key=value", kv)
		}
		data[strings.TrimSpace(k)] = v
	}
	return data, nil
}

func writeRendered(w io.Writer, t registry.Template, data map[string]interface{}) error {
	if t.Supports(registry.ChannelEmail) {
		fmt.Fprintf(w, "Subject: %s\n\n%s\n", registry.Render(t.Subject, data), registry.Render(t.Body, data))
	}
	if t.Supports(registry.ChannelSMS) {
		fmt.Fprintf(w, "\nSMS: %s\n", registry.Render(t.SMS, data))
	}
	return nil
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the registry to a file, stamping lastUpdated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := load()
			if err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("refusing to export invalid registry: %w", err)
			}
			reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
			if err := saveRegistry(reg, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d templates to %s\n", len(reg.Templates), args[0])
			return nil
		},
	}
}

func saveRegistry(reg *registry.TemplateRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func sorted(s []string) []string {
	sort.Strings(s)
	return s
}
