// Package styles provides the style preset inspection command for the
// Interera CLI.
package styles

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/interera/interera/cmd/application"
	"github.com/interera/interera/internal/prompts"
	"github.com/interera/interera/pkg/errors"
)

// NewCommand creates the styles command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "styles [style-id]",
		Short: "List the embedded interior design style presets",
		Long: `List the style presets available for furnishing requests.

Each preset carries a prompt fragment that steers the generation model.
With a style id argument, shows the full preset including its prompt.`,
		Example: `  # List all presets
  interera styles

  # Show a single preset with its prompt fragment
  interera styles scandinavian

  # Machine-readable output
  interera styles -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			library, err := app.Prompts()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				return showStyle(cmd, app, library, args[0])
			}
			return listStyles(cmd, app, library)
		},
	}
}

// listStyles prints all style presets in the configured output format.
func listStyles(cmd *cobra.Command, app application.Application, library *prompts.Library) error {
	styles := library.Styles()

	switch app.OutputFormat() {
	case "json":
		return printJSON(cmd, styleList{DefaultStyle: library.DefaultStyle(), Styles: styles})
	case "yaml":
		return printYAML(cmd, styleList{DefaultStyle: library.DefaultStyle(), Styles: styles})
	default:
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
		for _, s := range styles {
			id := s.ID
			if id == library.DefaultStyle() {
				id += " (default)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", id, s.Name, s.Description)
		}
		return w.Flush()
	}
}

// showStyle prints a single preset, including its prompt fragment.
func showStyle(cmd *cobra.Command, app application.Application, library *prompts.Library, id string) error {
	style, err := library.Style(id)
	if err != nil {
		return errors.NewNotFoundError("style", id)
	}

	switch app.OutputFormat() {
	case "json":
		return printJSON(cmd, styleDetail{Style: style, Prompt: style.Prompt})
	case "yaml":
		// Style keeps its prompt in YAML output, no wrapper needed.
		return printYAML(cmd, style)
	default:
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "ID:\t%s\n", style.ID)
		fmt.Fprintf(w, "Name:\t%s\n", style.Name)
		fmt.Fprintf(w, "Description:\t%s\n", style.Description)
		fmt.Fprintf(w, "Prompt:\t%s\n", style.Prompt)
		if style.ID == library.DefaultStyle() {
			fmt.Fprintf(w, "Default:\ttrue\n")
		}
		return w.Flush()
	}
}

// styleList is the machine-readable shape for the full preset listing.
type styleList struct {
	DefaultStyle string          `json:"default_style" yaml:"default_style"`
	Styles       []prompts.Style `json:"styles" yaml:"styles"`
}

// styleDetail re-exposes the prompt fragment that Style hides from JSON
// API responses.
type styleDetail struct {
	prompts.Style
	Prompt string `json:"prompt"`
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func printYAML(cmd *cobra.Command, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}
