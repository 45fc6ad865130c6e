// Package models provides the upstream model inspection command for the
// Interera CLI.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/interera/interera/cmd/application"
	"github.com/interera/interera/internal/gemini"
	"github.com/interera/interera/pkg/errors"
)

// NewCommand creates the models command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models [model-id]",
		Short: "List the models available from the Gemini API",
		Long: `List the generation models the configured API key can reach.

Without arguments, lists every base model upstream. With a model id
argument, shows the details of that single model.

Requires a Gemini API key in GEMINI_API_TOKEN (GEMINI_API_KEY and
GOOGLE_API_KEY are accepted as fallbacks).`,
		Example: `  # List all upstream models
  interera models

  # Only models that support image generation
  interera models --action generateContent

  # Inspect a single model
  interera models gemini-2.5-flash-image

  # Machine-readable output
  interera models -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModels(cmd, args, app)
		},
	}

	cmd.Flags().String("action", "", "Only list models supporting this action")
	cmd.Flags().Int("limit", 0, "Maximum number of models to list (0 for all)")

	return cmd
}

// runModels fetches the upstream model list and renders it.
func runModels(cmd *cobra.Command, args []string, app application.Application) error {
	client, err := app.GenAI()
	if err != nil {
		return err
	}

	models, err := client.ListModels(cmd.Context())
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return showModel(cmd, app, models, args[0])
	}

	action, err := cmd.Flags().GetString("action")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	if action != "" {
		models = filterByAction(models, action)
	}
	if limit > 0 && len(models) > limit {
		models = models[:limit]
	}

	return listModels(cmd, app, models, client.Model())
}

// listModels prints the model listing in the configured output format.
func listModels(cmd *cobra.Command, app application.Application, models []gemini.Model, defaultModel string) error {
	switch app.OutputFormat() {
	case "json":
		return printJSON(cmd, modelList{Total: len(models), DefaultModel: defaultModel, Models: models})
	case "yaml":
		return printYAML(cmd, modelList{Total: len(models), DefaultModel: defaultModel, Models: models})
	default:
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tINPUT TOKENS\tOUTPUT TOKENS\tACTIONS")
		for _, m := range models {
			id := m.ID
			if id == defaultModel {
				id += " (default)"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				id, m.Name, m.InputTokenLimit, m.OutputTokenLimit, strings.Join(m.Actions, ","))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d models\n", len(models))
		return nil
	}
}

// showModel prints a single model's details.
func showModel(cmd *cobra.Command, app application.Application, models []gemini.Model, id string) error {
	for _, m := range models {
		if m.ID != id {
			continue
		}
		switch app.OutputFormat() {
		case "json":
			return printJSON(cmd, m)
		case "yaml":
			return printYAML(cmd, m)
		default:
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "ID:\t%s\n", m.ID)
			fmt.Fprintf(w, "Name:\t%s\n", m.Name)
			if m.Description != "" {
				fmt.Fprintf(w, "Description:\t%s\n", m.Description)
			}
			fmt.Fprintf(w, "Input tokens:\t%d\n", m.InputTokenLimit)
			fmt.Fprintf(w, "Output tokens:\t%d\n", m.OutputTokenLimit)
			fmt.Fprintf(w, "Actions:\t%s\n", strings.Join(m.Actions, ", "))
			return w.Flush()
		}
	}
	return errors.NewNotFoundError("model", id)
}

// filterByAction keeps models that advertise the given supported action.
func filterByAction(models []gemini.Model, action string) []gemini.Model {
	filtered := make([]gemini.Model, 0, len(models))
	for _, m := range models {
		for _, a := range m.Actions {
			if strings.EqualFold(a, action) {
				filtered = append(filtered, m)
				break
			}
		}
	}
	return filtered
}

// modelList is the machine-readable shape for the model listing.
type modelList struct {
	Total        int            `json:"total" yaml:"total"`
	DefaultModel string         `json:"default_model" yaml:"default_model"`
	Models       []gemini.Model `json:"models" yaml:"models"`
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
