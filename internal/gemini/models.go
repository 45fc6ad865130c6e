package gemini

import (
	"context"
	"sort"
	"strings"

	"google.golang.org/genai"

	"github.com/interera/interera/pkg/constants"
	"github.com/interera/interera/pkg/errors"
)

// Model describes a model available through the Gemini API.
type Model struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	InputTokenLimit  int32    `json:"input_token_limit,omitempty"`
	OutputTokenLimit int32    `json:"output_token_limit,omitempty"`
	Actions          []string `json:"actions,omitempty"`
}

// ListModels retrieves all base models available to the configured API key,
// following pagination, sorted by id.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	client, err := c.getOrCreateClient(ctx)
	if err != nil {
		return nil, err
	}

	var models []Model
	pageToken := ""

	for {
		config := &genai.ListModelsConfig{
			QueryBase: genai.Ptr(true),
			PageSize:  constants.DefaultPageSize,
		}
		if pageToken != "" {
			config.PageToken = pageToken
		}

		page, err := client.Models.List(ctx, config)
		if err != nil {
			return nil, errors.NewUpstreamError(constants.ProviderID, "list-models", "listing models failed", err)
		}

		for _, m := range page.Items {
			models = append(models, convertModel(m))
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// modelID extracts the short model id from a fully qualified resource name,
// e.g. "models/gemini-2.5-flash-image" or
// "projects/P/locations/L/models/MODEL".
func modelID(name string) string {
	if strings.Contains(name, "/models/") {
		parts := strings.Split(name, "/models/")
		if len(parts) > 1 {
			return parts[1]
		}
	}
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

func convertModel(m *genai.Model) Model {
	id := modelID(m.Name)

	name := m.DisplayName
	if name == "" {
		name = id
	}

	return Model{
		ID:               id,
		Name:             name,
		Description:      m.Description,
		InputTokenLimit:  m.InputTokenLimit,
		OutputTokenLimit: m.OutputTokenLimit,
		Actions:          m.SupportedActions,
	}
}
