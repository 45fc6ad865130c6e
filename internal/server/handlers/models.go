package handlers

import (
	"context"
	"net/http"

	"github.com/interera/interera/internal/gemini"
	"github.com/interera/interera/internal/server/filter"
	"github.com/interera/interera/internal/server/response"
	"github.com/interera/interera/pkg/constants"
	"github.com/interera/interera/pkg/errors"
)

// HandleListModels handles GET /api/v1/models.
// @Summary List models
// @Description List the Gemini models visible to the configured API key
// @Tags models
// @Produce json
// @Param id query string false "Filter by exact model ID"
// @Param name query string false "Filter by exact model name (case-insensitive)"
// @Param name_contains query string false "Filter by partial name or ID match"
// @Param action query string false "Filter by supported action (e.g. generateContent)"
// @Param min_input_tokens query integer false "Minimum input token limit"
// @Param min_output_tokens query integer false "Minimum output token limit"
// @Param sort query string false "Sort field (id, name, input_tokens, output_tokens)"
// @Param order query string false "Sort order (asc, desc)"
// @Param limit query integer false "Maximum number of results (default: 100, max: 1000)"
// @Param offset query integer false "Result offset for pagination"
// @Success 200 {object} response.Response{data=object}
// @Failure 502 {object} response.Response{error=response.Error}
// @Router /api/v1/models [get].
func (h *Handlers) HandleListModels(w http.ResponseWriter, r *http.Request) {
	// Check cache
	cacheKey := "models:" + r.URL.RawQuery
	if cached, found := h.cache.Get(cacheKey); found {
		response.OK(w, cached)
		return
	}

	all, err := h.listModels(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	// Parse filters
	f := filter.ParseModelFilter(r)

	filtered := f.Apply(all)
	total := len(filtered)
	page := f.Page(filtered)

	// Build response
	result := map[string]any{
		"models":        page,
		"default_model": h.models.Model(),
		"pagination": map[string]any{
			"total":  total,
			"limit":  f.Limit,
			"offset": f.Offset,
			"count":  len(page),
		},
	}

	// Cache result
	h.cache.Set(cacheKey, result)

	response.OK(w, result)
}

// HandleGetModel handles GET /api/v1/models/{id}.
// @Summary Get model by ID
// @Description Retrieve detailed information about a specific model
// @Tags models
// @Produce json
// @Param id path string true "Model ID"
// @Success 200 {object} response.Response{data=gemini.Model}
// @Failure 404 {object} response.Response{error=response.Error}
// @Failure 502 {object} response.Response{error=response.Error}
// @Router /api/v1/models/{id} [get].
func (h *Handlers) HandleGetModel(w http.ResponseWriter, r *http.Request, modelID string) {
	// Check cache
	cacheKey := "model:" + modelID
	if cached, found := h.cache.Get(cacheKey); found {
		response.OK(w, cached)
		return
	}

	all, err := h.listModels(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	for _, model := range all {
		if model.ID == modelID {
			h.cache.Set(cacheKey, model)
			response.OK(w, model)
			return
		}
	}

	response.ErrorFromType(w, errors.NewNotFoundError("model", modelID))
}

// listModels returns the upstream model list, shielding the Gemini API
// behind the response cache.
func (h *Handlers) listModels(ctx context.Context) ([]gemini.Model, error) {
	cached, err := h.cache.Remember("models:upstream", constants.CacheTTL, func() (any, error) {
		return h.models.ListModels(ctx)
	})
	if err != nil {
		return nil, err
	}
	models, ok := cached.([]gemini.Model)
	if !ok {
		return nil, errors.NewUpstreamError(constants.ProviderID, "list-models",
			"unexpected cache entry type", nil)
	}
	return models, nil
}
