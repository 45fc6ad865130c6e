// Package filter provides query parameter parsing and filtering for API endpoints.
package filter

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/interera/interera/internal/gemini"
	"github.com/interera/interera/pkg/constants"
)

// ModelFilter contains the filter criteria for the model catalog.
type ModelFilter struct {
	// Basic filters
	ID           string
	Name         string
	NameContains string

	// Capability filter: the model must support this action, e.g.
	// "generateContent".
	Action string

	// Token limit filters
	MinInputTokens  int32
	MinOutputTokens int32

	// Sorting and pagination
	Sort   string // id, name, input_tokens, output_tokens
	Order  string // asc (default), desc
	Limit  int
	Offset int
}

// ParseModelFilter extracts model filter parameters from an HTTP request.
func ParseModelFilter(r *http.Request) ModelFilter {
	q := r.URL.Query()

	f := ModelFilter{
		ID:           q.Get("id"),
		Name:         q.Get("name"),
		NameContains: q.Get("name_contains"),
		Action:       q.Get("action"),
		Sort:         q.Get("sort"),
		Order:        q.Get("order"),
		Limit:        parseIntOrDefault(q.Get("limit"), constants.DefaultPageSize),
		Offset:       parseIntOrDefault(q.Get("offset"), 0),
	}

	if f.Limit < 1 {
		f.Limit = constants.DefaultPageSize
	}
	if f.Limit > constants.MaxPageSize {
		f.Limit = constants.MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	if v := q.Get("min_input_tokens"); v != "" {
		if i, err := strconv.ParseInt(v, 10, 32); err == nil {
			f.MinInputTokens = int32(i)
		}
	}
	if v := q.Get("min_output_tokens"); v != "" {
		if i, err := strconv.ParseInt(v, 10, 32); err == nil {
			f.MinOutputTokens = int32(i)
		}
	}

	return f
}

// Apply filters and sorts a model list. Pagination is left to the caller so
// it can report the pre-pagination total.
func (f ModelFilter) Apply(models []gemini.Model) []gemini.Model {
	var results []gemini.Model

	for _, model := range models {
		if f.matches(model) {
			results = append(results, model)
		}
	}

	if f.Sort != "" {
		f.sortModels(results)
	}

	return results
}

// Page slices a filtered list according to Offset and Limit.
func (f ModelFilter) Page(models []gemini.Model) []gemini.Model {
	total := len(models)
	if f.Offset >= total {
		return []gemini.Model{}
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return models[f.Offset:end]
}

// matches checks if a model satisfies every filter criterion.
func (f ModelFilter) matches(model gemini.Model) bool {
	if f.ID != "" && model.ID != f.ID {
		return false
	}
	if f.Name != "" && !strings.EqualFold(model.Name, f.Name) {
		return false
	}
	if f.NameContains != "" &&
		!strings.Contains(strings.ToLower(model.Name), strings.ToLower(f.NameContains)) &&
		!strings.Contains(strings.ToLower(model.ID), strings.ToLower(f.NameContains)) {
		return false
	}
	if f.Action != "" && !supportsAction(model, f.Action) {
		return false
	}
	if f.MinInputTokens > 0 && model.InputTokenLimit < f.MinInputTokens {
		return false
	}
	if f.MinOutputTokens > 0 && model.OutputTokenLimit < f.MinOutputTokens {
		return false
	}
	return true
}

// sortModels orders models in place by the sort field and order.
func (f ModelFilter) sortModels(models []gemini.Model) {
	desc := strings.EqualFold(f.Order, "desc")

	less := func(i, j int) bool {
		switch f.Sort {
		case "name":
			return strings.ToLower(models[i].Name) < strings.ToLower(models[j].Name)
		case "input_tokens":
			return models[i].InputTokenLimit < models[j].InputTokenLimit
		case "output_tokens":
			return models[i].OutputTokenLimit < models[j].OutputTokenLimit
		default:
			return models[i].ID < models[j].ID
		}
	}

	if desc {
		sort.SliceStable(models, func(i, j int) bool { return less(j, i) })
		return
	}
	sort.SliceStable(models, less)
}

// supportsAction checks if a model lists the given supported action.
func supportsAction(model gemini.Model, action string) bool {
	for _, a := range model.Actions {
		if strings.EqualFold(a, action) {
			return true
		}
	}
	return false
}

// parseIntOrDefault parses an integer or returns default.
func parseIntOrDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return def
}
