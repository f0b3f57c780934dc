// Package query implements the filter/sort/paginate grammar of the document
// store: equality and membership parameters, _gte/_lte range bounds, q
// full-text scan, _sort/_order and _page/_limit. All functions are pure and
// compare field values by their string form.
package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ponto-app/registro/internal/models"
)

// Params holds decoded query parameters. A key with a single value is an
// equality test; a key with several values is a membership test. The layout
// matches url.Values so remote and local transports share it unchanged.
type Params map[string][]string

// reserved parameter names never participate in field matching.
var reserved = map[string]struct{}{
	"_sort": {}, "_order": {}, "_page": {}, "_limit": {}, "q": {},
}

// Set replaces the values of key with a single value.
func (p Params) Set(key, value string) { p[key] = []string{value} }

// Get returns the first value of key, or "".
func (p Params) Get(key string) string {
	if vs := p[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Matches reports whether doc satisfies every non-reserved parameter plus the
// optional q full-text scan.
func Matches(doc models.Document, params Params) bool {
	for key, values := range params {
		if _, ok := reserved[key]; ok {
			continue
		}
		if len(values) == 0 {
			continue
		}
		switch {
		case strings.HasSuffix(key, "_gte"):
			field := models.Stringify(doc[strings.TrimSuffix(key, "_gte")])
			if field < values[0] {
				return false
			}
		case strings.HasSuffix(key, "_lte"):
			field := models.Stringify(doc[strings.TrimSuffix(key, "_lte")])
			if field > values[0] {
				return false
			}
		case len(values) > 1:
			if !contains(values, models.Stringify(doc[key])) {
				return false
			}
		default:
			if models.Stringify(doc[key]) != values[0] {
				return false
			}
		}
	}
	if q := params.Get("q"); q != "" {
		needle := strings.ToLower(q)
		found := false
		for _, v := range doc {
			if v == nil {
				continue
			}
			if strings.Contains(strings.ToLower(models.Stringify(v)), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

// Filter returns the documents matching params, preserving insertion order.
func Filter(docs []models.Document, params Params) []models.Document {
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if Matches(d, params) {
			out = append(out, d)
		}
	}
	return out
}

// Sort stable-sorts a copy of docs by the _sort field, ascending by string
// comparison, reversed when _order is "desc". Without _sort the input slice
// is returned unchanged.
func Sort(docs []models.Document, params Params) []models.Document {
	field := params.Get("_sort")
	if field == "" {
		return docs
	}
	desc := strings.EqualFold(params.Get("_order"), "desc")
	out := make([]models.Document, len(docs))
	copy(out, docs)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := models.Stringify(out[i][field]), models.Stringify(out[j][field])
		if desc {
			return a > b
		}
		return a < b
	})
	return out
}

// Paginate slices docs to the _page/_limit window. _page defaults to 1 and
// _limit to the full length.
func Paginate(docs []models.Document, params Params) []models.Document {
	page := intOr(params.Get("_page"), 1)
	limit := intOr(params.Get("_limit"), len(docs))
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = len(docs)
	}
	start := (page - 1) * limit
	if start >= len(docs) {
		return []models.Document{}
	}
	end := start + limit
	if end > len(docs) {
		end = len(docs)
	}
	return docs[start:end]
}

// Apply runs the full pipeline in its fixed order: filter, sort, paginate.
func Apply(docs []models.Document, params Params) []models.Document {
	return Paginate(Sort(Filter(docs, params), params), params)
}

func intOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n == 0 {
		return def
	}
	return n
}
