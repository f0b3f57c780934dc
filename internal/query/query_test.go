package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ponto-app/registro/internal/models"
)

func docs(vals ...int) []models.Document {
	out := make([]models.Document, len(vals))
	for i, v := range vals {
		out[i] = models.Document{"a": float64(v)}
	}
	return out
}

func fieldInts(t *testing.T, list []models.Document) []int {
	t.Helper()
	out := make([]int, len(list))
	for i, d := range list {
		out[i] = int(d["a"].(float64))
	}
	return out
}

func TestMatchesEquality(t *testing.T) {
	doc := models.Document{"userId": float64(1), "data": "2025-09-09"}

	assert.True(t, Matches(doc, Params{"userId": {"1"}}))
	assert.True(t, Matches(doc, Params{"userId": {"1"}, "data": {"2025-09-09"}}))
	assert.False(t, Matches(doc, Params{"userId": {"2"}}))
	assert.False(t, Matches(doc, Params{"missing": {"x"}}))
}

func TestMatchesMembership(t *testing.T) {
	doc := models.Document{"id": float64(3)}
	assert.True(t, Matches(doc, Params{"id": {"1", "3"}}))
	assert.False(t, Matches(doc, Params{"id": {"1", "2"}}))
}

func TestMatchesRangeInclusive(t *testing.T) {
	doc := models.Document{"data": "2025-09-09"}

	assert.True(t, Matches(doc, Params{"data_gte": {"2025-09-09"}}))
	assert.True(t, Matches(doc, Params{"data_lte": {"2025-09-09"}}))
	assert.True(t, Matches(doc, Params{"data_gte": {"2025-09-01"}, "data_lte": {"2025-09-30"}}))
	assert.False(t, Matches(doc, Params{"data_gte": {"2025-09-10"}}))
	assert.False(t, Matches(doc, Params{"data_lte": {"2025-09-08"}}))
}

func TestMatchesFullText(t *testing.T) {
	doc := models.Document{"name": "Maria Silva", "role": "reviewer"}

	assert.True(t, Matches(doc, Params{"q": {"silva"}}))
	assert.True(t, Matches(doc, Params{"q": {"REVIEW"}}))
	assert.False(t, Matches(doc, Params{"q": {"joao"}}))
}

func TestSort(t *testing.T) {
	list := docs(1, 3, 2)

	sorted := Sort(list, Params{"_sort": {"a"}})
	assert.Equal(t, []int{1, 2, 3}, fieldInts(t, sorted))

	desc := Sort(list, Params{"_sort": {"a"}, "_order": {"desc"}})
	assert.Equal(t, []int{3, 2, 1}, fieldInts(t, desc))

	// No _sort leaves insertion order untouched.
	assert.Equal(t, []int{1, 3, 2}, fieldInts(t, Sort(list, Params{})))
	// Input slice is never reordered in place.
	assert.Equal(t, []int{1, 3, 2}, fieldInts(t, list))
}

func TestPaginate(t *testing.T) {
	list := docs(1, 2, 3)

	assert.Equal(t, []int{1, 2, 3}, fieldInts(t, Paginate(list, Params{})))
	assert.Equal(t, []int{1}, fieldInts(t, Paginate(list, Params{"_limit": {"1"}})))
	assert.Equal(t, []int{2}, fieldInts(t, Paginate(list, Params{"_page": {"2"}, "_limit": {"1"}})))
	assert.Empty(t, Paginate(list, Params{"_page": {"9"}, "_limit": {"2"}}))
}

func TestApplyOrder(t *testing.T) {
	// filter → sort → paginate: _page=2&_limit=1 on the desc-sorted result
	// of [1,2,3] must yield [2].
	list := docs(1, 2, 3)
	out := Apply(list, Params{"_sort": {"a"}, "_order": {"desc"}, "_page": {"2"}, "_limit": {"1"}})
	assert.Equal(t, []int{2}, fieldInts(t, out))
}

func TestApplyFiltersBeforePaginating(t *testing.T) {
	list := []models.Document{
		{"a": float64(1), "keep": "no"},
		{"a": float64(2), "keep": "yes"},
		{"a": float64(3), "keep": "yes"},
	}
	out := Apply(list, Params{"keep": {"yes"}, "_limit": {"1"}})
	assert.Equal(t, []int{2}, fieldInts(t, out))
}
