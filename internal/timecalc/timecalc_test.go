package timecalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ponto-app/registro/internal/models"
)

func TestToMinutes(t *testing.T) {
	min, err := ToMinutes("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, min)

	min, err = ToMinutes("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, min)

	for _, bad := range []string{"", "9:00", "09:0", "ab:cd", "09-00", "09:00:00"} {
		_, err := ToMinutes(bad)
		assert.ErrorIs(t, err, ErrInvalidTimeValue, "input %q", bad)
	}
}

func TestPairMinutes(t *testing.T) {
	tests := []struct {
		name string
		pair models.Pair
		want int
	}{
		{"regular", models.Pair{In: "09:00", Out: "12:00"}, 180},
		{"midnight crossing", models.Pair{In: "23:00", Out: "01:00"}, 120},
		{"zero length", models.Pair{In: "08:00", Out: "08:00"}, 0},
		{"unparsable in", models.Pair{In: "late", Out: "12:00"}, 0},
		{"unparsable out", models.Pair{In: "09:00", Out: ""}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PairMinutes(tt.pair))
		})
	}
}

func TestTotalMinutes(t *testing.T) {
	pairs := []models.Pair{
		{In: "09:00", Out: "12:00"},
		{In: "13:00", Out: "17:30"},
		{In: "xx", Out: "yy"},
	}
	assert.Equal(t, 450, TotalMinutes(pairs))
	assert.Equal(t, 0, TotalMinutes(nil))
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "7:30", FormatMinutes(450))
	assert.Equal(t, "0:05", FormatMinutes(5))
}
