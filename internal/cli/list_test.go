package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/netforge-io/netforge/pkg/types"
)

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{
			name:  "nil",
			value: nil,
			want:  "-",
		},
		{
			name:  "empty string",
			value: "",
			want:  "-",
		},
		{
			name:  "string",
			value: "active",
			want:  "active",
		},
		{
			name:  "integral float",
			value: float64(42),
			want:  "42",
		},
		{
			name:  "fractional float",
			value: 2.5,
			want:  "2.5",
		},
		{
			name:  "bool",
			value: true,
			want:  "true",
		},
		{
			name:  "object with display",
			value: map[string]any{"display": "HQ East", "id": float64(3)},
			want:  "HQ East",
		},
		{
			name:  "object with only id",
			value: map[string]any{"id": float64(3)},
			want:  "3",
		},
		{
			name:  "choice field",
			value: map[string]any{"value": "active", "label": "Active"},
			want:  "Active",
		},
		{
			name:  "opaque object",
			value: map[string]any{"x": 1},
			want:  "{...}",
		},
		{
			name:  "list",
			value: []any{"a", "b", "c"},
			want:  "3 items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCell(tt.value))
		})
	}
}

func TestTableColumns(t *testing.T) {
	recs := types.RecordSet{
		{"id": float64(1), "name": "alpha", "custom": "x"},
		{"id": float64(2), "status": "active"},
	}

	// Preferred columns that occur anywhere in the data, in preferred order.
	assert.Equal(t, []string{"id", "name", "status"}, tableColumns(recs))

	// Without any preferred column, the first record's keys are used sorted.
	odd := types.RecordSet{
		{"zeta": 1, "alpha": 2},
	}
	assert.Equal(t, []string{"alpha", "zeta"}, tableColumns(odd))
}
