package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNth(t *testing.T) {
	items := []string{"a", "b"}

	tests := []struct {
		name    string
		index   int
		want    string
		present bool
	}{
		{"first", 0, "a", true},
		{"second", 1, "b", true},
		{"out of range", 2, "", false},
		{"negative", -1, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Nth(items, tt.index).Get()
			assert.Equal(t, tt.present, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.False(t, First[string](nil).Present())
}

func TestMapAndDefault(t *testing.T) {
	upper := Map(Some("http"), strings.ToUpper)
	assert.Equal(t, "HTTP", upper.OrDefault("none"))

	missing := Map(None[string](), strings.ToUpper)
	assert.Equal(t, "none", missing.OrDefault("none"))
}

func TestNonEmpty(t *testing.T) {
	assert.False(t, NonEmpty(Some("")).Present())
	assert.False(t, NonEmpty(None[string]()).Present())
	assert.Equal(t, "10.0.0.1", NonEmpty(Some("10.0.0.1")).OrDefault(""))
}
