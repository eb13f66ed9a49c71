package objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Dell Inc.", "dell-inc"},
		{"collapses repeated separators", "foo   bar", "foo-bar"},
		{"keeps underscores and hyphens", "foo_bar-baz", "foo_bar-baz"},
		{"trims leading and trailing separators", "  -foo-  ", "foo"},
		{"empty input falls back to n-a", "", "n-a"},
		{"all punctuation falls back to n-a", "***", "n-a"},
		{"digits pass through", "rack42", "rack42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSlug(tt.in))
		})
	}
}
