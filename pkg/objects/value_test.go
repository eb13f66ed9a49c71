package objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueIsEmpty(t *testing.T) {
	ref := NewEntity(ClassManufacturer)
	ref.NBID = 5

	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"empty string", StringValue(""), true},
		{"non-empty string", StringValue("dell"), false},
		{"zero int", IntValue(0), true},
		{"non-zero int", IntValue(3), false},
		{"bool false is never empty", BoolValue(false), false},
		{"bool true is never empty", BoolValue(true), false},
		{"nil reference", RefValue(nil), true},
		{"set reference", RefValue(ref), false},
		{"empty reference list", RefListValue(nil), true},
		{"non-empty reference list", RefListValue([]*Entity{ref}), false},
		{"empty custom fields", CustomFieldsValue(nil), true},
		{"non-empty custom fields", CustomFieldsValue(map[string]any{"a": 1}), false},
		{"empty string list", StringListValue(nil), true},
		{"non-empty string list", StringListValue([]string{"a"}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.IsEmpty())
		})
	}
}

func TestValueNBValue(t *testing.T) {
	synced := NewEntity(ClassManufacturer)
	synced.NBID = 42

	unsynced := NewEntity(ClassManufacturer)

	t.Run("string kinds render the raw string", func(t *testing.T) {
		assert.Equal(t, "foo", StringValue("foo").NBValue())
		assert.Equal(t, "bar", SlugValue("bar").NBValue())
		assert.Equal(t, "active", EnumValue("active").NBValue())
	})

	t.Run("synced reference renders its id", func(t *testing.T) {
		assert.Equal(t, 42, RefValue(synced).NBValue())
	})

	t.Run("unsynced reference renders nil", func(t *testing.T) {
		assert.Nil(t, RefValue(unsynced).NBValue())
		assert.Nil(t, RefValue(nil).NBValue())
	})

	t.Run("reference list drops unsynced members", func(t *testing.T) {
		got := RefListValue([]*Entity{synced, unsynced, nil}).NBValue()
		require.Equal(t, []int{42}, got)
	})

	t.Run("custom fields render the map verbatim", func(t *testing.T) {
		m := map[string]any{"rack_unit": 2}
		assert.Equal(t, m, CustomFieldsValue(m).NBValue())
	})
}

func TestValueUnresolved(t *testing.T) {
	synced := NewEntity(ClassManufacturer)
	synced.NBID = 1
	unsynced := NewEntity(ClassManufacturer)

	assert.False(t, RefValue(synced).Unresolved())
	assert.True(t, RefValue(unsynced).Unresolved())
	assert.False(t, RefValue(nil).Unresolved())

	assert.True(t, RefListValue([]*Entity{synced, unsynced}).Unresolved())
	assert.False(t, RefListValue([]*Entity{synced}).Unresolved())
	assert.False(t, StringValue("x").Unresolved())
}
