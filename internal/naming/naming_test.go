package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnderscoreToCamel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"_", "_"},
		{"__", "__"},
		{"foo", "foo"},
		{"_foo", "Foo"},
		{"_foo_", "Foo_"},
		{"__foo_", "_Foo_"},
		{"foo_bar", "fooBar"},
		{"foo__bar", "foo_Bar"},
		{"Foo_Bar", "FooBar"},
		{"user_id_list", "userIdList"},
		{"foo_1", "foo1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, UnderscoreToCamel(tt.in))
		})
	}
}

func TestUnderscoreToCamel_NoUnderscoreIsIdentity(t *testing.T) {
	for _, s := range []string{"a", "fooBar", "FOO", "x1y2", "ünïcode"} {
		assert.Equal(t, s, UnderscoreToCamel(s))
	}
}

func TestCamelToUnderscore(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"f", "f"},
		{"F", "F"},
		{"foo", "foo"},
		{"fooBar", "foo_bar"},
		{"FooBar", "Foo_bar"},
		{"foo_Bar", "foo__bar"},
		{"foo_bar", "foo_bar"},
		{"userID", "user_i_d"},
		{"foo123", "foo123"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CamelToUnderscore(tt.in))
		})
	}
}

func TestRoundTrips(t *testing.T) {
	assert.Equal(t, "fooBar", UnderscoreToCamel("foo_bar"))
	assert.Equal(t, "foo_bar", CamelToUnderscore("fooBar"))

	assert.Equal(t, "foo_Bar", UnderscoreToCamel("foo__bar"))
	assert.Equal(t, "foo__bar", CamelToUnderscore("foo_Bar"))
}

func TestNotGenerallySymmetric(t *testing.T) {
	// _foo loses its leading underscore and CamelToUnderscore leaves the
	// first character alone, so the original is not recovered.
	assert.Equal(t, "Foo", UnderscoreToCamel("_foo"))
	assert.Equal(t, "Foo", CamelToUnderscore("Foo"))
}
