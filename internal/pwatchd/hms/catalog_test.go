package hms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	known := Code{Attr: 0x03000100, Code: 0x00010001}
	desc := Describe(known)
	assert.NotEqual(t, UnknownDescription, desc)
	assert.Contains(t, desc, "heatbed")
}

func TestDescribeUnknownCode(t *testing.T) {
	tests := []struct {
		name string
		code Code
	}{
		{name: "zero", code: Code{}},
		{name: "max", code: Code{Attr: 0xFFFFFFFF, Code: 0xFFFFFFFF}},
		{name: "unlisted_module", code: Code{Attr: 0x42000100, Code: 0x00010001}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, UnknownDescription, Describe(tt.code))

			desc, ok := Lookup(tt.code)
			assert.False(t, ok)
			assert.Equal(t, UnknownDescription, desc)
		})
	}
}

func TestCatalogKeysAreWellFormed(t *testing.T) {
	// Every key must round-trip through the formatter, or Describe can
	// never match it.
	for key := range descriptions {
		c, err := ParseCode(key)
		assert.NoError(t, err, key)
		assert.Equal(t, key, c.String(), key)
	}
}
