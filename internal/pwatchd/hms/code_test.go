package hms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeString(t *testing.T) {
	tests := []struct {
		name string
		code Code
		want string
	}{
		{
			name: "all_zero",
			code: Code{Attr: 0x00000000, Code: 0x00000000},
			want: "0000_0000_0000_0000",
		},
		{
			name: "all_ones",
			code: Code{Attr: 0xFFFFFFFF, Code: 0xFFFFFFFF},
			want: "FFFF_FFFF_FFFF_FFFF",
		},
		{
			name: "distinct_bytes",
			code: Code{Attr: 0x0102030A, Code: 0x0B0C0D0E},
			want: "0102_030A_0B0C_0D0E",
		},
		{
			name: "ams_code",
			code: Code{Attr: 0x07000100, Code: 0x00010001},
			want: "0700_0100_0001_0001",
		},
		{
			name: "zero_padding_per_group",
			code: Code{Attr: 0x00010002, Code: 0x00030004},
			want: "0001_0002_0003_0004",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.String())
		})
	}
}

func TestCodeFields(t *testing.T) {
	c := Code{Attr: 0x07008100, Code: 0x00020003}
	assert.Equal(t, 0x07, c.Module())
	assert.Equal(t, SeveritySerious, c.Severity())
}

func TestCodeSeverityIgnoresFlagBits(t *testing.T) {
	// Some codes carry flag bits above the severity nibble in the high
	// half of the code word; only the nibble is the severity.
	c := Code{Attr: 0x03000100, Code: 0x00130001}
	assert.Equal(t, SeverityCommon, c.Severity())
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Code
		wantErr bool
	}{
		{
			name:  "underscore_separated",
			input: "0300_0D00_0001_0004",
			want:  Code{Attr: 0x03000D00, Code: 0x00010004},
		},
		{
			name:  "hyphen_separated",
			input: "0300-0D00-0001-0004",
			want:  Code{Attr: 0x03000D00, Code: 0x00010004},
		},
		{
			name:  "lowercase",
			input: "0c00_0100_0001_0001",
			want:  Code{Attr: 0x0C000100, Code: 0x00010001},
		},
		{
			name:  "no_separators",
			input: "0700010000010001",
			want:  Code{Attr: 0x07000100, Code: 0x00010001},
		},
		{
			name:    "too_short",
			input:   "0300_0D00",
			wantErr: true,
		},
		{
			name:    "not_hex",
			input:   "GGGG_0000_0000_0000",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCodeRoundTrip(t *testing.T) {
	orig := Code{Attr: 0x12002000, Code: 0x00020002}
	parsed, err := ParseCode(orig.String())
	require.NoError(t, err)
	assert.Equal(t, orig, parsed)
}
