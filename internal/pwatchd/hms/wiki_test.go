package hms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWikiURL(t *testing.T) {
	code := Code{Attr: 0x03000D00, Code: 0x00010004}

	tests := []struct {
		name  string
		model string
		want  string
	}{
		{
			name:  "x1_carbon",
			model: "X1 Carbon",
			want:  "https://wiki.bambulab.com/en/x1/troubleshooting/hmscode/0300_0D00_0001_0004",
		},
		{
			name:  "h2d",
			model: "H2D",
			want:  "https://wiki.bambulab.com/en/h2/troubleshooting/hmscode/0300_0D00_0001_0004",
		},
		{
			name:  "lowercase_h2",
			model: "h2s",
			want:  "https://wiki.bambulab.com/en/h2/troubleshooting/hmscode/0300_0D00_0001_0004",
		},
		{
			name:  "h2_substring_mid_model",
			model: "Bambu H2D Laser",
			want:  "https://wiki.bambulab.com/en/h2/troubleshooting/hmscode/0300_0D00_0001_0004",
		},
		{
			name:  "p1p_falls_back_to_x1",
			model: "P1P",
			want:  "https://wiki.bambulab.com/en/x1/troubleshooting/hmscode/0300_0D00_0001_0004",
		},
		{
			name:  "empty_model_falls_back_to_x1",
			model: "",
			want:  "https://wiki.bambulab.com/en/x1/troubleshooting/hmscode/0300_0D00_0001_0004",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WikiURL(tt.model, code))
		})
	}
}
