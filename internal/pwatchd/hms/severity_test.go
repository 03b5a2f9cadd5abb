package hms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityClass(t *testing.T) {
	tests := []struct {
		name     string
		severity Severity
		want     Class
	}{
		{
			name:     "fatal",
			severity: SeverityFatal,
			want:     Class{Label: "Fatal", Color: "red", Icon: "alert-octagon"},
		},
		{
			name:     "serious",
			severity: SeveritySerious,
			want:     Class{Label: "Serious", Color: "orange", Icon: "alert-triangle"},
		},
		{
			name:     "common",
			severity: SeverityCommon,
			want:     Class{Label: "Common", Color: "yellow", Icon: "alert-circle"},
		},
		{
			name:     "info",
			severity: SeverityInfo,
			want:     Class{Label: "Info", Color: "blue", Icon: "info-circle"},
		},
		{
			name:     "zero_defaults_to_info",
			severity: 0,
			want:     Class{Label: "Info", Color: "blue", Icon: "info-circle"},
		},
		{
			name:     "out_of_range_defaults_to_info",
			severity: 99,
			want:     Class{Label: "Info", Color: "blue", Icon: "info-circle"},
		},
		{
			name:     "negative_defaults_to_info",
			severity: -1,
			want:     Class{Label: "Info", Color: "blue", Icon: "info-circle"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.severity.Class())
		})
	}
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "fatal", SeverityFatal.String())
	assert.Equal(t, "serious", SeveritySerious.String())
	assert.Equal(t, "common", SeverityCommon.String())
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "info", Severity(7).String())
}

func TestSeverityBlocking(t *testing.T) {
	assert.True(t, SeverityFatal.Blocking())
	assert.True(t, SeveritySerious.Blocking())
	assert.False(t, SeverityCommon.Blocking())
	assert.False(t, SeverityInfo.Blocking())
	assert.False(t, Severity(0).Blocking())
}
