package hms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromReport(t *testing.T) {
	entries := []ReportEntry{
		{Attr: 0x07000100, Code: 0x00010001},
		{Attr: 0x0C000100, Code: 0x00020002},
	}

	errs := FromReport(entries)
	require.Len(t, errs, 2)

	assert.Equal(t, "0700_0100_0001_0001", errs[0].Code.String())
	assert.Equal(t, 0x07, errs[0].Module)
	assert.Equal(t, SeverityFatal, errs[0].Severity)

	assert.Equal(t, 0x0C, errs[1].Module)
	assert.Equal(t, SeveritySerious, errs[1].Severity)
}

func TestFromReportEmpty(t *testing.T) {
	assert.Nil(t, FromReport(nil))
	assert.Nil(t, FromReport([]ReportEntry{}))
}

func TestFromReportMissingSeverityTreatedAsCommon(t *testing.T) {
	errs := FromReport([]ReportEntry{{Attr: 0x03000100, Code: 0x00000007}})
	require.Len(t, errs, 1)
	assert.Equal(t, SeverityCommon, errs[0].Severity)
}

func TestFromReportMasksSeverityFlagBits(t *testing.T) {
	// 0x0013 in the high half is Common (3) with a flag bit set, not
	// severity 19
	errs := FromReport([]ReportEntry{{Attr: 0x03000100, Code: 0x00130001}})
	require.Len(t, errs, 1)
	assert.Equal(t, SeverityCommon, errs[0].Severity)
	assert.Equal(t, "Common", errs[0].Severity.Class().Label)
}

func TestFromReportOutOfRangeSeverityTreatedAsCommon(t *testing.T) {
	errs := FromReport([]ReportEntry{{Attr: 0x03000100, Code: 0x000F0001}})
	require.Len(t, errs, 1)
	assert.Equal(t, SeverityCommon, errs[0].Severity)
}

func TestErrorHelpers(t *testing.T) {
	e := FromReport([]ReportEntry{{Attr: 0x03000100, Code: 0x00010001}})[0]
	assert.Contains(t, e.Description(), "heatbed")
	assert.Equal(t,
		"https://wiki.bambulab.com/en/x1/troubleshooting/hmscode/0300_0100_0001_0001",
		e.WikiURL("P1S"),
	)
}
