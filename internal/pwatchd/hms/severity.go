package hms

// Severity is the four-level HMS severity scale. Printers encode it in
// the high half of the code word.
type Severity int

const (
	// SeverityFatal stops the print and requires intervention
	SeverityFatal Severity = 1
	// SeveritySerious degrades the print or the machine
	SeveritySerious Severity = 2
	// SeverityCommon is a recoverable fault
	SeverityCommon Severity = 3
	// SeverityInfo is advisory only
	SeverityInfo Severity = 4
)

// Class describes how a severity is presented: a short label, a color
// name, and an icon identifier for dashboard clients.
type Class struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var severityClasses = map[Severity]Class{
	SeverityFatal:   {Label: "Fatal", Color: "red", Icon: "alert-octagon"},
	SeveritySerious: {Label: "Serious", Color: "orange", Icon: "alert-triangle"},
	SeverityCommon:  {Label: "Common", Color: "yellow", Icon: "alert-circle"},
	SeverityInfo:    {Label: "Info", Color: "blue", Icon: "info-circle"},
}

// Class returns the presentation tuple for the severity. Unrecognized
// values classify as Info.
func (s Severity) Class() Class {
	if c, ok := severityClasses[s]; ok {
		return c
	}
	return severityClasses[SeverityInfo]
}

// String returns the lowercase label, "info" for unrecognized values.
func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeveritySerious:
		return "serious"
	case SeverityCommon:
		return "common"
	default:
		return "info"
	}
}

// Blocking reports whether the severity should halt a print.
func (s Severity) Blocking() bool {
	return s == SeverityFatal || s == SeveritySerious
}
