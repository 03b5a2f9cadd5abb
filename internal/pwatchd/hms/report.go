package hms

// ReportEntry is one element of the "hms" array in a printer report
// payload.
type ReportEntry struct {
	Attr uint32 `json:"attr"`
	Code uint32 `json:"code"`
}

// Error is a decoded HMS error as tracked per printer.
type Error struct {
	Code     Code
	Module   int
	Severity Severity
}

// Description returns the catalog text for the error.
func (e Error) Description() string {
	return Describe(e.Code)
}

// WikiURL returns the troubleshooting page for the error on the given
// device model.
func (e Error) WikiURL(deviceModel string) string {
	return WikiURL(deviceModel, e.Code)
}

// FromReport decodes the hms array of a report payload. Entries whose
// code word carries no usable severity are treated as Common, matching
// how printers report legacy codes.
func FromReport(entries []ReportEntry) []Error {
	if len(entries) == 0 {
		return nil
	}

	errs := make([]Error, 0, len(entries))
	for _, entry := range entries {
		c := Code{Attr: entry.Attr, Code: entry.Code}
		sev := c.Severity()
		if sev < SeverityFatal || sev > SeverityInfo {
			sev = SeverityCommon
		}
		errs = append(errs, Error{
			Code:     c,
			Module:   c.Module(),
			Severity: sev,
		})
	}
	return errs
}
