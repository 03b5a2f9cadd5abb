package v1alpha1

// HMSError represents one decoded Health Management System error
type HMSError struct {
	// Code is the error in wiki notation (AAAA_BBBB_CCCC_DDDD)
	Code string `json:"code"`
	// Attr is the raw attribute word
	Attr uint32 `json:"attr"`
	// Module is the module identifier from the attribute word
	Module int `json:"module"`
	// Severity is the numeric severity (1=fatal .. 4=info)
	Severity int `json:"severity"`
	// SeverityLabel is the presentation label for the severity
	SeverityLabel string `json:"severityLabel"`
	// Color is the presentation color for the severity
	Color string `json:"color"`
	// Icon is the presentation icon identifier for the severity
	Icon string `json:"icon"`
	// Description is the catalog text for the code
	Description string `json:"description"`
	// WikiURL points at the troubleshooting page for the code
	WikiURL string `json:"wikiUrl"`
}
