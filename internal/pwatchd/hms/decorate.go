package hms

import (
	"github.com/printwatch/printwatch/api/types/v1alpha1"
)

// ToAPI converts decoded errors to their wire representation, filling
// in the presentation class, catalog description and wiki link for the
// given device model.
func ToAPI(errs []Error, deviceModel string) []v1alpha1.HMSError {
	if len(errs) == 0 {
		return nil
	}

	out := make([]v1alpha1.HMSError, 0, len(errs))
	for _, e := range errs {
		class := e.Severity.Class()
		out = append(out, v1alpha1.HMSError{
			Code:          e.Code.String(),
			Attr:          e.Code.Attr,
			Module:        e.Module,
			Severity:      int(e.Severity),
			SeverityLabel: class.Label,
			Color:         class.Color,
			Icon:          class.Icon,
			Description:   e.Description(),
			WikiURL:       e.WikiURL(deviceModel),
		})
	}
	return out
}
