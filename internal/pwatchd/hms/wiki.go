package hms

import (
	"fmt"
	"strings"
)

const wikiBase = "https://wiki.bambulab.com/en"

// WikiURL builds the troubleshooting page URL for a code. The wiki
// splits HMS documentation by series: H2-family printers have their own
// tree, everything else is documented under the X1 tree. The series is
// chosen by a case-insensitive substring match on the device model.
func WikiURL(deviceModel string, c Code) string {
	series := "x1"
	if strings.Contains(strings.ToLower(deviceModel), "h2") {
		series = "h2"
	}
	return fmt.Sprintf("%s/%s/troubleshooting/hmscode/%s", wikiBase, series, c)
}
