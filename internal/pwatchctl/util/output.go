// Package util provides shared utilities for the CLI
package util

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"
)

// PrintJSON writes a JSON representation of v to w with proper indentation
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NewTabWriter creates a new tabwriter configured for CLI output
func NewTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// FormatDuration formats a duration in a human-friendly way for CLI output
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return "Just now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}

// FormatProperties formats a map of properties as a comma-separated string of key=value pairs
func FormatProperties(props map[string]string) string {
	if len(props) == 0 {
		return ""
	}
	var pairs []string
	for k, v := range props {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

// FormatTemperatures formats sensor readings as name=degrees pairs in
// stable order
func FormatTemperatures(temps map[string]float64) string {
	if len(temps) == 0 {
		return ""
	}
	names := make([]string, 0, len(temps))
	for name := range temps {
		names = append(names, name)
	}
	sort.Strings(names)

	var pairs []string
	for _, name := range names {
		pairs = append(pairs, fmt.Sprintf("%s=%.1f°C", name, temps[name]))
	}
	return strings.Join(pairs, " ")
}

// ParseLabels parses key=value pairs into a map
func ParseLabels(labels []string) (map[string]string, error) {
	props := make(map[string]string)
	for _, label := range labels {
		parts := strings.SplitN(label, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid label format %q, use key=value", label)
		}
		props[parts[0]] = parts[1]
	}
	return props, nil
}
