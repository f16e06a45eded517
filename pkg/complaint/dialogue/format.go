package dialogue

import (
	"fmt"
	"strings"
	"time"

	"cybot-be/pkg/ticketing"
)

const displayTimeLayout = "2006-01-02 15:04:05"

var createdAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// formatCreatedAt renders an ISO-8601 timestamp as "YYYY-MM-DD HH:MM:SS"
// in its own offset. Anything unparseable is returned unchanged.
func formatCreatedAt(raw string) string {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(displayTimeLayout)
		}
	}
	return raw
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// FormatComplaint renders a stored complaint as markdown lines.
func FormatComplaint(c ticketing.Complaint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Complaint ID**: %s\n", orNA(c.ID()))
	fmt.Fprintf(&b, "**Name**: %s\n", orNA(c.Name))
	fmt.Fprintf(&b, "**Phone**: %s\n", orNA(c.PhoneNumber))
	fmt.Fprintf(&b, "**Email**: %s\n", orNA(c.Email))
	fmt.Fprintf(&b, "**Details**: %s\n", orNA(c.ComplaintDetails))
	fmt.Fprintf(&b, "**Created At**: %s", formatCreatedAt(c.CreatedAt))
	return b.String()
}
