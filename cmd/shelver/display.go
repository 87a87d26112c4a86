package main

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shelver/internal/records"
)

var titleCaser = cases.Title(language.Und)

// displayLabel renders an action or status identifier for humans:
// "moving_attachment" becomes "Moving Attachment".
func displayLabel(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}

func statusColor(status records.Status) string {
	switch status {
	case records.StatusCompleted:
		return ansiGreen
	case records.StatusBypassed:
		return ansiYellow
	case records.StatusError:
		return ansiRed
	default:
		return ""
	}
}
