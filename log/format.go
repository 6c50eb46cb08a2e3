package log

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

const (
	kib = 1024
	mib = 1024 * kib
	gib = 1024 * mib
)

// FormatBytes renders a byte count with a binary unit, e.g. "1.50 GB"
func FormatBytes(n int64) string {
	switch {
	case n >= gib:
		return fmt.Sprintf("%.2f GB", float64(n)/gib)
	case n >= mib:
		return fmt.Sprintf("%.2f MB", float64(n)/mib)
	case n >= kib:
		return fmt.Sprintf("%.2f KB", float64(n)/kib)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// FormatCount renders an integer with thousands separators, e.g. "12,345"
func FormatCount(n int64) string {
	return printer.Sprintf("%d", n)
}
