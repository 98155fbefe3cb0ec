package internal

import (
	"fmt"
	"os"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// GetLocalePrinter returns a localized message printer
func GetLocalePrinter() *message.Printer {
	return message.NewPrinter(getUserLocale())
}

// PrettyPrintInt returns a localized string representation of the input integer
func PrettyPrintInt(input int64) string {
	return GetLocalePrinter().Sprintf("%d", input)
}

// PrettyPrintBytes returns a human readable byte count, e.g. "1.5 kB"
func PrettyPrintBytes(bytes uint64) string {
	const unit = 1024

	if bytes < unit {
		return PrettyPrintInt(int64(bytes)) + " B"
	}

	div, exp := uint64(unit), 0

	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	const suffixes = "kMGTPE"

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), suffixes[exp])
}

func getUserLocale() language.Tag {
	// Get the preferred locale from the environment variables
	locale := os.Getenv("LC_ALL")

	if locale == "" {
		locale = os.Getenv("LC_MESSAGES")
	}

	if locale == "" {
		locale = os.Getenv("LANG")
	}

	if locale == "" {
		locale = "en_US.UTF-8"
	}

	tag, err := language.Parse(locale)

	if err != nil {
		return language.English
	}

	return tag
}
