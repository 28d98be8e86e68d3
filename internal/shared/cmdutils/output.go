package cmdutils

import "fmt"

const logo = "🏦"

// PrintBanner prints a titled block of text to stdout.
func PrintBanner(title, text string) {
	if text == "" {
		return
	}

	fmt.Printf("\n%s %s\n%s\n\n", logo, title, text)
}

// Check renders a boolean as a status mark.
func Check(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}
