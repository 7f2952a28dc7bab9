package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	header = color.New(color.Bold, color.FgCyan)
	dim    = color.New(color.Faint)
)

func markSuccess() string { return color.GreenString("✓") }
func markFailure() string { return color.RedString("✗") }
func markWarning() string { return color.YellowString("!") }
func markInfo() string    { return color.CyanString("•") }

func printHeader(title string) {
	fmt.Println(header.Sprint(title))
	fmt.Println(dim.Sprint(strings.Repeat("─", len(title))))
}

func printStatus(mark, name, detail string) {
	fmt.Printf("%s %-20s %s\n", mark, name, detail)
}

func printSummary(passed, failed int) {
	fmt.Printf("\n%s\n", summaryLine(passed, failed))
}

func summaryLine(passed, failed int) string {
	parts := []string{color.GreenString("%d passed", passed)}
	if failed > 0 {
		parts = append(parts, color.RedString("%d failed", failed))
	}
	return fmt.Sprintf("%s  %s", dim.Sprintf("[%d checks]", passed+failed), strings.Join(parts, dim.Sprint(", ")))
}
