package common

import (
	"fmt"
	"strings"

	"ad-token-ledger/internal/models"
	"ad-token-ledger/internal/pricing"
)

const (
	// Default separator widths
	DefaultWidth = 80
	WideWidth    = 100
)

// PrintSeparator prints a separator line with the specified character and width
func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintSeparatorNewline prints a separator with a newline before it
func PrintSeparatorNewline(char string, width int) {
	fmt.Println("\n" + strings.Repeat(char, width))
}

// PrintHeader prints a formatted header with title and separators
func PrintHeader(title string, width int) {
	PrintSeparatorNewline("=", width)
	fmt.Println(title)
	PrintSeparator("=", width)
}

// PrintFooter prints a formatted footer with message and separators
func PrintFooter(message string, width int) {
	PrintSeparatorNewline("=", width)
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// PrintBoxSeparator prints a box-drawing separator line (for sub-sections)
func PrintBoxSeparator(width int) {
	fmt.Println("├" + strings.Repeat("─", width))
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// BoxDetailPrefix returns the prefix for detail lines under list items
func BoxDetailPrefix(isLast bool) string {
	if isLast {
		return "   "
	}
	return "│  "
}

// PrintBreakdown prints the line items of a token spend calculation
func PrintBreakdown(calc *models.TokenSpendCalculation) {
	if len(calc.Breakdown) == 0 {
		fmt.Println("└  (no billable items)")
	}
	for i, item := range calc.Breakdown {
		isLast := i == len(calc.Breakdown)-1
		fmt.Printf("%s%-20s %12s tokens  %s\n", BoxPrefix(isLast), item.Label, pricing.FormatTokens(item.Tokens), item.Description)
	}
	fmt.Printf("   %-20s %12s tokens\n", "Total", pricing.FormatTokens(calc.TotalTokens))
	if calc.FreeCreativesApplied > 0 {
		fmt.Printf("   %d free creative assets applied\n", calc.FreeCreativesApplied)
	}
}

// PrintWalletSummary prints a wallet summary as a box-drawn list
func PrintWalletSummary(summary *models.WalletSummary) {
	lines := []string{
		fmt.Sprintf("Plan:               %s (%s)", summary.PlanName, summary.Status),
		fmt.Sprintf("Total tokens:       %s", pricing.FormatTokens(summary.TotalTokens)),
		fmt.Sprintf("  Media:            %s", pricing.FormatTokens(summary.MediaTokens)),
		fmt.Sprintf("  Creative:         %s", pricing.FormatTokens(summary.CreativeTokens)),
		fmt.Sprintf("Used this cycle:    %s", pricing.FormatTokens(summary.TokensUsedThisCycle)),
		fmt.Sprintf("Remaining in cycle: %s", pricing.FormatTokens(summary.TokensRemainingThisCycle)),
		fmt.Sprintf("Free creatives:     %d remaining", summary.FreeCreativesRemaining),
		fmt.Sprintf("Next billing date:  %s", summary.NextBillingDate.Format("2006-01-02")),
	}
	for i, line := range lines {
		fmt.Println(BoxPrefix(i == len(lines)-1) + line)
	}
}
