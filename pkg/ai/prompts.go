package ai

import (
	"fmt"
	"strings"
)

const CartDemandSystemPrompt = `You are a merchandising analyst for an e-commerce storefront.
You receive the products that currently sit in the most shopping carts.
Provide insights on:
- Which products shoppers are most interested in
- Pricing or discount opportunities for high-interest items
- Whether review sentiment supports or undermines the demand
- Suggested product pairings to promote together
Keep responses to 3 short paragraphs in plain language.`

// formatCartDemandPrompt renders the demand rows as a ranked list.
func formatCartDemandPrompt(rows []CartDemandRow) string {
	var b strings.Builder
	b.WriteString("Products ranked by number of carts holding them:\n")
	for i, r := range rows {
		title := r.Title
		if title == "" {
			title = "(no longer in catalog)"
		}
		fmt.Fprintf(&b, "%d. %s [%s] - in %d cart(s)", i+1, title, r.ItemID, r.Carts)
		if r.Price > 0 {
			fmt.Fprintf(&b, ", price %.2f %s", r.Price, r.Currency)
		}
		if r.Positive+r.Negative > 0 {
			fmt.Fprintf(&b, ", reviews %d positive / %d negative", r.Positive, r.Negative)
		}
		b.WriteString("\n")
	}
	return b.String()
}
