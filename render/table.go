package render

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	forexScanner "github.com/malusev998/forex-scanner"
)

// Placeholder is rendered in place of a bid or ask the provider did
// not return.
const Placeholder = "—"

var headers = []string{"Pair", "Rate", "Bid", "Ask", "Last Refreshed"}

// Table renders quotes as an aligned text table. Every column is left
// justified and padded to the widest of its header and values. Rate,
// bid and ask are grouped by thousands with six fractional digits.
func Table(quotes []forexScanner.Quote) string {
	rows := make([][]string, 0, len(quotes))

	for _, quote := range quotes {
		rows = append(rows, []string{
			quote.Pair,
			Money(quote.Rate),
			optionalMoney(quote.Bid),
			optionalMoney(quote.Ask),
			quote.LastRefreshed,
		})
	}

	widths := make([]int, len(headers))

	for i, header := range headers {
		widths[i] = utf8.RuneCountInString(header)
	}

	for _, row := range rows {
		for i, value := range row {
			if length := utf8.RuneCountInString(value); length > widths[i] {
				widths[i] = length
			}
		}
	}

	separators := make([]string, len(widths))

	for i, width := range widths {
		separators[i] = strings.Repeat("-", width)
	}

	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, formatRow(headers, widths))
	lines = append(lines, strings.Join(separators, "-+-"))

	for _, row := range rows {
		lines = append(lines, formatRow(row, widths))
	}

	return strings.Join(lines, "\n")
}

// Money formats a decimal with thousands separators and exactly six
// fractional digits.
func Money(value decimal.Decimal) string {
	fixed := value.StringFixed(6)
	negative := strings.HasPrefix(fixed, "-")

	if negative {
		fixed = fixed[1:]
	}

	dot := strings.Index(fixed, ".")
	grouped := groupThousands(fixed[:dot]) + fixed[dot:]

	if negative {
		return "-" + grouped
	}

	return grouped
}

func optionalMoney(value decimal.NullDecimal) string {
	if !value.Valid {
		return Placeholder
	}

	return Money(value.Decimal)
}

func formatRow(values []string, widths []int) string {
	padded := make([]string, len(values))

	for i, value := range values {
		padded[i] = value + strings.Repeat(" ", widths[i]-utf8.RuneCountInString(value))
	}

	return strings.Join(padded, " | ")
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var builder strings.Builder

	head := len(digits) % 3

	if head > 0 {
		builder.WriteString(digits[:head])
	}

	for i := head; i < len(digits); i += 3 {
		if builder.Len() > 0 {
			builder.WriteRune(',')
		}

		builder.WriteString(digits[i : i+3])
	}

	return builder.String()
}
