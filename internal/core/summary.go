package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Share    decimal.Decimal `json:"share"` // percent of the breakdown total, one decimal
}

// MonthOverview is the summary shown next to the expense table.
type MonthOverview struct {
	Month      string           `json:"month"`
	Total      decimal.Decimal  `json:"total"`    // month total, ignores category and search
	Lifetime   decimal.Decimal  `json:"lifetime"` // every stored expense
	Count      int              `json:"count"`    // visible expenses
	ByCategory []CategoryAmount `json:"byCategory"`
}

// TotalOverall sums every amount regardless of month or category.
func TotalOverall(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.amount)
	}
	return total
}

// TotalForMonth sums the amounts whose date has month as prefix. Category
// and search filters do not apply.
func TotalForMonth(expenses []Expense, month string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if MatchesMonth(e, month) {
			total = total.Add(e.amount)
		}
	}
	return total
}

// CategoryBreakdown groups amounts by category, drops non-positive groups
// and sorts by subtotal, largest first. Equal subtotals keep the order in
// which their category first appears in expenses.
func CategoryBreakdown(expenses []Expense) []CategoryAmount {
	sums := make(map[Category]decimal.Decimal)
	var order []Category
	for _, e := range expenses {
		cur, seen := sums[e.category]
		if !seen {
			order = append(order, e.category)
		}
		sums[e.category] = cur.Add(e.amount)
	}

	out := make([]CategoryAmount, 0, len(order))
	total := decimal.Zero
	for _, c := range order {
		amount := sums[c]
		if amount.Sign() <= 0 {
			continue
		}
		out = append(out, CategoryAmount{Category: c, Amount: amount})
		total = total.Add(amount)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})

	for i := range out {
		out[i].Share = out[i].Amount.Mul(hundred).Div(total).Round(1)
	}
	return out
}

// Summarize computes the overview for a filter. The month and lifetime
// totals come from all expenses; the count and the breakdown come from the
// filtered subset, as displayed.
func Summarize(all []Expense, f FilterState) MonthOverview {
	visible := Filter(all, f)
	return MonthOverview{
		Month:      f.Month,
		Total:      TotalForMonth(all, f.Month),
		Lifetime:   TotalOverall(all),
		Count:      len(visible),
		ByCategory: CategoryBreakdown(visible),
	}
}
