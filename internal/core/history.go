package core

import "sort"

const (
	KindExpense  RecordKind = "expense"
	KindOdometer RecordKind = "mileage"
	KindLoan     RecordKind = "loan"
)

// DefaultHistoryPageSize is the increment the visible history grows by
// when the caller requests more items.
const DefaultHistoryPageSize = 15

type (
	// RecordKind tags a history item with its record type.
	RecordKind string

	// HistoryItem is one record of any kind in the combined history.
	// Exactly one of Expense, Reading, Loan is non-nil, matching Kind.
	HistoryItem struct {
		Kind      RecordKind
		Date      Date
		Timestamp int64
		Expense   *Expense
		Reading   *OdometerReading
		Loan      *Loan
	}

	// HistoryGroup is a run of consecutive items sharing a calendar
	// day, labelled with the display form of that day.
	HistoryGroup struct {
		Label string
		Items []HistoryItem
	}
)

// CombinedHistory merges the three record collections into one sequence
// sorted by date descending; records sharing a date are ordered by
// creation timestamp descending. The inputs are not mutated.
func CombinedHistory(expenses []Expense, readings []OdometerReading, loans []Loan) []HistoryItem {
	items := make([]HistoryItem, 0, len(expenses)+len(readings)+len(loans))
	for i := range expenses {
		e := expenses[i]
		items = append(items, HistoryItem{Kind: KindExpense, Date: e.Date, Timestamp: e.Timestamp, Expense: &e})
	}
	for i := range readings {
		r := readings[i]
		items = append(items, HistoryItem{Kind: KindOdometer, Date: r.Date, Timestamp: r.Timestamp, Reading: &r})
	}
	for i := range loans {
		l := loans[i]
		items = append(items, HistoryItem{Kind: KindLoan, Date: l.Date, Timestamp: l.Timestamp, Loan: &l})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date.Time) {
			return items[i].Date.After(items[j].Date.Time)
		}
		return items[i].Timestamp > items[j].Timestamp
	})

	return items
}

// BuildHistory returns the first limit items of the combined history,
// grouped by calendar day. The limit applies to the flat sorted
// sequence before grouping, so growing it only ever appends: items
// already returned keep their group and position. A limit <= 0 returns
// everything.
func BuildHistory(expenses []Expense, readings []OdometerReading, loans []Loan, limit int) []HistoryGroup {
	items := CombinedHistory(expenses, readings, loans)
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return groupByDay(items)
}

func groupByDay(items []HistoryItem) []HistoryGroup {
	var groups []HistoryGroup
	for _, item := range items {
		label := item.Date.Display()
		if n := len(groups); n > 0 && groups[n-1].Label == label {
			groups[n-1].Items = append(groups[n-1].Items, item)
			continue
		}
		groups = append(groups, HistoryGroup{Label: label, Items: []HistoryItem{item}})
	}
	return groups
}
