package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/cashbook/internal/model"
)

// Range selects how far back a transaction listing reaches.
type Range string

// Listing ranges. Week and month are rolling, counted back from midnight today.
const (
	RangeAll   Range = "all"
	RangeToday Range = "today"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
)

// ParseRange converts user input into a Range. Empty input means all.
func ParseRange(s string) (Range, error) {
	switch r := Range(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RangeAll, nil
	case RangeAll, RangeToday, RangeWeek, RangeMonth:
		return r, nil
	default:
		return "", fmt.Errorf("invalid range %q: must be all, today, week or month", s)
	}
}

// Since returns the earliest instant included by the range, or the zero
// time for RangeAll.
func (r Range) Since(now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch r {
	case RangeToday:
		return today
	case RangeWeek:
		return today.AddDate(0, 0, -7)
	case RangeMonth:
		return today.AddDate(0, -1, 0)
	default:
		return time.Time{}
	}
}

// FilterRange keeps transactions dated on or after the start of the range.
// Transactions without a valid date only appear under RangeAll.
func FilterRange(txns []model.Transaction, r Range, now time.Time) []model.Transaction {
	if r == RangeAll || r == "" {
		return append([]model.Transaction(nil), txns...)
	}

	since := r.Since(now)
	var out []model.Transaction
	for _, t := range txns {
		if t.HasValidDate() && !t.Date.Before(since) {
			out = append(out, t)
		}
	}
	return out
}

// Search keeps transactions whose description, amount or category contains
// the query, ignoring case. Category matches the display name when known and
// the raw category id otherwise. An empty query keeps everything.
func Search(txns []model.Transaction, query string, categoryNames map[string]string) []model.Transaction {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return txns
	}

	var out []model.Transaction
	for _, t := range txns {
		category := t.Category
		if name, ok := categoryNames[t.Category]; ok {
			category = name
		}
		if strings.Contains(strings.ToLower(t.Description), q) ||
			strings.Contains(t.Amount.String(), q) ||
			strings.Contains(t.Amount.StringFixed(2), q) ||
			strings.Contains(strings.ToLower(category), q) {
			out = append(out, t)
		}
	}
	return out
}

// SortNewestFirst orders transactions by date descending, in place.
func SortNewestFirst(txns []model.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date.After(txns[j].Date)
	})
}

// DayGroup is a run of transactions that share a calendar day.
type DayGroup struct {
	Title        string
	Transactions []model.Transaction
}

// GroupByDay groups already-sorted transactions by local calendar day.
// Titles are "Today", "Yesterday", or a short date such as "Mon, 4 Mar".
func GroupByDay(txns []model.Transaction, now time.Time) []DayGroup {
	var groups []DayGroup
	index := make(map[string]int)

	for _, t := range txns {
		title := dayTitle(t.Date, now)
		i, ok := index[title]
		if !ok {
			i = len(groups)
			index[title] = i
			groups = append(groups, DayGroup{Title: title})
		}
		groups[i].Transactions = append(groups[i].Transactions, t)
	}
	return groups
}

func dayTitle(d, now time.Time) string {
	if d.IsZero() {
		return "Unknown date"
	}
	d = d.In(now.Location())
	y, m, day := d.Date()
	ny, nm, nd := now.Date()
	if y == ny && m == nm && day == nd {
		return "Today"
	}
	yy, ym, yd := now.AddDate(0, 0, -1).Date()
	if y == yy && m == ym && day == yd {
		return "Yesterday"
	}
	if y != ny {
		return d.Format("Mon, 2 Jan 2006")
	}
	return d.Format("Mon, 2 Jan")
}
