package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/cashbook/internal/model"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		input   string
		want    Range
		wantErr bool
	}{
		{input: "", want: RangeAll},
		{input: "all", want: RangeAll},
		{input: " Today ", want: RangeToday},
		{input: "WEEK", want: RangeWeek},
		{input: "month", want: RangeMonth},
		{input: "year", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRange(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRangeSince(t *testing.T) {
	midnight := time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC)

	assert.True(t, RangeAll.Since(fixedNow).IsZero())
	assert.True(t, midnight.Equal(RangeToday.Since(fixedNow)))
	assert.True(t, midnight.AddDate(0, 0, -7).Equal(RangeWeek.Since(fixedNow)))
	assert.True(t, time.Date(2024, time.February, 13, 0, 0, 0, 0, time.UTC).Equal(RangeMonth.Since(fixedNow)))
}

func TestFilterRange_DropsUndatedOutsideAll(t *testing.T) {
	txns := []model.Transaction{
		{ID: "dated", Date: fixedNow},
		{ID: "undated"},
	}

	assert.Len(t, FilterRange(txns, RangeAll, fixedNow), 2)

	today := FilterRange(txns, RangeToday, fixedNow)
	require.Len(t, today, 1)
	assert.Equal(t, "dated", today[0].ID)
}

func TestSearch(t *testing.T) {
	txns := []model.Transaction{
		{ID: "a", Description: "Market run", Amount: dec("12.5"), Category: "6"},
		{ID: "b", Description: "Bus fare", Amount: dec("3"), Category: "7"},
		{ID: "c", Description: "Misc", Amount: dec("99"), Category: "custom"},
	}
	names := map[string]string{"6": "Food", "7": "Transportation"}

	ids := func(in []model.Transaction) []string {
		var out []string
		for _, t := range in {
			out = append(out, t.ID)
		}
		return out
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids(Search(txns, "  ", names)))
	assert.Equal(t, []string{"a"}, ids(Search(txns, "market", names)))
	assert.Equal(t, []string{"a"}, ids(Search(txns, "12.50", names)))
	assert.Equal(t, []string{"b"}, ids(Search(txns, "transport", names)))
	assert.Equal(t, []string{"c"}, ids(Search(txns, "CUSTOM", names)))
	assert.Empty(t, Search(txns, "nothing", names))
}

func TestSortNewestFirst_Stable(t *testing.T) {
	txns := []model.Transaction{
		{ID: "old", Date: fixedNow.Add(-time.Hour)},
		{ID: "first", Date: fixedNow},
		{ID: "second", Date: fixedNow},
	}

	SortNewestFirst(txns)

	assert.Equal(t, "first", txns[0].ID)
	assert.Equal(t, "second", txns[1].ID)
	assert.Equal(t, "old", txns[2].ID)
}

func TestGroupByDay(t *testing.T) {
	txns := []model.Transaction{
		{ID: "1", Date: fixedNow},
		{ID: "2", Date: fixedNow.Add(-14 * time.Hour)},
		{ID: "3", Date: fixedNow.AddDate(0, 0, -1)},
		{ID: "4", Date: time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)},
		{ID: "5", Date: time.Date(2023, time.December, 31, 10, 0, 0, 0, time.UTC)},
		{ID: "6"},
	}

	groups := GroupByDay(txns, fixedNow)

	titles := make([]string, 0, len(groups))
	for _, g := range groups {
		titles = append(titles, g.Title)
	}
	assert.Equal(t, []string{"Today", "Yesterday", "Mon, 4 Mar", "Sun, 31 Dec 2023", "Unknown date"}, titles)
	assert.Len(t, groups[0].Transactions, 2)
	assert.Len(t, groups[1].Transactions, 1)
}
