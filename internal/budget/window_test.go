package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/cashbook/internal/model"
)

func TestResolveWindow(t *testing.T) {
	// 2024-03-13 is a Wednesday.
	wednesday := time.Date(2024, time.March, 13, 15, 30, 45, 0, time.UTC)

	tests := []struct {
		now       time.Time
		wantStart time.Time
		name      string
		period    model.Period
	}{
		{
			name:      "weekly starts on preceding sunday",
			period:    model.PeriodWeekly,
			now:       wednesday,
			wantStart: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "weekly on a sunday starts that midnight",
			period:    model.PeriodWeekly,
			now:       time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "weekly crosses month boundary",
			period:    model.PeriodWeekly,
			now:       time.Date(2024, time.March, 2, 12, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, time.February, 25, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "weekly crosses year boundary",
			period:    model.PeriodWeekly,
			now:       time.Date(2025, time.January, 2, 8, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, time.December, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly starts on the first",
			period:    model.PeriodMonthly,
			now:       wednesday,
			wantStart: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "yearly starts on january first",
			period:    model.PeriodYearly,
			now:       wednesday,
			wantStart: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ResolveWindow(tt.period, tt.now)
			assert.True(t, tt.wantStart.Equal(w.Start), "start = %v, want %v", w.Start, tt.wantStart)
			assert.True(t, tt.now.Equal(w.End), "end must be now")
		})
	}
}

func TestResolveWindow_KeepsLocation(t *testing.T) {
	accra := time.FixedZone("GMT+3", 3*60*60)
	now := time.Date(2024, time.March, 13, 1, 0, 0, 0, accra)

	w := ResolveWindow(model.PeriodMonthly, now)

	assert.Equal(t, accra, w.Start.Location())
	assert.Equal(t, 0, w.Start.Hour())
	assert.Equal(t, 1, w.Start.Day())
}

func TestResolveWindow_StartNeverAfterEnd(t *testing.T) {
	base := time.Date(2023, time.December, 25, 0, 0, 0, 0, time.UTC)
	periods := []model.Period{model.PeriodWeekly, model.PeriodMonthly, model.PeriodYearly}

	for i := 0; i < 500; i++ {
		now := base.Add(time.Duration(i) * 7 * time.Hour)
		for _, p := range periods {
			w := ResolveWindow(p, now)
			assert.False(t, w.Start.After(w.End), "period %s at %v", p, now)
			assert.True(t, w.End.Equal(now))
		}
	}
}

func TestResolveWindow_UnknownPeriodPanics(t *testing.T) {
	assert.Panics(t, func() {
		ResolveWindow(model.Period("daily"), time.Now())
	})
}

func TestWindowContains(t *testing.T) {
	w := Window{
		Start: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC),
	}

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.True(t, w.Contains(time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(w.Start.Add(-time.Nanosecond)))
	assert.False(t, w.Contains(w.End.Add(time.Nanosecond)))
}

func TestPeriodDisplayName(t *testing.T) {
	assert.Equal(t, "This Week", PeriodDisplayName(model.PeriodWeekly))
	assert.Equal(t, "This Month", PeriodDisplayName(model.PeriodMonthly))
	assert.Equal(t, "This Year", PeriodDisplayName(model.PeriodYearly))
}
