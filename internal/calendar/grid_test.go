package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridStartsOnSundayBeforeFirst(t *testing.T) {
	// June 1st 2025 is a Sunday, so the grid starts on it.
	days := Grid(date(2025, time.June, 18), nil)
	assert.Equal(t, date(2025, time.June, 1), days[0].Date)
	assert.Equal(t, date(2025, time.July, 12), days[GridDays-1].Date)

	// October 1st 2025 is a Wednesday.
	days = Grid(date(2025, time.October, 1), nil)
	assert.Equal(t, date(2025, time.September, 28), days[0].Date)
	assert.Equal(t, time.Sunday, days[0].Date.Weekday())
	assert.False(t, days[0].InMonth)
	assert.True(t, days[3].InMonth)
}

func TestGridMarksSelection(t *testing.T) {
	s := newTestSelector()
	require.NoError(t, s.Pick(date(2025, time.June, 10)))
	require.NoError(t, s.Pick(date(2025, time.June, 13)))

	days := Grid(date(2025, time.June, 1), s)

	byDay := map[int]Day{}
	for _, d := range days {
		if d.InMonth {
			byDay[d.Date.Day()] = d
		}
	}
	assert.True(t, byDay[1].IsToday)
	assert.True(t, byDay[10].IsCheckIn)
	assert.True(t, byDay[11].InRange)
	assert.True(t, byDay[12].InRange)
	assert.True(t, byDay[13].IsCheckOut)
	assert.False(t, byDay[13].InRange)
	assert.False(t, byDay[14].InRange)

	// The May view starts on April 27th; May 31st is cell 34 and in the past.
	may := Grid(date(2025, time.May, 1), s)
	assert.Equal(t, date(2025, time.May, 31), may[34].Date)
	assert.True(t, may[34].Disabled)
	assert.False(t, may[35].Disabled)
}
