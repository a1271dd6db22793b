package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayBoundaries(t *testing.T) {
	// 2025-03-09 23:30 UTC-5 is already 2025-03-10 in UTC.
	loc := time.FixedZone("EST", -5*3600)
	local := time.Date(2025, 3, 9, 23, 30, 0, 0, loc)

	assert.Equal(t, "2025-03-10", Day(local))
	assert.Equal(t, "2025-03-09", Yesterday(local))
}

func TestAddDays(t *testing.T) {
	assert.Equal(t, "2025-01-01", AddDays("2024-12-31", 1))
	assert.Equal(t, "2024-02-29", AddDays("2024-03-01", -1))
	assert.Equal(t, "", AddDays("not-a-day", 1))
}

func TestWeekStart(t *testing.T) {
	// 2025-03-12 is a Wednesday; the week opened on Sunday the 9th.
	wed := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-09", WeekStart(wed))

	sun := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-09", WeekStart(sun))
}
