package calendarview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthMatrixAlwaysFortyTwoConsecutiveDays(t *testing.T) {
	refs := []time.Time{
		time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC),  // leap February
		time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),   // 28-day month
		time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),  // year boundary
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),      // 1st on a Sunday
	}
	for _, ref := range refs {
		matrix := MonthMatrix(ref)
		var prev time.Time
		count := 0
		for _, row := range matrix {
			for _, day := range row {
				if count > 0 {
					require.Equal(t, 24*time.Hour, day.Sub(prev), "gap at cell %d for %s", count, ref)
				}
				prev = day
				count++
			}
		}
		assert.Equal(t, 42, count)
		assert.Equal(t, time.Sunday, matrix[0][0].Weekday())
	}
}

func TestMonthMatrixNovember2025(t *testing.T) {
	ref := time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC)
	matrix := MonthMatrix(ref)

	// November 1st 2025 is a Saturday, so the grid opens on October 26th.
	assert.Equal(t, "2025-10-26", DateKey(matrix[0][0]))
	assert.Equal(t, "2025-11-01", DateKey(matrix[0][6]))
	assert.Equal(t, "2025-12-06", DateKey(matrix[5][6]))
}

func TestMonthMatrixFirstOnSunday(t *testing.T) {
	// March 2026 starts on a Sunday; the anchor is the 1st itself.
	ref := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	matrix := MonthMatrix(ref)
	assert.Equal(t, "2026-03-01", DateKey(matrix[0][0]))
}
