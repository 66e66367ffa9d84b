package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthsBetween(t *testing.T) {
	assert.Equal(t, 1, MonthsBetween(day(2025, 1, 31), day(2025, 2, 1)))
	assert.Equal(t, 0, MonthsBetween(day(2025, 3, 1), day(2025, 3, 31)))
	assert.Equal(t, 13, MonthsBetween(day(2024, 1, 15), day(2025, 2, 15)))
	assert.Equal(t, -1, MonthsBetween(day(2025, 3, 1), day(2025, 2, 1)))
}

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	from := time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)
	to := time.Date(2025, 3, 2, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(from, to))
	assert.Equal(t, 0, DaysBetween(to, to.Add(time.Hour)))
}

func TestInclusiveDays(t *testing.T) {
	assert.Equal(t, 1, InclusiveDays(day(2025, 1, 10), day(2025, 1, 10)))
	assert.Equal(t, 3, InclusiveDays(day(2025, 1, 10), day(2025, 1, 12)))
	assert.Equal(t, 29, InclusiveDays(day(2024, 2, 1), day(2024, 2, 29)))
	assert.Equal(t, 0, InclusiveDays(day(2025, 1, 12), day(2025, 1, 10)))
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps(day(2025, 1, 10), day(2025, 1, 12), day(2025, 1, 12), day(2025, 1, 20)))
	assert.True(t, Overlaps(day(2025, 1, 10), day(2025, 1, 10), day(2025, 1, 10), day(2025, 1, 10)))
	assert.True(t, Overlaps(day(2025, 1, 1), day(2025, 1, 31), day(2025, 1, 10), day(2025, 1, 11)))
	assert.False(t, Overlaps(day(2025, 1, 10), day(2025, 1, 12), day(2025, 1, 13), day(2025, 1, 14)))
	assert.False(t, Overlaps(day(2025, 1, 13), day(2025, 1, 14), day(2025, 1, 10), day(2025, 1, 12)))
}
