package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestProjectMondayFirst(t *testing.T) {
	anchor := date(t, "2025-01-13")

	cases := []struct {
		week  int
		label string
		want  string
	}{
		{0, Monday, "2025-01-13"},
		{0, Friday, "2025-01-17"},
		{0, Weekend, "2025-01-18"},
		{1, Monday, "2025-01-20"},
		{2, Wednesday, "2025-01-29"},
	}
	for _, tc := range cases {
		got, err := Project(anchor, tc.week, tc.label, MondayFirst)
		require.NoError(t, err)
		assert.Equal(t, tc.want, FormatDate(got), "week %d %s", tc.week, tc.label)
	}
}

func TestProjectThursdayFirst(t *testing.T) {
	anchor := date(t, "2025-01-16")

	got, err := Project(anchor, 0, Thursday, ThursdayFirst)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-16", FormatDate(got))

	got, err = Project(anchor, 0, Wednesday, ThursdayFirst)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-22", FormatDate(got))

	got, err = Project(anchor, 1, Weekend, ThursdayFirst)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-25", FormatDate(got))
}

func TestProjectNormalizesAnchor(t *testing.T) {
	anchor := time.Date(2025, 1, 13, 17, 45, 0, 0, time.UTC)
	got, err := Project(anchor, 0, "lun", MondayFirst)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), got)
}

func TestProjectUnknownDay(t *testing.T) {
	_, err := Project(date(t, "2025-01-13"), 0, "DOMINGO", MondayFirst)
	assert.ErrorIs(t, err, ErrUnknownDay)
	assert.False(t, ValidLabel("DOMINGO"))
	assert.True(t, ValidLabel(" sab_dom "))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-02T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-02", FormatDate(d))

	_, err = ParseDate("")
	assert.Error(t, err)
	_, err = ParseDate("13/01/2025")
	assert.Error(t, err)
}

func TestLabels(t *testing.T) {
	for _, c := range []Convention{MondayFirst, ThursdayFirst} {
		labels := Labels(c)
		assert.Len(t, labels, 6)
		for i, l := range labels {
			off, err := DayOffset(c, l)
			require.NoError(t, err)
			if i > 0 {
				prev, _ := DayOffset(c, labels[i-1])
				assert.Greater(t, off, prev)
			}
		}
	}
}
