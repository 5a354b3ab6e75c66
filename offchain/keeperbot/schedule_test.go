package keeperbot

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSchedule(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	s := NewSchedule()

	require.True(t, s.Add("c", base.Add(3*time.Second)))
	require.True(t, s.Add("a", base.Add(time.Second)))
	require.True(t, s.Add("b", base.Add(time.Second)))
	require.False(t, s.Add("a", base))
	require.Equal(t, 3, s.Len())

	next, ok := s.Next()
	require.True(t, ok)
	require.Equal(t, base.Add(time.Second), next)

	// reschedule c ahead of everything
	s.Set("c", base)
	got := s.PopDue(base.Add(time.Second), 10)
	if diff := cmp.Diff([]string{"c", "a", "b"}, got); diff != "" {
		t.Errorf("unexpected due order (-want +got):\n%s", diff)
	}
	require.Zero(t, s.Len())
	_, ok = s.Next()
	require.False(t, ok)
}

func TestSchedulePopDueLimit(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	s := NewSchedule()
	for _, name := range []string{"a", "b", "c", "d"} {
		s.Add(name, base)
	}
	s.Add("later", base.Add(time.Hour))

	require.Equal(t, []string{"a", "b"}, s.PopDue(base, 2))
	require.Equal(t, []string{"c", "d"}, s.PopDue(base, 5))
	require.Empty(t, s.PopDue(base, 5))
	require.True(t, s.Contains("later"))

	s.Remove("later")
	require.False(t, s.Contains("later"))
}
