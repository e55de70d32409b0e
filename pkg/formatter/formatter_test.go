package formatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"seconds ago", now.Add(-30 * time.Second), "just now"},
		{"minutes ago", now.Add(-90 * time.Second), "1m ago"},
		{"hours ago", now.Add(-3 * time.Hour), "3h ago"},
		{"days ago", now.Add(-49 * time.Hour), "2d ago"},
		{"future clamps", now.Add(time.Minute), "just now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, TimeAgo(tt.at, now))
		})
	}
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "hello", Truncate("hello", 10))
	require.Equal(t, "hell…", Truncate("hello world", 5))
	require.Equal(t, "…", Truncate("hello", 1))
	require.Equal(t, "", Truncate("hello", 0))
}
