package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecadeRange(t *testing.T) {
	tests := []struct {
		label string
		start int
		end   int
		ok    bool
	}{
		{"1950s", 1950, 1960, true},
		{"1990s", 1990, 2000, true},
		{"2020s", 2020, 2030, true},
		{"90s", 0, 0, false},
		{"1950", 0, 0, false},
		{"1955s", 0, 0, false},
		{"195Xs", 0, 0, false},
		{"", 0, 0, false},
		{"1950ss", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			start, end, ok := DecadeRange(tt.label)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.start, start)
			require.Equal(t, tt.end, end)
		})
	}
}
