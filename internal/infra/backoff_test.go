package infra

import (
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		retryCount int
		want       time.Duration
	}{
		{-1, 1 * time.Second},
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{10, 60 * time.Second},  // capped
		{100, 60 * time.Second}, // still capped, no overflow
	}

	for _, tt := range tests {
		if got := CalculateBackoff(tt.retryCount); got != tt.want {
			t.Errorf("CalculateBackoff(%d) = %s, want %s", tt.retryCount, got, tt.want)
		}
	}
}
