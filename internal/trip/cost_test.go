package trip_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecoroute/ecoroute/internal/trip"
)

func TestParseCost(t *testing.T) {
	tests := []struct {
		name string
		cost string
		want int
	}{
		{"empty", "", 0},
		{"free", "Free", 0},
		{"free lowercase in sentence", "mostly free with a pass", 0},
		{"free uppercase", "FREE", 0},
		{"range takes first number", "$5-10", 5},
		{"euro", "€2", 2},
		{"no digits", "Varies", 0},
		{"digits in middle", "about 45 EUR", 45},
		{"decimal keeps integer part", "$3.50", 3},
		{"huge number saturates", "$99999999999999999999999999", math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trip.ParseCost(tt.cost))
		})
	}
}
