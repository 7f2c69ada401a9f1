package trip

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var digitRun = regexp.MustCompile(`[0-9]+`)

// ParseCost approximates a free-text cost estimate as an integer for ordering.
// "Free" anywhere yields 0, otherwise the first run of digits is used ("$5-10" is 5).
// Strings without digits also yield 0, so they sort alongside free options.
func ParseCost(cost string) int {
	if cost == "" {
		return 0
	}
	if strings.Contains(strings.ToLower(cost), "free") {
		return 0
	}
	run := digitRun.FindString(cost)
	if run == "" {
		return 0
	}
	n, err := strconv.Atoi(run)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return math.MaxInt
		}
		return 0
	}
	return n
}
