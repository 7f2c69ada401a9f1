package airquality

import "math"

// Band is a US AQI category.
type Band struct {
	Label string
	Color string
	// Max is the inclusive upper bound of the band. The last band is unbounded.
	Max float64
}

// Bands in ascending order. Classify picks the first band whose Max is not exceeded.
var bands = []Band{
	{Label: "Good", Color: "#22c55e", Max: 50},
	{Label: "Moderate", Color: "#eab308", Max: 100},
	{Label: "Unhealthy (Sensitive)", Color: "#f97316", Max: 150},
	{Label: "Unhealthy", Color: "#ef4444", Max: 200},
	{Label: "Very Unhealthy", Color: "#a855f7", Max: 300},
	{Label: "Hazardous", Color: "#7f1d1d", Max: math.Inf(1)},
}

// Bands returns the AQI bands in ascending order.
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}

// Classify maps an AQI value to its band. Values are not clamped:
// anything at or below 50, including negatives, is Good.
func Classify(value float64) Band {
	for _, b := range bands {
		if value <= b.Max {
			return b
		}
	}
	return bands[len(bands)-1]
}

// GaugeMax is the top of the gauge scale.
const GaugeMax = 300

// GaugePosition clamps value to [0, GaugeMax] and maps it linearly to [0, 1].
func GaugePosition(value float64) float64 {
	return math.Min(math.Max(value, 0), GaugeMax) / GaugeMax
}

// NeedleRotation is the gauge needle angle in degrees, from -180 (0 AQI) to 0 (GaugeMax and above).
func NeedleRotation(value float64) float64 {
	return -180 + GaugePosition(value)*180
}
