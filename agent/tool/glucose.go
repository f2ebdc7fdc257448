package tool

// Classification buckets a glucose reading in mg/dL.
type Classification string

const (
	GlucoseLow    Classification = "low"
	GlucoseNormal Classification = "normal"
	GlucoseHigh   Classification = "high"
)

const (
	normalGlucoseMin = 70.0
	normalGlucoseMax = 140.0
)

// ClassifyGlucose is a pure function of the numeric value:
// below 70 is low, 70-140 inclusive is normal, above 140 is high.
func ClassifyGlucose(reading float64) Classification {
	switch {
	case reading < normalGlucoseMin:
		return GlucoseLow
	case reading > normalGlucoseMax:
		return GlucoseHigh
	default:
		return GlucoseNormal
	}
}
