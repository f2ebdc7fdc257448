package tool

import "testing"

func TestClassifyGlucose(t *testing.T) {
	t.Parallel()

	cases := []struct {
		reading float64
		want    Classification
	}{
		{40, GlucoseLow},
		{69.9, GlucoseLow},
		{70, GlucoseNormal},
		{100, GlucoseNormal},
		{140, GlucoseNormal},
		{140.1, GlucoseHigh},
		{180, GlucoseHigh},
		{300, GlucoseHigh},
	}
	for _, tc := range cases {
		if got := ClassifyGlucose(tc.reading); got != tc.want {
			t.Errorf("ClassifyGlucose(%v) = %s, want %s", tc.reading, got, tc.want)
		}
	}
}
