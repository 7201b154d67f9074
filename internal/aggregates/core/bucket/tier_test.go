package bucket_test

import (
	"math"
	"testing"

	"dashboard-aggregates-service/internal/aggregates/core/bucket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Thresholds(t *testing.T) {
	tests := []struct {
		value, max float64
		want       bucket.Tier
	}{
		{0, 100, bucket.None},
		{5, 100, bucket.VeryLow},
		{10, 100, bucket.Low},
		{29, 100, bucket.Low},
		{30, 100, bucket.Medium},
		{50, 100, bucket.High},
		{69, 100, bucket.High},
		{70, 100, bucket.High},
		{89, 100, bucket.High},
		{90, 100, bucket.VeryHigh},
		{95, 100, bucket.VeryHigh},
		{100, 100, bucket.VeryHigh},
		{150, 100, bucket.VeryHigh},
		{50, 0, bucket.None},
		{-3, 100, bucket.None},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, bucket.Classify(tt.value, tt.max), "Classify(%v, %v)", tt.value, tt.max)
	}
}

func TestClassify_NaNIsNone(t *testing.T) {
	nan := math.NaN()
	assert.Equal(t, bucket.None, bucket.Classify(nan, 100))
	assert.Equal(t, bucket.None, bucket.Classify(50, nan))
	assert.Equal(t, bucket.None, bucket.Classify(nan, nan))
	assert.Equal(t, bucket.None, bucket.Classify(math.Inf(1), math.Inf(1)))
	assert.Equal(t, bucket.VeryHigh, bucket.Classify(math.Inf(1), 100))
}

func TestClassify_Monotonic(t *testing.T) {
	for _, max := range []float64{0, 1, 7, 100, 12345} {
		prev := bucket.None
		for v := 0.0; v <= max*1.2+1; v += max/97 + 0.5 {
			got := bucket.Classify(v, max)
			require.GreaterOrEqual(t, got, prev, "tier decreased at value=%v max=%v", v, max)
			prev = got
		}
	}
}

func TestTier_TextRoundTrip(t *testing.T) {
	b, err := bucket.VeryHigh.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "very_high", string(b))

	var tier bucket.Tier
	require.NoError(t, tier.UnmarshalText([]byte("low")))
	assert.Equal(t, bucket.Low, tier)

	assert.Error(t, tier.UnmarshalText([]byte("scorching")))
	_, err = bucket.Tier(42).MarshalText()
	assert.Error(t, err)
}
