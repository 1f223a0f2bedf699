package bar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candlelite/internal/candleerr"
	"candlelite/internal/model"
)

func series(step int64, n int) model.Candle {
	c := make(model.Candle, n)
	for i := range c {
		c[i] = []float64{float64(1_700_000_000_000 + int64(i)*step), 1, 2, 0.5, 1.5, 10}
	}
	return c
}

func TestParseInterval(t *testing.T) {
	cases := map[string]int64{
		"1s":  1000,
		"30s": 30000,
		"1m":  60000,
		"5m":  300000,
		"1h":  3600000,
		"4H":  4 * 3600000,
		"1d":  86400000,
		"1D":  86400000,
		"1w":  7 * 86400000,
	}
	for s, want := range cases {
		got, err := ParseInterval(s, 0)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
}

func TestParseIntervalBadUnit(t *testing.T) {
	for _, s := range []string{"5x", "m", "", "0m", "-1h", "am"} {
		_, err := ParseInterval(s, MinuteMs)
		var pe *candleerr.ParamError
		assert.True(t, errors.As(err, &pe), s)
	}
}

func TestParseCanonical(t *testing.T) {
	b, err := Parse("2H")
	require.NoError(t, err)
	assert.Equal(t, "2h", b.String())
}

func TestInferRoundTrip(t *testing.T) {
	for _, step := range []int64{1000, 15000, 60000, 300000, 3600000, 4 * 3600000, 86400000} {
		got, err := Infer(series(step, 10), 0)
		require.NoError(t, err)
		iv, err := ParseInterval(got, 0)
		require.NoError(t, err)
		assert.Equal(t, step, iv, got)
	}
}

func TestInferUsesSmallestStep(t *testing.T) {
	c := series(60000, 5)
	c = append(c, []float64{c[4][0] + 180000, 1, 1, 1, 1, 1})
	got, err := Infer(c, 0)
	require.NoError(t, err)
	assert.Equal(t, "1m", got)
}

func TestInferFractional(t *testing.T) {
	_, err := Infer(series(90*60000, 4), 0)
	var ee *candleerr.ExecutionError
	require.True(t, errors.As(err, &ee))
	assert.Contains(t, ee.Msg, "1.5h")
}

func TestInferTooShort(t *testing.T) {
	_, err := Infer(series(60000, 1), 0)
	var ee *candleerr.ExecutionError
	assert.True(t, errors.As(err, &ee))
}
