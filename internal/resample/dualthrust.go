package resample

import (
	"fmt"
	"math"

	"candlelite/internal/candleerr"
	"candlelite/internal/model"
)

// DualThrust computes Dual Thrust bands. Every updateN rows a new band pair
// is derived from the n rows before the window:
//
//	range = max(HH-LC, HC-LL)
//	upper = open + ks*range
//	lower = open - kx*range
//
// and repeated for each row in the window. Windows without a full lookback
// get NaN bands. Output rows are [ts, upper, lower].
func DualThrust(c model.Candle, n int, ks, kx float64, updateN int) (model.Candle, error) {
	if n <= 0 {
		return nil, &candleerr.ParamError{Func: "DualThrust", Msg: fmt.Sprintf("n must be positive, got %d", n)}
	}
	if len(c) == 0 {
		return nil, &candleerr.ParamError{Func: "DualThrust", Msg: "candle empty"}
	}
	if c.Width() < model.BaseWidth-1 {
		return nil, &candleerr.ParamError{Func: "DualThrust", Msg: "candle needs t,o,h,l,c columns"}
	}
	if updateN <= 0 {
		updateN = 1
	}

	out := make(model.Candle, 0, len(c))
	for i := 0; i < len(c); i += updateN {
		upper, lower := math.NaN(), math.NaN()
		if i >= n {
			hh, hc := math.Inf(-1), math.Inf(-1)
			lc, ll := math.Inf(1), math.Inf(1)
			for _, r := range c[i-n : i] {
				hh = math.Max(hh, r[model.ColHigh])
				hc = math.Max(hc, r[model.ColClose])
				lc = math.Min(lc, r[model.ColClose])
				ll = math.Min(ll, r[model.ColLow])
			}
			rng := math.Max(hh-lc, hc-ll)
			open := c[i][model.ColOpen]
			upper = open + ks*rng
			lower = open - kx*rng
		}
		end := min(i+updateN, len(c))
		for _, r := range c[i:end] {
			out = append(out, []float64{r[model.ColTimestamp], upper, lower})
		}
	}
	return out, nil
}
