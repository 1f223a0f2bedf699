// Package resample aggregates candles into coarser bars.
package resample

import (
	"fmt"
	"math"

	"candlelite/internal/bar"
	"candlelite/internal/candleerr"
	"candlelite/internal/model"
)

// Auto asks Compress to infer the source bar.
const Auto = "auto"

// Compress aggregates consecutive blocks of rows from sourceBar into
// targetBar. Each block of ratio rows yields one row: first timestamp and
// open, max high, min low, last close, summed volume and extras. A trailing
// block shorter than ratio is dropped.
func Compress(c model.Candle, targetBar, sourceBar string) (model.Candle, error) {
	if sourceBar == "" || sourceBar == Auto {
		inferred, err := bar.Infer(c, bar.MinuteMs)
		if err != nil {
			return nil, err
		}
		sourceBar = inferred
	}
	target, err := bar.ParseInterval(targetBar, bar.MinuteMs)
	if err != nil {
		return nil, err
	}
	source, err := bar.ParseInterval(sourceBar, bar.MinuteMs)
	if err != nil {
		return nil, err
	}
	if source <= 0 || target%source != 0 || target/source < 1 {
		return nil, &candleerr.ExecutionError{
			Func: "Compress",
			Msg:  fmt.Sprintf("Can't transform candle from org_bar=(%s) to target_bar=%s", sourceBar, targetBar),
		}
	}
	ratio := int(target / source)

	out := make(model.Candle, 0, len(c)/ratio)
	for i := 0; i+ratio <= len(c); i += ratio {
		out = append(out, aggregate(c[i:i+ratio]))
	}
	return out, nil
}

func aggregate(block model.Candle) []float64 {
	first, last := block[0], block[len(block)-1]
	row := make([]float64, len(first))
	copy(row, first)
	if len(row) > model.ColClose {
		row[model.ColClose] = last[model.ColClose]
	}
	high, low := math.Inf(-1), math.Inf(1)
	for _, r := range block {
		if len(r) > model.ColHigh && r[model.ColHigh] > high {
			high = r[model.ColHigh]
		}
		if len(r) > model.ColLow && r[model.ColLow] < low {
			low = r[model.ColLow]
		}
	}
	if len(row) > model.ColHigh {
		row[model.ColHigh] = high
	}
	if len(row) > model.ColLow {
		row[model.ColLow] = low
	}
	for col := model.ColVolume; col < len(row); col++ {
		var sum float64
		for _, r := range block {
			sum += r[col]
		}
		row[col] = sum
	}
	return row
}
