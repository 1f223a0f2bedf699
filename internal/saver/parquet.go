package saver

import (
	"fmt"

	"github.com/parquet-go/parquet-go"

	"candlelite/internal/model"
)

// parquetRow is the on-disk row. Extra columns beyond volume go to the
// repeated x column in order.
type parquetRow struct {
	Timestamp int64     `parquet:"t"`
	Open      float64   `parquet:"o"`
	High      float64   `parquet:"h"`
	Low       float64   `parquet:"l"`
	Close     float64   `parquet:"c"`
	Volume    float64   `parquet:"v"`
	Extra     []float64 `parquet:"x"`
}

// ParquetCodec stores candles as Parquet. Rows need at least t,o,h,l,c,v.
type ParquetCodec struct{}

func (ParquetCodec) Extension() string { return "parquet" }

func (ParquetCodec) Save(c model.Candle, path string) error {
	rows := make([]parquetRow, len(c))
	for i, r := range c {
		if len(r) < model.BaseWidth {
			return fmt.Errorf("parquet row %d has %d columns, need %d", i, len(r), model.BaseWidth)
		}
		rows[i] = parquetRow{
			Timestamp: int64(r[model.ColTimestamp]),
			Open:      r[model.ColOpen],
			High:      r[model.ColHigh],
			Low:       r[model.ColLow],
			Close:     r[model.ColClose],
			Volume:    r[model.ColVolume],
		}
		if len(r) > model.BaseWidth {
			rows[i].Extra = append([]float64(nil), r[model.BaseWidth:]...)
		}
	}
	return parquet.WriteFile(path, rows)
}

func (ParquetCodec) Load(path string) (model.Candle, error) {
	rows, err := parquet.ReadFile[parquetRow](path)
	if err != nil {
		return nil, err
	}
	out := make(model.Candle, len(rows))
	for i, p := range rows {
		row := make([]float64, 0, model.BaseWidth+len(p.Extra))
		row = append(row, float64(p.Timestamp), p.Open, p.High, p.Low, p.Close, p.Volume)
		out[i] = append(row, p.Extra...)
	}
	return out, nil
}
