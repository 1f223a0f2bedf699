package saver

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"candlelite/internal/model"
)

// CSVCodec stores candles as CSV with a header row (t,o,h,l,c,v,x6...).
type CSVCodec struct{}

func (CSVCodec) Extension() string { return "csv" }

func (CSVCodec) Save(c model.Candle, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)

	width := c.Width()
	if width == 0 {
		width = model.BaseWidth
	}
	if err := w.Write(model.Header(width)); err != nil {
		return err
	}
	rec := make([]string, width)
	for _, r := range c {
		for i, v := range r {
			rec[i] = floatStr(v)
		}
		if err := w.Write(rec[:len(r)]); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func (CSVCodec) Load(path string) (model.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) <= 1 {
		return model.Candle{}, nil
	}
	out := make(model.Candle, 0, len(records)-1)
	for n, rec := range records[1:] {
		row := make([]float64, len(rec))
		for i, s := range rec {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("read %s line %d: %w", path, n+2, err)
			}
			row[i] = v
		}
		out = append(out, row)
	}
	return out, nil
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
