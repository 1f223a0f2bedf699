package saver

import (
	"encoding/json"
	"os"

	"candlelite/internal/model"
)

// JSONCodec stores candles as a JSON array of rows.
type JSONCodec struct{}

func (JSONCodec) Extension() string { return "json" }

func (JSONCodec) Save(c model.Candle, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if c == nil {
		c = model.Candle{}
	}
	if err := json.NewEncoder(f).Encode(c); err != nil {
		return err
	}
	return f.Close()
}

func (JSONCodec) Load(path string) (model.Candle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c model.Candle
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c == nil {
		c = model.Candle{}
	}
	return c, nil
}
