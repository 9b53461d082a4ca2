package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"vesrates/internal/history"
)

// Export renders the stored price history as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore := a.openStore()
	defer closeStore()
	if store == nil {
		return errors.New("history database unavailable; cannot export")
	}

	series := store.Load(ctx, time.Now())
	series = filterWindow(series, opts.From, opts.To)
	if len(series) == 0 {
		a.Logger.Info().Msg("no samples found for export window")
		return nil
	}

	downsampled := downsampleSeries(series, opts.MaxPoints)
	a.Logger.Info().Int("total", len(series)).Int("exported", len(downsampled)).Msg("exporting samples")

	if opts.CSVPath != "" {
		if err := writeSeriesCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeSeriesPNG(opts.PNGPath, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func filterWindow(series history.Series, from, to *time.Time) history.Series {
	result := make(history.Series, 0, len(series))
	for _, sample := range series {
		at := sample.Time()
		if from != nil && at.Before(*from) {
			continue
		}
		if to != nil && !at.Before(*to) {
			continue
		}
		result = append(result, sample)
	}
	return result
}

func downsampleSeries(series history.Series, max int) history.Series {
	if max <= 0 || len(series) <= max {
		return series
	}
	if max == 1 {
		return history.Series{series[len(series)-1]}
	}

	result := make(history.Series, 0, max)
	step := float64(len(series)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(series) {
			idx = len(series) - 1
		}
		result = append(result, series[idx])
	}
	return result
}

func writeSeriesCSV(path string, series history.Series) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"timestamp", "time", "buy", "sell", "average"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, sample := range series {
		record := []string{
			sample.Time().UTC().Format(time.RFC3339),
			sample.DisplayTime,
			sample.BuyPrice.String(),
			sample.SellPrice.String(),
			sample.AveragePrice.String(),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeSeriesPNG(path string, series history.Series) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(series))
	buy := make([]float64, len(series))
	sell := make([]float64, len(series))
	average := make([]float64, len(series))

	for i, sample := range series {
		x[i] = sample.Time()
		buy[i] = sample.BuyPrice.InexactFloat64()
		sell[i] = sample.SellPrice.InexactFloat64()
		average[i] = sample.AveragePrice.InexactFloat64()
	}

	priceFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Price (VES/USDT)",
			ValueFormatter: priceFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Average",
				XValues: x,
				YValues: average,
			},
			chart.TimeSeries{
				Name:    "Buy",
				XValues: x,
				YValues: buy,
			},
			chart.TimeSeries{
				Name:    "Sell",
				XValues: x,
				YValues: sell,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
