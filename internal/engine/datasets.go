package engine

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"explorer/internal/models"
)

// Datasets is the read-only context shared by every request: both tables
// and the metadata the controls are built from.
type Datasets struct {
	Timeseries   *Table
	Demographics *Table

	Locations []string
	Axis      DateAxis
	Ticks     []time.Time

	LoadedAt time.Time
}

// URLs names where the two datasets live.
type URLs struct {
	Timeseries   string
	Demographics string
}

// NewDatasets derives the control metadata from two loaded tables.
func NewDatasets(ts, demo *Table) *Datasets {
	loc := ts.Column(ColLocation)
	locations := make([]string, 0, len(loc.Dict))
	locations = append(locations, loc.Dict...)
	sort.Strings(locations)

	axis := NewDateAxis(ts.Column(ColDate))
	return &Datasets{
		Timeseries:   ts,
		Demographics: demo,
		Locations:    locations,
		Axis:         axis,
		Ticks:        axis.Ticks(),
		LoadedAt:     time.Now(),
	}
}

// LoadDatasets fetches and parses both datasets concurrently. Either failure
// fails the whole load; no partial context is returned.
func LoadDatasets(ctx context.Context, src Source, urls URLs, buckets BucketMap, logger *zerolog.Logger) (*Datasets, error) {
	var ts, demo *Table
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := loadOne(ctx, src, urls.Timeseries, logger, LoadTimeseries)
		ts = t
		return err
	})
	g.Go(func() error {
		t, err := loadOne(ctx, src, urls.Demographics, logger, func(ctx context.Context, r io.Reader) (*Table, error) {
			return LoadDemographics(ctx, r, buckets)
		})
		demo = t
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewDatasets(ts, demo), nil
}

func loadOne(ctx context.Context, src Source, location string, logger *zerolog.Logger,
	parse func(context.Context, io.Reader) (*Table, error)) (*Table, error) {
	start := time.Now()
	rc, err := src.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	t, err := parse(ctx, rc)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("dataset", t.Name).
		Str("source", location).
		Int("rows", t.Len()).
		Dur("took", time.Since(start)).
		Msg("dataset loaded")
	return t, nil
}

// Options builds the control values for the page and the options endpoint.
func (d *Datasets) Options() models.Options {
	opts := models.Options{
		Locations: make([]models.Option, 0, len(d.Locations)),
		Ticks:     make([]models.Tick, 0, len(d.Ticks)),
		Labels:    make([]models.Option, 0, len(LabelNames)),
		Columns:   make([]models.Option, 0, len(d.Demographics.cols)),
	}
	for _, l := range d.Locations {
		opts.Locations = append(opts.Locations, models.Option{Label: l, Value: l})
	}
	for m, t := range d.Ticks {
		opts.Ticks = append(opts.Ticks, models.Tick{Marker: MinMarker + m, Date: t.Format(DateLayout)})
	}
	for v, name := range LabelNames {
		opts.Labels = append(opts.Labels, models.Option{Label: name, Value: v})
	}
	title := cases.Title(language.English)
	for _, c := range d.Demographics.Columns() {
		opts.Columns = append(opts.Columns, models.Option{Label: title.String(strings.ReplaceAll(c, "_", " ")), Value: c})
	}
	return opts
}
