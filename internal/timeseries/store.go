// Copyright (C) 2025 Josh Simonot
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package timeseries

import (
	"context"
	"fmt"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"heatmon/pkg/logger"
)

// Measurement is the InfluxDB measurement all heat pump samples
// are written under.
const Measurement = "heatpump"

// pivotFillRateThreshold: below this fraction of populated cells the
// server-side pivot is considered misaligned and the query layer
// regroups rows by timestamp client-side.
const pivotFillRateThreshold = 0.5

// Store runs Flux queries against the heat pump bucket.
type Store struct {
	log    *logger.Logger
	query  api.QueryAPI
	bucket string
}

func NewStore(client influxdb2.Client, org, bucket string) *Store {
	return &Store{
		log:    logger.New("TimeSeries"),
		query:  client.QueryAPI(org),
		bucket: bucket,
	}
}

// Latest is the most recent observation of one metric.
type Latest struct {
	Value float64   `json:"value"`
	Unit  string    `json:"unit"`
	Time  time.Time `json:"time"`
}

// Stats summarizes one metric over a time range.
type Stats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// QueryMetrics fetches the named metrics over timeRange, downsampled
// to window, aligned into a single Frame. Metrics listed in
// statusFields aggregate with last() so their on/off values survive,
// everything else aggregates with mean(). If the server-side pivot
// leaves the frame mostly empty the rows are regrouped client-side.
func (s *Store) QueryMetrics(ctx context.Context, names []string, timeRange, window string, statusFields []string) (Frame, error) {
	isStatus := make(map[string]bool, len(statusFields))
	for _, f := range statusFields {
		isStatus[f] = true
	}
	var valueMetrics, statusMetrics []string
	for _, n := range names {
		if isStatus[n] {
			statusMetrics = append(statusMetrics, n)
		} else {
			valueMetrics = append(valueMetrics, n)
		}
	}

	frame := Frame{Columns: map[string][]*float64{}}
	if len(valueMetrics) > 0 {
		f, err := s.queryPivoted(ctx, valueMetrics, timeRange, window, "mean")
		if err != nil {
			return Frame{}, err
		}
		frame = f
	}
	if len(statusMetrics) > 0 {
		f, err := s.queryPivoted(ctx, statusMetrics, timeRange, window, "last")
		if err != nil {
			return Frame{}, err
		}
		frame = Merge(frame, f)
	}

	if !frame.Empty() && frame.FillRate() < pivotFillRateThreshold {
		s.log.Warn("pivot fill rate %.0f%% below threshold, regrouping client-side",
			frame.FillRate()*100)
		return s.queryRegrouped(ctx, valueMetrics, statusMetrics, timeRange, window)
	}
	return frame, nil
}

func (s *Store) queryPivoted(ctx context.Context, names []string, timeRange, window, aggFn string) (Frame, error) {
	flux := fmt.Sprintf(`
		from(bucket: %q)
			|> range(start: -%s)
			|> filter(fn: (r) => r._measurement == %q)
			|> filter(fn: (r) => %s)
			|> aggregateWindow(every: %s, fn: %s, createEmpty: false)
			|> pivot(rowKey: ["_time"], columnKey: ["name"], valueColumn: "_value")
	`, s.bucket, timeRange, Measurement, nameFilter(names), window, aggFn)

	result, err := s.query.Query(ctx, flux)
	if err != nil {
		return Frame{}, fmt.Errorf("query metrics: %w", err)
	}

	series := make(map[string]Series, len(names))
	for result.Next() {
		rec := result.Record()
		t := rec.Time()
		for _, name := range names {
			if v, ok := rec.Values()[name].(float64); ok {
				series[name] = append(series[name], Sample{Time: t, Value: v})
			}
		}
	}
	if result.Err() != nil {
		return Frame{}, fmt.Errorf("query metrics: %w", result.Err())
	}
	return FromSeries(series), nil
}

func (s *Store) queryRegrouped(ctx context.Context, valueMetrics, statusMetrics []string, timeRange, window string) (Frame, error) {
	series := make(map[string]Series)
	if len(valueMetrics) > 0 {
		if err := s.querySeries(ctx, valueMetrics, timeRange, window, "mean", series); err != nil {
			return Frame{}, err
		}
	}
	if len(statusMetrics) > 0 {
		if err := s.querySeries(ctx, statusMetrics, timeRange, window, "last", series); err != nil {
			return Frame{}, err
		}
	}
	return FromSeries(series), nil
}

func (s *Store) querySeries(ctx context.Context, names []string, timeRange, window, aggFn string, out map[string]Series) error {
	flux := fmt.Sprintf(`
		from(bucket: %q)
			|> range(start: -%s)
			|> filter(fn: (r) => r._measurement == %q)
			|> filter(fn: (r) => %s)
			|> aggregateWindow(every: %s, fn: %s, createEmpty: false)
	`, s.bucket, timeRange, Measurement, nameFilter(names), window, aggFn)

	result, err := s.query.Query(ctx, flux)
	if err != nil {
		return fmt.Errorf("query series: %w", err)
	}
	for result.Next() {
		rec := result.Record()
		name, _ := rec.ValueByKey("name").(string)
		value, ok := rec.Value().(float64)
		if name == "" || !ok {
			continue
		}
		out[name] = append(out[name], Sample{Time: rec.Time(), Value: value})
	}
	if result.Err() != nil {
		return fmt.Errorf("query series: %w", result.Err())
	}
	return nil
}

// LatestValues returns the most recent sample of every metric seen
// in the last hour.
func (s *Store) LatestValues(ctx context.Context) (map[string]Latest, error) {
	flux := fmt.Sprintf(`
		from(bucket: %q)
			|> range(start: -1h)
			|> filter(fn: (r) => r._measurement == %q)
			|> group(columns: ["name"])
			|> last()
	`, s.bucket, Measurement)

	result, err := s.query.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("latest values: %w", err)
	}
	latest := make(map[string]Latest)
	for result.Next() {
		rec := result.Record()
		name, _ := rec.ValueByKey("name").(string)
		value, ok := rec.Value().(float64)
		if name == "" || !ok {
			continue
		}
		unit, _ := rec.ValueByKey("unit").(string)
		latest[name] = Latest{Value: value, Unit: unit, Time: rec.Time()}
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("latest values: %w", result.Err())
	}
	return latest, nil
}

// MinMax returns min, max, and mean per metric computed on the raw
// samples. Downsampled frames cannot be used for this: window means
// flatten the true extremes.
func (s *Store) MinMax(ctx context.Context, timeRange string) (map[string]Stats, error) {
	stats := make(map[string]Stats)
	for _, agg := range []string{"min", "max", "mean"} {
		flux := fmt.Sprintf(`
			from(bucket: %q)
				|> range(start: -%s)
				|> filter(fn: (r) => r._measurement == %q)
				|> group(columns: ["name"])
				|> %s()
		`, s.bucket, timeRange, Measurement, agg)

		result, err := s.query.Query(ctx, flux)
		if err != nil {
			return nil, fmt.Errorf("min/max values: %w", err)
		}
		for result.Next() {
			rec := result.Record()
			name, _ := rec.ValueByKey("name").(string)
			value, ok := rec.Value().(float64)
			if name == "" || !ok {
				continue
			}
			entry := stats[name]
			switch agg {
			case "min":
				entry.Min = value
			case "max":
				entry.Max = value
			case "mean":
				entry.Avg = value
			}
			stats[name] = entry
		}
		if result.Err() != nil {
			return nil, fmt.Errorf("min/max values: %w", result.Err())
		}
	}
	return stats, nil
}

// LastActiveAlarmTime finds when the most recent nonzero alarm code
// was recorded, looking back up to 7 days.
func (s *Store) LastActiveAlarmTime(ctx context.Context) (time.Time, bool, error) {
	flux := fmt.Sprintf(`
		from(bucket: %q)
			|> range(start: -7d)
			|> filter(fn: (r) => r._measurement == %q)
			|> filter(fn: (r) => r.name == "alarm_code")
			|> filter(fn: (r) => r._value > 0)
			|> last()
	`, s.bucket, Measurement)

	result, err := s.query.Query(ctx, flux)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("alarm time: %w", err)
	}
	var t time.Time
	var found bool
	for result.Next() {
		t = result.Record().Time()
		found = true
	}
	if result.Err() != nil {
		return time.Time{}, false, fmt.Errorf("alarm time: %w", result.Err())
	}
	return t, found, nil
}

func nameFilter(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("r.name == %q", n)
	}
	return strings.Join(parts, " or ")
}
