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

// Package timeseries queries heat pump metrics from InfluxDB and
// aligns them into timestamp-indexed frames for the analytics layer.
package timeseries

import (
	"sort"
	"time"
)

// Sample is one observed value of one metric.
type Sample struct {
	Time  time.Time
	Value float64
}

// Series is a time-ordered list of samples for a single metric.
type Series []Sample

// Frame holds multiple metrics aligned on a shared timestamp index.
// A nil cell means the metric had no sample at that timestamp.
type Frame struct {
	Times   []time.Time
	Columns map[string][]*float64
}

// Empty reports whether the frame holds no rows.
func (f *Frame) Empty() bool {
	return len(f.Times) == 0
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Times)
}

// Column returns the cells for a metric, or nil if absent.
func (f *Frame) Column(name string) []*float64 {
	return f.Columns[name]
}

// Value returns the cell for a metric at row i, nil when missing.
func (f *Frame) Value(name string, i int) *float64 {
	col := f.Columns[name]
	if col == nil || i < 0 || i >= len(col) {
		return nil
	}
	return col[i]
}

// SeriesFor extracts the non-nil samples of one column as a Series.
func (f *Frame) SeriesFor(name string) Series {
	col := f.Columns[name]
	if col == nil {
		return nil
	}
	var s Series
	for i, v := range col {
		if v != nil {
			s = append(s, Sample{Time: f.Times[i], Value: *v})
		}
	}
	return s
}

// ColumnMean averages the non-nil cells of a column. The second
// return is false when the column is absent or all-nil.
func (f *Frame) ColumnMean(name string) (float64, bool) {
	col := f.Columns[name]
	if col == nil {
		return 0, false
	}
	var sum float64
	var n int
	for _, v := range col {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// FillRate is the fraction of non-nil cells across all columns.
// Used to detect when backend pivoting failed to align rows.
func (f *Frame) FillRate() float64 {
	if len(f.Times) == 0 || len(f.Columns) == 0 {
		return 0
	}
	total := len(f.Times) * len(f.Columns)
	var filled int
	for _, col := range f.Columns {
		for _, v := range col {
			if v != nil {
				filled++
			}
		}
	}
	return float64(filled) / float64(total)
}

// ForwardFill copies the last seen value into nil cells, but across
// at most limit consecutive gaps. Larger gaps stay nil so stale
// values do not bridge genuine outages.
func (f *Frame) ForwardFill(limit int) {
	for _, col := range f.Columns {
		var last *float64
		gap := 0
		for i := range col {
			if col[i] != nil {
				last = col[i]
				gap = 0
				continue
			}
			gap++
			if last != nil && gap <= limit {
				v := *last
				col[i] = &v
			}
		}
	}
}

// FromSeries aligns per-metric series onto the sorted union of their
// timestamps. This is the client-side regrouping fallback used when
// the storage backend cannot pivot reliably.
func FromSeries(series map[string]Series) Frame {
	stamps := make(map[time.Time]bool)
	for _, s := range series {
		for _, sample := range s {
			stamps[sample.Time] = true
		}
	}
	times := make([]time.Time, 0, len(stamps))
	for t := range stamps {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	index := make(map[time.Time]int, len(times))
	for i, t := range times {
		index[t] = i
	}

	frame := Frame{
		Times:   times,
		Columns: make(map[string][]*float64, len(series)),
	}
	for name, s := range series {
		col := make([]*float64, len(times))
		for _, sample := range s {
			v := sample.Value
			col[index[sample.Time]] = &v
		}
		frame.Columns[name] = col
	}
	return frame
}

// Merge combines two frames on the sorted union of their timestamps.
// When both frames carry the same column, b's cells win where set.
func Merge(a, b Frame) Frame {
	series := make(map[string]Series)
	collect := func(f Frame) {
		for name := range f.Columns {
			s := f.SeriesFor(name)
			series[name] = append(series[name], s...)
		}
	}
	collect(a)
	collect(b)
	for name := range series {
		s := series[name]
		sort.Slice(s, func(i, j int) bool { return s[i].Time.Before(s[j].Time) })
		series[name] = s
	}
	return FromSeries(series)
}
