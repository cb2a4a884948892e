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

package dashdata

import (
	"context"
	"math"
	"sync"
	"time"

	"heatmon/internal/analytics"
	"heatmon/internal/provider"
	"heatmon/internal/timeseries"
)

const (
	// fine-grained charts share one timestamp index; small sensor
	// gaps are forward-filled but never more than a few points so
	// stale values don't propagate
	gapFillLimit = 3

	copIntervalMinutes = 15
	eventLimit         = 20
)

// Snapshot is everything the dashboard needs for one time range.
type Snapshot struct {
	COP         COPSection         `json:"cop"`
	Temperature TemperatureSection `json:"temperature"`
	Runtime     RuntimeSection     `json:"runtime"`
	Sankey      SankeySection      `json:"sankey"`
	Performance PerformanceSection `json:"performance"`
	Power       PowerSection       `json:"power"`
	Valve       ValveSection       `json:"valve"`
	Status      StatusSection      `json:"status"`
	Events      []analytics.Event  `json:"events"`
	KPI         KPISection         `json:"kpi"`
	Config      ConfigSection      `json:"config"`
	TimeRange   string             `json:"time_range"`
	Timestamp   time.Time          `json:"timestamp"`
}

type COPSection struct {
	Timestamps     []time.Time `json:"timestamps"`
	Values         []*float64  `json:"values"`
	SeasonalValues []*float64  `json:"seasonal_values"`
	Avg            float64     `json:"avg"`
}

type TemperatureSection struct {
	Timestamps    []time.Time           `json:"timestamps"`
	Metrics       map[string][]*float64 `json:"metrics"`
	RadiatorDelta []*float64            `json:"radiator_delta"`
	BrineDelta    []*float64            `json:"brine_delta"`
}

type RuntimeSection struct {
	CompressorPercent float64 `json:"compressor_percent"`
	AuxHeaterPercent  float64 `json:"aux_heater_percent"`
	InactivePercent   float64 `json:"inactive_percent"`
}

type SankeyNode struct {
	Name string `json:"name"`
}

type SankeyLink struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
}

type SankeySection struct {
	Nodes             []SankeyNode `json:"nodes"`
	Links             []SankeyLink `json:"links"`
	COP               float64      `json:"cop"`
	FreeEnergyPercent float64      `json:"free_energy_percent"`
	HasData           bool         `json:"has_data"`
}

type PerformanceSection struct {
	Timestamps       []time.Time `json:"timestamps"`
	BrineDelta       []*float64  `json:"brine_delta"`
	RadiatorDelta    []*float64  `json:"radiator_delta"`
	CompressorStatus []*float64  `json:"compressor_status"`
}

type PowerSection struct {
	Timestamps            []time.Time `json:"timestamps"`
	PowerConsumption      []*float64  `json:"power_consumption"`
	CompressorStatus      []*float64  `json:"compressor_status"`
	AdditionalHeatPercent []*float64  `json:"additional_heat_percent"`
}

type ValveSection struct {
	Timestamps       []time.Time `json:"timestamps"`
	ValveStatus      []*float64  `json:"valve_status"`
	CompressorStatus []*float64  `json:"compressor_status"`
	HotWaterTemp     []*float64  `json:"hot_water_temp"`
}

// ValueStats is a current reading alongside its range statistics.
type ValueStats struct {
	Current *float64 `json:"current"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
	Avg     *float64 `json:"avg"`
}

type CurrentStatus struct {
	OutdoorTemp         ValueStats `json:"outdoor_temp"`
	IndoorTemp          ValueStats `json:"indoor_temp"`
	HotWater            ValueStats `json:"hot_water"`
	BrineIn             ValueStats `json:"brine_in"`
	BrineOut            ValueStats `json:"brine_out"`
	RadiatorForward     ValueStats `json:"radiator_forward"`
	RadiatorReturn      ValueStats `json:"radiator_return"`
	PowerW              *float64   `json:"power"`
	CompressorRunning   bool       `json:"compressor_running"`
	BrinePumpRunning    bool       `json:"brine_pump_running"`
	RadiatorPumpRunning bool       `json:"radiator_pump_running"`
	SwitchValveStatus   int        `json:"switch_valve_status"`
	AuxHeater           bool       `json:"aux_heater"`
	CurrentCOP          *float64   `json:"current_cop"`
	HotGasTemp          *float64   `json:"hotgas_temp"`
	DegreeMinutes       *float64   `json:"degree_minutes"`
}

type StatusSection struct {
	Alarm     analytics.AlarmStatus `json:"alarm"`
	Current   CurrentStatus         `json:"current"`
	Timestamp time.Time             `json:"timestamp"`
}

type KPISection struct {
	Energy   analytics.EnergyStats   `json:"energy"`
	Runtime  analytics.RuntimeStats  `json:"runtime"`
	HotWater analytics.HotWaterStats `json:"hot_water"`
}

type ConfigSection struct {
	Brand       string `json:"brand"`
	DisplayName string `json:"display_name"`
}

// Snapshot fetches and computes all dashboard sections for timeRange.
// Fetches run concurrently, then the section tasks fan out over the
// shared immutable frames, each writing its own disjoint field.
func (s *Service) Snapshot(ctx context.Context, timeRange string) Snapshot {
	statusFields := provider.StatusFields(s.provider)

	var (
		batch, viz, hotWaterFrame timeseries.Frame
		latest                    map[string]timeseries.Latest
		minMax                    map[string]timeseries.Stats
	)

	var wg sync.WaitGroup
	fetch := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.recoverTask(name)
			if err := fn(); err != nil {
				s.log.Error("fetch %s: %v", name, err)
			}
		}()
	}

	fetch("batch", func() error {
		var err error
		batch, err = s.backend.QueryMetrics(ctx, analytics.BatchMetrics(),
			timeRange, timeseries.AggregationWindow(timeRange), statusFields)
		return err
	})
	fetch("viz", func() error {
		var err error
		viz, err = s.backend.QueryMetrics(ctx, analytics.VizMetrics(),
			timeRange, timeseries.COPAggregationWindow(timeRange), statusFields)
		if err == nil {
			viz.ForwardFill(gapFillLimit)
		}
		return err
	})
	fetch("hotwater", func() error {
		hwRange := hotWaterRange(timeRange)
		var err error
		hotWaterFrame, err = s.backend.QueryMetrics(ctx,
			[]string{analytics.MetricSwitchValveStatus, analytics.MetricPowerConsumption},
			hwRange, timeseries.AggregationWindow(hwRange), statusFields)
		return err
	})
	fetch("latest", func() error {
		var err error
		latest, err = s.backend.LatestValues(ctx)
		return err
	})
	fetch("minmax", func() error {
		var err error
		minMax, err = s.backend.MinMax(ctx, timeRange)
		return err
	})
	wg.Wait()

	// shared inputs for multiple sections, computed once
	copIntervals := analytics.ComputeIntervalCOP(&viz, copIntervalMinutes*time.Minute, s.flowFactor)
	runtimeStats := analytics.ComputeRuntime(
		batch.SeriesFor(analytics.MetricCompressorStatus),
		batch.SeriesFor(analytics.MetricAdditionalHeatPct))
	hotWaterStats := analytics.AnalyzeHotWater(
		hotWaterFrame.SeriesFor(analytics.MetricSwitchValveStatus),
		hotWaterFrame.SeriesFor(analytics.MetricPowerConsumption),
		s.minCycleMinutes)
	alarm := analytics.AlarmFromFrame(&batch, s.provider)
	if alarm.IsAlarm && alarm.Time == nil {
		if t, ok, err := s.backend.LastActiveAlarmTime(ctx); err != nil {
			s.log.Error("fetch alarm time: %v", err)
		} else if ok {
			alarm.Time = &t
		}
	}

	snap := Snapshot{
		Events:    []analytics.Event{},
		TimeRange: timeRange,
		Timestamp: time.Now().UTC(),
		Config: ConfigSection{
			Brand:       s.provider.Brand(),
			DisplayName: s.provider.DisplayName(),
		},
	}

	run := func(name string, fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.recoverTask(name)
			fn()
		}()
	}

	run("cop", func() { snap.COP = copSection(copIntervals) })
	run("temperature", func() { snap.Temperature = temperatureSection(&viz) })
	run("runtime", func() { snap.Runtime = runtimeSection(runtimeStats) })
	run("sankey", func() { snap.Sankey = sankeySection(copIntervals, runtimeStats) })
	run("performance", func() { snap.Performance = performanceSection(&viz) })
	run("power", func() { snap.Power = powerSection(&batch) })
	run("valve", func() { snap.Valve = valveSection(&batch) })
	run("status", func() { snap.Status = statusSection(copIntervals, latest, minMax, alarm) })
	run("events", func() {
		if evs := analytics.BuildEvents(&batch, s.provider, eventLimit); evs != nil {
			snap.Events = evs
		}
	})
	run("kpi", func() {
		snap.KPI = KPISection{
			Energy:   analytics.ComputeEnergyCost(batch.SeriesFor(analytics.MetricPowerConsumption), s.pricePerKWh),
			Runtime:  runtimeStats,
			HotWater: hotWaterStats,
		}
	})
	wg.Wait()

	return snap
}

// recoverTask keeps a panicking fetch or section from taking down
// its siblings. Meant to be deferred inside the task goroutine.
func (s *Service) recoverTask(name string) {
	if r := recover(); r != nil {
		s.log.Error("task %s panicked: %v", name, r)
	}
}

// hotWaterRange widens short ranges: a handful of hours rarely holds
// enough tap water cycles for meaningful statistics.
func hotWaterRange(timeRange string) string {
	switch timeRange {
	case "1h", "6h", "24h":
		return "7d"
	}
	return timeRange
}

func copSection(intervals []analytics.COPInterval) COPSection {
	sec := COPSection{
		Timestamps:     make([]time.Time, 0, len(intervals)),
		Values:         make([]*float64, 0, len(intervals)),
		SeasonalValues: make([]*float64, 0, len(intervals)),
	}
	for _, iv := range intervals {
		sec.Timestamps = append(sec.Timestamps, iv.Time)
		sec.Values = append(sec.Values, iv.COP)
		sec.SeasonalValues = append(sec.SeasonalValues, iv.SeasonalCOP)
	}
	if avg, ok := analytics.AverageCOP(intervals); ok {
		sec.Avg = avg
	}
	return sec
}

var temperatureMetrics = []string{
	analytics.MetricOutdoorTemp, analytics.MetricIndoorTemp,
	analytics.MetricRadiatorForward, analytics.MetricRadiatorReturn,
	analytics.MetricHeatCarrierForward, analytics.MetricHeatCarrierReturn,
	analytics.MetricHotWaterTop, analytics.MetricBrineIn, analytics.MetricBrineOut,
	analytics.MetricPressureTubeTemp, analytics.MetricHotGasCompressor,
	analytics.MetricDegreeMinutes,
}

func temperatureSection(f *timeseries.Frame) TemperatureSection {
	sec := TemperatureSection{
		Timestamps: f.Times,
		Metrics:    make(map[string][]*float64),
	}
	for _, name := range temperatureMetrics {
		if col := f.Column(name); col != nil {
			sec.Metrics[name] = col
		}
	}

	// IVT wires its carrier sensors where thermia has radiator ones
	if f.Column(analytics.MetricHeatCarrierForward) != nil && f.Column(analytics.MetricHeatCarrierReturn) != nil {
		sec.RadiatorDelta = deltaColumn(f, analytics.MetricHeatCarrierForward, analytics.MetricHeatCarrierReturn)
	} else {
		sec.RadiatorDelta = deltaColumn(f, analytics.MetricRadiatorForward, analytics.MetricRadiatorReturn)
	}
	sec.BrineDelta = deltaColumn(f, analytics.MetricBrineIn, analytics.MetricBrineOut)
	return sec
}

func runtimeSection(rt analytics.RuntimeStats) RuntimeSection {
	inactive := 100 - rt.CompressorPercent - rt.AuxHeaterPercent
	if inactive < 0 {
		inactive = 0
	}
	return RuntimeSection{
		CompressorPercent: rt.CompressorPercent,
		AuxHeaterPercent:  rt.AuxHeaterPercent,
		InactivePercent:   inactive,
	}
}

// sankeySection lays out the energy flow diagram, normalized to 100
// units of electric input. The COP falls back to a typical ground
// source value when the period produced nothing usable.
func sankeySection(intervals []analytics.COPInterval, rt analytics.RuntimeStats) SankeySection {
	avgCOP, hasData := analytics.AverageCOP(intervals)
	if !hasData {
		avgCOP = 3.0
	}
	if avgCOP < 1.5 || avgCOP > 5.0 {
		avgCOP = 3.5
	}

	const electricPower = 100.0
	groundEnergy := electricPower * (avgCOP - 1)
	auxHeaterPower := 0.0
	if rt.AuxHeaterPercent > 0 {
		auxHeaterPower = rt.AuxHeaterPercent / 100 * 50
	}
	totalHeat := electricPower + groundEnergy + auxHeaterPower
	freeEnergyPercent := 0.0
	if totalHeat > 0 {
		freeEnergyPercent = groundEnergy / totalHeat * 100
	}

	sec := SankeySection{
		Nodes: []SankeyNode{
			{Name: "🌍 Ground Energy"},
			{Name: "⚡ Electric Power"},
			{Name: "🔄 Heat Pump"},
			{Name: "🏠 Heat to House"},
		},
		Links: []SankeyLink{
			{Source: "🌍 Ground Energy", Target: "🔄 Heat Pump", Value: groundEnergy},
			{Source: "⚡ Electric Power", Target: "🔄 Heat Pump", Value: electricPower},
			{Source: "🔄 Heat Pump", Target: "🏠 Heat to House", Value: totalHeat - auxHeaterPower},
		},
		COP:               avgCOP,
		FreeEnergyPercent: freeEnergyPercent,
		HasData:           hasData,
	}
	if auxHeaterPower > 5 {
		sec.Nodes = append(sec.Nodes, SankeyNode{Name: "🔥 Auxiliary Heat"})
		sec.Links = append(sec.Links, SankeyLink{
			Source: "🔥 Auxiliary Heat", Target: "🏠 Heat to House", Value: auxHeaterPower,
		})
	}
	return sec
}

func performanceSection(f *timeseries.Frame) PerformanceSection {
	return PerformanceSection{
		Timestamps:       f.Times,
		BrineDelta:       deltaColumn(f, analytics.MetricBrineIn, analytics.MetricBrineOut),
		RadiatorDelta:    deltaColumn(f, analytics.MetricRadiatorForward, analytics.MetricRadiatorReturn),
		CompressorStatus: f.Column(analytics.MetricCompressorStatus),
	}
}

func powerSection(f *timeseries.Frame) PowerSection {
	return PowerSection{
		Timestamps:            f.Times,
		PowerConsumption:      f.Column(analytics.MetricPowerConsumption),
		CompressorStatus:      f.Column(analytics.MetricCompressorStatus),
		AdditionalHeatPercent: f.Column(analytics.MetricAdditionalHeatPct),
	}
}

func valveSection(f *timeseries.Frame) ValveSection {
	return ValveSection{
		Timestamps:       f.Times,
		ValveStatus:      f.Column(analytics.MetricSwitchValveStatus),
		CompressorStatus: f.Column(analytics.MetricCompressorStatus),
		HotWaterTemp:     f.Column(analytics.MetricHotWaterTop),
	}
}

func statusSection(intervals []analytics.COPInterval, latest map[string]timeseries.Latest,
	minMax map[string]timeseries.Stats, alarm analytics.AlarmStatus) StatusSection {

	latestValue := func(name string) (float64, bool) {
		l, ok := latest[name]
		return l.Value, ok
	}
	valueStats := func(name string) ValueStats {
		var vs ValueStats
		if v, ok := latestValue(name); ok {
			vs.Current = fptr(round1(v))
		}
		if mm, ok := minMax[name]; ok {
			vs.Min = fptr(round1(mm.Min))
			vs.Max = fptr(round1(mm.Max))
			vs.Avg = fptr(round1(mm.Avg))
		}
		return vs
	}
	isOn := func(name string) bool {
		v, ok := latestValue(name)
		return ok && v > 0
	}

	cur := CurrentStatus{
		OutdoorTemp:         valueStats(analytics.MetricOutdoorTemp),
		IndoorTemp:          valueStats(analytics.MetricIndoorTemp),
		HotWater:            valueStats(analytics.MetricHotWaterTop),
		BrineIn:             valueStats(analytics.MetricBrineIn),
		BrineOut:            valueStats(analytics.MetricBrineOut),
		CompressorRunning:   isOn(analytics.MetricCompressorStatus),
		BrinePumpRunning:    isOn(analytics.MetricBrinePumpStatus),
		RadiatorPumpRunning: isOn(analytics.MetricRadiatorPumpStatus),
		AuxHeater:           isOn(analytics.MetricAdditionalHeatPct),
	}

	// IVT wires its carrier sensors where thermia has radiator ones
	cur.RadiatorForward = valueStats(analytics.MetricHeatCarrierForward)
	if cur.RadiatorForward.Current == nil {
		cur.RadiatorForward = valueStats(analytics.MetricRadiatorForward)
	}
	cur.RadiatorReturn = valueStats(analytics.MetricHeatCarrierReturn)
	if cur.RadiatorReturn.Current == nil {
		cur.RadiatorReturn = valueStats(analytics.MetricRadiatorReturn)
	}

	if v, ok := latestValue(analytics.MetricPowerConsumption); ok {
		cur.PowerW = fptr(math.Round(v))
	}
	if v, ok := latestValue(analytics.MetricSwitchValveStatus); ok {
		cur.SwitchValveStatus = int(v)
	}

	// hot gas sensor naming differs per brand
	if v, ok := latestValue(analytics.MetricPressureTubeTemp); ok {
		cur.HotGasTemp = fptr(round1(v))
	} else if v, ok := latestValue(analytics.MetricHotGasCompressor); ok {
		cur.HotGasTemp = fptr(round1(v))
	}
	if v, ok := latestValue(analytics.MetricDegreeMinutes); ok {
		cur.DegreeMinutes = fptr(math.Round(v))
	}

	// period COP: the final cumulative value covers the whole range
	for i := len(intervals) - 1; i >= 0; i-- {
		if intervals[i].SeasonalCOP != nil {
			cur.CurrentCOP = fptr(round2(*intervals[i].SeasonalCOP))
			break
		}
	}
	if cur.CurrentCOP == nil {
		if avg, ok := analytics.AverageCOP(intervals); ok {
			cur.CurrentCOP = fptr(round2(avg))
		}
	}

	return StatusSection{
		Alarm:     alarm,
		Current:   cur,
		Timestamp: time.Now().UTC(),
	}
}

// deltaColumn is a - b per row, nil wherever either side is missing.
func deltaColumn(f *timeseries.Frame, a, b string) []*float64 {
	colA, colB := f.Column(a), f.Column(b)
	if colA == nil || colB == nil {
		return nil
	}
	out := make([]*float64, len(colA))
	for i := range colA {
		if colA[i] == nil || colB[i] == nil {
			continue
		}
		out[i] = fptr(*colA[i] - *colB[i])
	}
	return out
}

func fptr(v float64) *float64 { return &v }

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
