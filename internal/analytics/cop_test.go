package analytics

import (
	"testing"
	"time"

	"heatmon/internal/timeseries"
)

var t0 = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func minutes(n int) time.Time { return t0.Add(time.Duration(n) * time.Minute) }

func fp(v float64) *float64 { return &v }

// frame with evenly spaced rows and constant columns
func steadyFrame(n int, stepMinutes int, cols map[string]float64) *timeseries.Frame {
	frame := &timeseries.Frame{Columns: map[string][]*float64{}}
	for i := 0; i < n; i++ {
		frame.Times = append(frame.Times, minutes(i*stepMinutes))
	}
	for name, v := range cols {
		col := make([]*float64, n)
		for i := range col {
			col[i] = fp(v)
		}
		frame.Columns[name] = col
	}
	return frame
}

func TestComputeIntervalCOPSteadyState(t *testing.T) {
	// 5°C delta, 2kW draw, compressor on, 5-minute samples for 1h
	frame := steadyFrame(13, 5, map[string]float64{
		MetricRadiatorForward:  40,
		MetricRadiatorReturn:   35,
		MetricPowerConsumption: 2000,
		MetricCompressorStatus: 1,
	})

	intervals := ComputeIntervalCOP(frame, 15*time.Minute, 2.7)
	if len(intervals) == 0 {
		t.Fatal("no intervals")
	}

	// each sample after the first: heat = 5*2.7*(5/60), elec = 2*(5/60)
	// ratio per interval must equal 5*2.7/2 = 6.75
	want := 5 * 2.7 / 2.0
	for i, iv := range intervals[1:] { // first interval holds the zero-dt sample
		if iv.COP == nil {
			t.Fatalf("interval %d: COP nil", i+1)
		}
		if !closeEnough(*iv.COP, want) {
			t.Errorf("interval %d: COP = %v, want %v", i+1, *iv.COP, want)
		}
	}

	last := intervals[len(intervals)-1]
	if last.SeasonalCOP == nil {
		t.Fatal("seasonal COP nil on last interval")
	}
	if !closeEnough(*last.SeasonalCOP, want) {
		t.Errorf("seasonal COP = %v, want %v", *last.SeasonalCOP, want)
	}
}

func TestComputeIntervalCOPGates(t *testing.T) {
	tests := []struct {
		name string
		cols map[string]float64
	}{
		{"delta too small", map[string]float64{
			MetricRadiatorForward:  40,
			MetricRadiatorReturn:   39.6, // delta 0.4 < 0.5
			MetricPowerConsumption: 2000,
			MetricCompressorStatus: 1,
		}},
		{"idle power", map[string]float64{
			MetricRadiatorForward:  40,
			MetricRadiatorReturn:   35,
			MetricPowerConsumption: 80, // < 100W
			MetricCompressorStatus: 1,
		}},
		{"compressor off", map[string]float64{
			MetricRadiatorForward:  40,
			MetricRadiatorReturn:   35,
			MetricPowerConsumption: 2000,
			MetricCompressorStatus: 0,
		}},
	}
	for _, tt := range tests {
		frame := steadyFrame(13, 5, tt.cols)
		intervals := ComputeIntervalCOP(frame, 15*time.Minute, 2.7)
		for _, iv := range intervals {
			if iv.HeatKWh != 0 || iv.ElecKWh != 0 {
				t.Errorf("%s: interval accumulated energy: %+v", tt.name, iv)
			}
			if iv.COP != nil {
				t.Errorf("%s: COP = %v, want nil", tt.name, *iv.COP)
			}
		}
	}
}

func TestComputeIntervalCOPMissingCompressorMeansRunning(t *testing.T) {
	frame := steadyFrame(5, 5, map[string]float64{
		MetricRadiatorForward:  40,
		MetricRadiatorReturn:   35,
		MetricPowerConsumption: 2000,
	})
	intervals := ComputeIntervalCOP(frame, 15*time.Minute, 2.7)
	var heat float64
	for _, iv := range intervals {
		heat += iv.HeatKWh
	}
	if heat == 0 {
		t.Error("no heat accumulated without compressor column")
	}
}

func TestComputeIntervalCOPClampsLargeGaps(t *testing.T) {
	frame := &timeseries.Frame{
		Times: []time.Time{t0, t0.Add(5 * time.Hour)},
		Columns: map[string][]*float64{
			MetricRadiatorForward:  {fp(40), fp(40)},
			MetricRadiatorReturn:   {fp(35), fp(35)},
			MetricPowerConsumption: {fp(2000), fp(2000)},
			MetricCompressorStatus: {fp(1), fp(1)},
		},
	}
	intervals := ComputeIntervalCOP(frame, 15*time.Minute, 2.7)
	var heat float64
	for _, iv := range intervals {
		heat += iv.HeatKWh
	}
	// gap clamped to 1h: heat = 5 * 2.7 * 1
	if !closeEnough(heat, 5*2.7) {
		t.Errorf("heat = %v, want %v (gap not clamped)", heat, 5*2.7)
	}
}

func TestComputeIntervalCOPNoPowerColumn(t *testing.T) {
	frame := steadyFrame(5, 5, map[string]float64{
		MetricRadiatorForward: 40,
		MetricRadiatorReturn:  35,
	})
	if got := ComputeIntervalCOP(frame, 15*time.Minute, 2.7); got != nil {
		t.Errorf("expected nil without power data, got %d intervals", len(got))
	}
}

func TestSelectTempPairPrefersHeatCarrier(t *testing.T) {
	frame := steadyFrame(3, 5, map[string]float64{
		MetricHeatCarrierForward: 38,
		MetricHeatCarrierReturn:  33,
		MetricRadiatorForward:    40,
		MetricRadiatorReturn:     35,
	})
	pair, ok := SelectTempPair(frame)
	if !ok || pair.Forward != MetricHeatCarrierForward {
		t.Errorf("pair = %+v, ok = %v", pair, ok)
	}
}

func TestSelectTempPairFallsBackToRadiator(t *testing.T) {
	// heat carrier sensors disconnected, reading below zero
	frame := steadyFrame(3, 5, map[string]float64{
		MetricHeatCarrierForward: -48.3,
		MetricHeatCarrierReturn:  -48.3,
		MetricRadiatorForward:    40,
		MetricRadiatorReturn:     35,
	})
	pair, ok := SelectTempPair(frame)
	if !ok || pair.Forward != MetricRadiatorForward {
		t.Errorf("pair = %+v, ok = %v", pair, ok)
	}
}

func TestSelectTempPairNoValidData(t *testing.T) {
	frame := steadyFrame(3, 5, map[string]float64{
		MetricOutdoorTemp: -5,
	})
	if _, ok := SelectTempPair(frame); ok {
		t.Error("expected no pair without forward/return data")
	}
}

func TestAverageCOP(t *testing.T) {
	intervals := []COPInterval{
		{HeatKWh: 2.0, ElecKWh: 0.5},
		{HeatKWh: 1.0, ElecKWh: 0.5},
	}
	avg, ok := AverageCOP(intervals)
	if !ok || !closeEnough(avg, 3.0) {
		t.Errorf("AverageCOP = %v, %v", avg, ok)
	}

	if _, ok := AverageCOP([]COPInterval{{HeatKWh: 0.1, ElecKWh: 0.05}}); ok {
		t.Error("expected no average below the cumulative energy gate")
	}
}

func closeEnough(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
