package analytics

import (
	"testing"

	"heatmon/internal/timeseries"
)

func TestDetectHotWaterCycles(t *testing.T) {
	valve := timeseries.Series{
		{Time: minutes(0), Value: 0},
		{Time: minutes(5), Value: 1}, // cycle 1 start
		{Time: minutes(25), Value: 0},
		{Time: minutes(40), Value: 1}, // cycle 2 start
		{Time: minutes(55), Value: 0},
		{Time: minutes(60), Value: 0},
	}
	power := timeseries.Series{
		{Time: minutes(5), Value: 3000},
		{Time: minutes(15), Value: 3000},
		{Time: minutes(25), Value: 3000},
		{Time: minutes(40), Value: 3000},
		{Time: minutes(55), Value: 3000},
	}
	cycles := DetectHotWaterCycles(valve, power, 2)
	if len(cycles) != 2 {
		t.Fatalf("cycles = %d, want 2", len(cycles))
	}
	if cycles[0].Minutes() != 20 {
		t.Errorf("cycle 1 duration = %v, want 20", cycles[0].Minutes())
	}
	// 3kW over 20 min = 1 kWh
	if !closeEnough(cycles[0].EnergyKWh, 1.0) {
		t.Errorf("cycle 1 energy = %v, want 1.0", cycles[0].EnergyKWh)
	}
	if cycles[1].Minutes() != 15 {
		t.Errorf("cycle 2 duration = %v, want 15", cycles[1].Minutes())
	}
}

func TestDetectHotWaterCyclesFiltersShort(t *testing.T) {
	valve := timeseries.Series{
		{Time: minutes(0), Value: 0},
		{Time: minutes(1), Value: 1}, // valve flap, under 2 minutes
		{Time: minutes(2), Value: 0},
		{Time: minutes(10), Value: 1},
		{Time: minutes(30), Value: 0},
	}
	cycles := DetectHotWaterCycles(valve, nil, 2)
	if len(cycles) != 1 {
		t.Fatalf("cycles = %d, want 1 (short cycle filtered)", len(cycles))
	}
	if !cycles[0].Start.Equal(minutes(10)) {
		t.Errorf("start = %v", cycles[0].Start)
	}
}

func TestDetectHotWaterCyclesOpenEnded(t *testing.T) {
	valve := timeseries.Series{
		{Time: minutes(0), Value: 0},
		{Time: minutes(5), Value: 1},
		{Time: minutes(30), Value: 1}, // still producing at window end
	}
	if cycles := DetectHotWaterCycles(valve, nil, 2); len(cycles) != 0 {
		t.Errorf("cycles = %d, want 0 for unterminated cycle", len(cycles))
	}
}

func TestAnalyzeHotWater(t *testing.T) {
	// two cycles over a 24h valve span
	valve := timeseries.Series{
		{Time: minutes(0), Value: 0},
		{Time: minutes(10), Value: 1},
		{Time: minutes(30), Value: 0},
		{Time: minutes(60), Value: 1},
		{Time: minutes(70), Value: 0},
		{Time: minutes(24 * 60), Value: 0},
	}
	power := timeseries.Series{
		{Time: minutes(10), Value: 2000},
		{Time: minutes(30), Value: 2000},
		{Time: minutes(60), Value: 4000},
		{Time: minutes(70), Value: 4000},
	}
	stats := AnalyzeHotWater(valve, power, 2)
	if stats.TotalCycles != 2 {
		t.Fatalf("total cycles = %d, want 2", stats.TotalCycles)
	}
	if stats.AvgCycleMinutes != 15 {
		t.Errorf("avg duration = %v, want 15", stats.AvgCycleMinutes)
	}
	// cycle energies: 2kW*20min = 0.67, 4kW*10min = 0.67 -> avg 0.67
	if stats.AvgEnergyKWh != 0.67 {
		t.Errorf("avg energy = %v, want 0.67", stats.AvgEnergyKWh)
	}
	if stats.CyclesPerDay != 2 {
		t.Errorf("cycles per day = %v, want 2", stats.CyclesPerDay)
	}
}

func TestAnalyzeHotWaterNoCycles(t *testing.T) {
	valve := timeseries.Series{
		{Time: minutes(0), Value: 0},
		{Time: minutes(60), Value: 0},
	}
	if stats := AnalyzeHotWater(valve, nil, 2); stats != (HotWaterStats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
}
