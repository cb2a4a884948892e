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

package analytics

import (
	"time"

	"heatmon/internal/timeseries"
)

// HotWaterStats summarizes tap water production cycles.
type HotWaterStats struct {
	TotalCycles     int     `json:"total_cycles"`
	AvgCycleMinutes float64 `json:"avg_cycle_duration_minutes"`
	AvgEnergyKWh    float64 `json:"avg_energy_per_cycle_kwh"`
	CyclesPerDay    float64 `json:"cycles_per_day"`
}

// HotWaterCycle is one completed valve cycle.
type HotWaterCycle struct {
	Start     time.Time
	End       time.Time
	EnergyKWh float64
}

// Minutes returns the cycle duration in minutes.
func (c HotWaterCycle) Minutes() float64 {
	return c.End.Sub(c.Start).Minutes()
}

// DetectHotWaterCycles finds hot water production cycles from the
// switch valve signal: a cycle starts on a 0→1 transition and ends
// at the first 0 sample after it. Cycles shorter than minCycleMinutes
// are valve flaps, not real production, and are dropped. Energy per
// cycle integrates the power samples inside the cycle window.
func DetectHotWaterCycles(valve, power timeseries.Series, minCycleMinutes float64) []HotWaterCycle {
	var cycles []HotWaterCycle
	for i := 1; i < len(valve); i++ {
		if valve[i].Value != 1 || valve[i-1].Value != 0 {
			continue
		}
		start := valve[i].Time

		var end time.Time
		var closed bool
		for j := i + 1; j < len(valve); j++ {
			if valve[j].Value == 0 {
				end = valve[j].Time
				closed = true
				break
			}
		}
		if !closed {
			// cycle still running at the end of the window
			continue
		}
		if end.Sub(start).Minutes() < minCycleMinutes {
			continue
		}
		cycles = append(cycles, HotWaterCycle{
			Start:     start,
			End:       end,
			EnergyKWh: cycleEnergyKWh(power, start, end),
		})
	}
	return cycles
}

func cycleEnergyKWh(power timeseries.Series, start, end time.Time) float64 {
	var window timeseries.Series
	for _, sample := range power {
		if !sample.Time.Before(start) && !sample.Time.After(end) {
			window = append(window, sample)
		}
	}
	var kwh float64
	for i := 1; i < len(window); i++ {
		dtHours := window[i].Time.Sub(window[i-1].Time).Hours()
		kwh += window[i].Value * dtHours / 1000
	}
	return kwh
}

// AnalyzeHotWater reduces detected cycles to the dashboard summary.
// Cycles per day is relative to the observed valve signal span.
func AnalyzeHotWater(valve, power timeseries.Series, minCycleMinutes float64) HotWaterStats {
	cycles := DetectHotWaterCycles(valve, power, minCycleMinutes)
	if len(cycles) == 0 {
		return HotWaterStats{}
	}

	var durationSum, energySum float64
	for _, c := range cycles {
		durationSum += c.Minutes()
		energySum += c.EnergyKWh
	}
	n := float64(len(cycles))

	stats := HotWaterStats{
		TotalCycles:     len(cycles),
		AvgCycleMinutes: round1(durationSum / n),
		AvgEnergyKWh:    round2(energySum / n),
	}
	if len(valve) > 1 {
		days := valve[len(valve)-1].Time.Sub(valve[0].Time).Hours() / 24
		if days > 0 {
			stats.CyclesPerDay = round1(n / days)
		}
	}
	return stats
}
