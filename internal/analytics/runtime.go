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
	"math"

	"heatmon/internal/timeseries"
)

// RuntimeStats reports how long the compressor and auxiliary heater
// were active over an observed period.
type RuntimeStats struct {
	CompressorHours   float64 `json:"compressor_runtime_hours"`
	CompressorPercent float64 `json:"compressor_runtime_percent"`
	AuxHeaterHours    float64 `json:"aux_heater_runtime_hours"`
	AuxHeaterPercent  float64 `json:"aux_heater_runtime_percent"`
	TotalHours        float64 `json:"total_hours"`
}

// EnergyStats reports consumption and cost over an observed period.
type EnergyStats struct {
	TotalKWh   float64 `json:"total_kwh"`
	TotalCost  float64 `json:"total_cost"`
	AvgPowerW  float64 `json:"avg_power"`
	PeakPowerW float64 `json:"peak_power"`
}

// ComputeRuntime integrates on-time from irregularly spaced status
// samples. A sample that reads on is credited with the real elapsed
// time until the next sample, and the final sample, if on, is
// credited with the preceding gap. Percentages are relative to the
// observed span of both series together.
func ComputeRuntime(compressor, auxHeat timeseries.Series) RuntimeStats {
	totalHours := observedSpanHours(compressor, auxHeat)
	if totalHours == 0 {
		return RuntimeStats{}
	}

	compHours := activeSeconds(compressor) / 3600
	auxHours := activeSeconds(auxHeat) / 3600

	return RuntimeStats{
		CompressorHours:   round1(compHours),
		CompressorPercent: round1(compHours / totalHours * 100),
		AuxHeaterHours:    round1(auxHours),
		AuxHeaterPercent:  round1(auxHours / totalHours * 100),
		TotalHours:        round1(totalHours),
	}
}

func activeSeconds(s timeseries.Series) float64 {
	var seconds float64
	for i := 0; i < len(s)-1; i++ {
		if s[i].Value > 0 {
			seconds += s[i+1].Time.Sub(s[i].Time).Seconds()
		}
	}
	// credit the last sample with the previous interval
	if len(s) > 1 && s[len(s)-1].Value > 0 {
		seconds += s[len(s)-1].Time.Sub(s[len(s)-2].Time).Seconds()
	}
	return seconds
}

func observedSpanHours(series ...timeseries.Series) float64 {
	var haveAny bool
	var first, last int64
	for _, s := range series {
		for _, sample := range s {
			u := sample.Time.UnixNano()
			if !haveAny || u < first {
				first = u
			}
			if !haveAny || u > last {
				last = u
			}
			haveAny = true
		}
	}
	if !haveAny {
		return 0
	}
	return float64(last-first) / float64(3600*1e9)
}

// ComputeEnergyCost integrates power samples into consumed energy and
// prices it. Each sample is weighted by the real time since the
// previous one, so uneven sampling does not skew the total.
func ComputeEnergyCost(power timeseries.Series, pricePerKWh float64) EnergyStats {
	if len(power) == 0 {
		return EnergyStats{}
	}
	var totalKWh, sum, peak float64
	for i, sample := range power {
		if i > 0 {
			dtHours := sample.Time.Sub(power[i-1].Time).Hours()
			totalKWh += sample.Value * dtHours / 1000
		}
		sum += sample.Value
		if sample.Value > peak {
			peak = sample.Value
		}
	}
	return EnergyStats{
		TotalKWh:   round2(totalKWh),
		TotalCost:  round2(totalKWh * pricePerKWh),
		AvgPowerW:  math.Round(sum / float64(len(power))),
		PeakPowerW: math.Round(peak),
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
