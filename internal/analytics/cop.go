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

// COP sample gates. Samples only contribute when the compressor is
// running, the carrier delta is a real heating signal, and the pump
// draws more than idle power.
const (
	copMinDelta  = 0.5 // °C
	copMinPowerW = 100
	copMaxGapH   = 1.0 // clamp sample gaps, hours

	// intervals and cumulative sums need a minimum of electrical
	// input before a ratio is meaningful
	copIntervalMinKWh   = 0.01
	copCumulativeMinKWh = 0.1
)

// COPInterval is one aggregation interval of the COP series.
// COP and SeasonalCOP are nil when too little electrical energy
// was used for the ratio to mean anything.
type COPInterval struct {
	Time        time.Time `json:"time"`
	HeatKWh     float64   `json:"heat_kwh"`
	ElecKWh     float64   `json:"elec_kwh"`
	COP         *float64  `json:"estimated_cop"`
	SeasonalCOP *float64  `json:"seasonal_cop"`
	AvgPowerW   float64   `json:"avg_power_w"`
}

// TempPair names the forward/return column pair COP was derived from.
type TempPair struct {
	Forward string
	Return  string
}

// SelectTempPair picks the temperature pair for heat output: the
// internal heat carrier sensors when they carry valid data, the
// radiator circuit otherwise. A sensor that is absent or reads at or
// below zero on average is treated as not installed.
func SelectTempPair(frame *timeseries.Frame) (TempPair, bool) {
	if mean, ok := frame.ColumnMean(MetricHeatCarrierForward); ok && mean > 0 {
		if _, ok := frame.Columns[MetricHeatCarrierReturn]; ok {
			return TempPair{MetricHeatCarrierForward, MetricHeatCarrierReturn}, true
		}
	}
	if mean, ok := frame.ColumnMean(MetricRadiatorForward); ok && mean > 0 {
		if _, ok := frame.Columns[MetricRadiatorReturn]; ok {
			return TempPair{MetricRadiatorForward, MetricRadiatorReturn}, true
		}
	}
	return TempPair{}, false
}

// ComputeIntervalCOP estimates heating COP per fixed interval.
//
// Heat output is approximated from the carrier delta: a flow factor
// converts degrees of delta into kW of delivered heat, so each sample
// contributes delta × flowFactor × dt kWh against power × dt kWh of
// electrical input. Per interval, COP = Σheat / Σelec; SeasonalCOP is
// the same ratio over the running totals since the start of the frame.
// Values are deliberately not clamped so a miscalibrated flow factor
// shows up in the chart instead of being hidden.
func ComputeIntervalCOP(frame *timeseries.Frame, interval time.Duration, flowFactor float64) []COPInterval {
	if frame.Empty() {
		return nil
	}
	pair, ok := SelectTempPair(frame)
	if !ok {
		return nil
	}
	if _, ok := frame.Columns[MetricPowerConsumption]; !ok {
		return nil
	}

	type accum struct {
		heat, elec float64
		powerSum   float64
		powerN     int
	}
	intervals := make(map[time.Time]*accum)
	var order []time.Time

	for i := 0; i < frame.Len(); i++ {
		var dtHours float64
		if i > 0 {
			dtHours = frame.Times[i].Sub(frame.Times[i-1]).Hours()
			if dtHours < 0 {
				dtHours = 0
			}
			if dtHours > copMaxGapH {
				dtHours = copMaxGapH
			}
		}

		bucket := frame.Times[i].Truncate(interval)
		acc := intervals[bucket]
		if acc == nil {
			acc = &accum{}
			intervals[bucket] = acc
			order = append(order, bucket)
		}

		power := frame.Value(MetricPowerConsumption, i)
		if power != nil {
			acc.powerSum += *power
			acc.powerN++
		}

		forward := frame.Value(pair.Forward, i)
		ret := frame.Value(pair.Return, i)
		if forward == nil || ret == nil || power == nil {
			continue
		}
		delta := *forward - *ret

		// missing compressor data counts as running, matching
		// installs without a status feed
		running := true
		if comp := frame.Value(MetricCompressorStatus, i); comp != nil {
			running = *comp > 0
		}
		if !running || delta <= copMinDelta || *power <= copMinPowerW {
			continue
		}

		acc.heat += delta * flowFactor * dtHours
		acc.elec += *power / 1000.0 * dtHours
	}

	result := make([]COPInterval, 0, len(order))
	var cumHeat, cumElec float64
	for _, bucket := range order {
		acc := intervals[bucket]
		entry := COPInterval{
			Time:    bucket,
			HeatKWh: acc.heat,
			ElecKWh: acc.elec,
		}
		if acc.powerN > 0 {
			entry.AvgPowerW = acc.powerSum / float64(acc.powerN)
		}
		if acc.elec > copIntervalMinKWh {
			cop := acc.heat / acc.elec
			entry.COP = &cop
		}
		cumHeat += acc.heat
		cumElec += acc.elec
		if cumElec > copCumulativeMinKWh {
			scop := cumHeat / cumElec
			entry.SeasonalCOP = &scop
		}
		result = append(result, entry)
	}
	return result
}

// AverageCOP reduces an interval series to the overall Σheat/Σelec.
func AverageCOP(intervals []COPInterval) (float64, bool) {
	var heat, elec float64
	for _, iv := range intervals {
		heat += iv.HeatKWh
		elec += iv.ElecKWh
	}
	if elec <= copCumulativeMinKWh {
		return 0, false
	}
	return heat / elec, true
}
