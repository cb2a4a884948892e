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

// Package analytics derives heat pump performance figures from
// aligned metric frames: COP, runtime, energy cost, hot water
// cycles, and the event log.
package analytics

// Canonical metric names. Register catalogs across brands map onto
// these so the calculations stay brand-agnostic.
const (
	MetricOutdoorTemp        = "outdoor_temp"
	MetricIndoorTemp         = "indoor_temp"
	MetricRadiatorForward    = "radiator_forward"
	MetricRadiatorReturn     = "radiator_return"
	MetricHeatCarrierForward = "heat_carrier_forward"
	MetricHeatCarrierReturn  = "heat_carrier_return"
	MetricHotWaterTop        = "hot_water_top"
	MetricBrineIn            = "brine_in_evaporator"
	MetricBrineOut           = "brine_out_condenser"
	MetricCompressorStatus   = "compressor_status"
	MetricBrinePumpStatus    = "brine_pump_status"
	MetricRadiatorPumpStatus = "radiator_pump_status"
	MetricSwitchValveStatus  = "switch_valve_status"
	MetricAdditionalHeatPct  = "additional_heat_percent"
	MetricPowerConsumption   = "power_consumption"
	MetricAlarmStatus        = "alarm_status"
	MetricAlarmCode          = "alarm_code"
	MetricPressureTubeTemp   = "pressure_tube_temp"
	MetricHotGasCompressor   = "hot_gas_compressor"
	MetricDegreeMinutes      = "degree_minutes"
)

// BatchMetrics is everything the dashboard snapshot needs in one
// coarse-grained query, including alarm and status signals for
// event detection.
func BatchMetrics() []string {
	return []string{
		MetricOutdoorTemp, MetricIndoorTemp,
		MetricRadiatorForward, MetricRadiatorReturn,
		MetricHeatCarrierForward, MetricHeatCarrierReturn,
		MetricHotWaterTop, MetricBrineIn, MetricBrineOut,
		MetricCompressorStatus, MetricPowerConsumption,
		MetricAdditionalHeatPct, MetricSwitchValveStatus,
		MetricBrinePumpStatus, MetricRadiatorPumpStatus,
		MetricAlarmStatus, MetricAlarmCode,
	}
}

// VizMetrics is the fine-grained query backing the temperature, COP,
// and performance charts, which must share one timestamp index.
func VizMetrics() []string {
	return []string{
		MetricOutdoorTemp, MetricIndoorTemp,
		MetricRadiatorForward, MetricRadiatorReturn,
		MetricHeatCarrierForward, MetricHeatCarrierReturn,
		MetricHotWaterTop, MetricBrineIn, MetricBrineOut,
		MetricCompressorStatus, MetricPowerConsumption,
		MetricPressureTubeTemp, MetricHotGasCompressor,
		MetricDegreeMinutes,
	}
}

// EventSignals are the metrics scanned for state changes when
// building the event log.
func EventSignals() []string {
	return []string{
		MetricCompressorStatus,
		MetricBrinePumpStatus,
		MetricRadiatorPumpStatus,
		MetricSwitchValveStatus,
		MetricAdditionalHeatPct,
		MetricAlarmCode,
		MetricAlarmStatus,
	}
}
