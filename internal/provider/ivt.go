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

package provider

// IVT Greenline register map, per the Husdata H66 C00 profile for
// Rego 600/637 controllers.
type ivtProvider struct{}

func (ivtProvider) Brand() string       { return "ivt" }
func (ivtProvider) DisplayName() string { return "IVT Greenline" }

func (ivtProvider) AlarmRegisterID() string { return "BA91" }

func (ivtProvider) RuntimeCounters() map[string]string {
	// IVT splits runtime by heating and hot water production
	return map[string]string{
		"compressor_heating":  "6C55",
		"compressor_hotwater": "6C56",
		"aux_heating":         "6C58",
		"aux_hotwater":        "6C59",
	}
}

func (ivtProvider) AuxHeat() AuxHeatConfig {
	return AuxHeatConfig{
		Type:               "steps",
		PercentageRegister: "3104",
		Steps: []AuxHeatStep{
			{Register: "1A02", PowerKW: 3},
			{Register: "1A03", PowerKW: 6},
		},
	}
}

func (ivtProvider) Registers() map[string]RegisterDef {
	return ivtRegisters
}

func (ivtProvider) AlarmCodes() map[int]string {
	return ivtAlarmCodes
}

var ivtRegisters = map[string]RegisterDef{
	// Temperatures
	"0001": {"radiator_return", "°C", KindTemperature, "Return water feed from radiators (if installed)"},
	"0002": {"radiator_forward", "°C", KindTemperature, "Water feed out to radiators"},
	"0003": {"heat_carrier_return", "°C", KindTemperature, "HP internal heat carrier return"},
	"0004": {"heat_carrier_forward", "°C", KindTemperature, "HP internal heat supply forward"},
	"0005": {"brine_in_evaporator", "°C", KindTemperature, "Supply in from ground source for LW pumps, evaporator for AW pumps"},
	"0006": {"brine_out_condenser", "°C", KindTemperature, "Supply out to ground source for LW pumps, condenser for AW pumps"},
	"0007": {"outdoor_temp", "°C", KindTemperature, "Outdoor sensor"},
	"0008": {"indoor_temp", "°C", KindTemperature, "Temp of indoor sensor (if installed)"},
	"0009": {"hot_water_top", "°C", KindTemperature, "Warm water tank temp GT3 (internal tank)"},
	"000A": {"warm_water_2_mid", "°C", KindTemperature, "Warm water tank temp GT3X (external tank if installed)"},
	"000B": {"hot_gas_compressor", "°C", KindTemperature, "Hot gas from compressor before expansion valve"},
	"025A": {"heat_carrier_in_max", "°C", KindTemperature, "Heat carrier in max"},

	// Additional heat
	"3104": {"additional_heat_percent", "%", KindPercentage, "Applied additional electrical heater supporting the compressor. Commonly 9kW max."},

	// Setpoints
	"0107": {"heating_setpoint", "°C", KindTemperature, "Target temp for heating"},
	"0111": {"warm_water_setpoint", "°C", KindTemperature, "Target temp for warm tap water"},
	"0203": {"room_temp_setpoint", "°C", KindTemperature, "Set room temp if indoor sensor (if installed)"},

	// Settings
	"2204": {"room_sensor_influence", "°C", KindSetting, "How much room temp should influence heating (if indoor sensor installed)"},
	"2205": {"heat_curve_level", "", KindSetting, "Heat curve level (Heat set 1, CurveL)"},
	"0207": {"heat_curve_parallel", "", KindSetting, "Heat curve parallel offset (Heat set 3 Parallel)"},
	"0208": {"warm_water_stop_temp", "°C", KindTemperature, "Stop temp for tap hot water (too high will trigger pressostat alarm)"},
	"020B": {"warm_water_difference", "°C", KindSetting, "Tap water start threshold: stop temp minus diff temp"},
	"7209": {"extra_warm_water_time", "minutes", KindSetting, "Minutes for the extra warm water feature to stay active"},
	"1215": {"electric_heater_switch", "", KindSetting, "1=on, 0=off. Takes effect next time the add heater is to start"},
	"1233": {"external_control", "", KindSetting, "External control input 1 blocks heat pump operation. 1=activated"},
	"020A": {"summer_mode_temp", "°C", KindTemperature, "Temp where HP enters summer mode and only produces hot water"},
	"2210": {"holiday_mode", "hours", KindSetting, "0-30 days of holiday mode"},
	"12F2": {"alarm_reset", "", KindSetting, "Set to 0 to power cycle the pump for 10 seconds and reset the alarm"},

	// Statuses
	"1A01": {"compressor_status", "", KindStatus, "0=off, 1=on"},
	"1A02": {"add_heat_step_1", "", KindStatus, "0=off, 1=on. Normally 3kW step"},
	"1A03": {"add_heat_step_2", "", KindStatus, "0=off, 1=on. Normally 6kW step"},
	"1A04": {"brine_pump_status", "", KindStatus, "Ground source pump, 0=off, 1=on (LW pumps only)"},
	"1A05": {"pump_heat_circuit", "", KindStatus, "Internal circulation pump, 0=off, 1=on"},
	"1A06": {"radiator_pump_status", "", KindStatus, "Radiator pump, 0=off, 1=on"},
	"1A07": {"switch_valve_status", "", KindStatus, "Switch valve position, 0=radiator heating, 1=hot water heating"},

	// Alarms
	"1A20": {"alarm_status", "", KindAlarm, "Pump alarm, >0 means alarming"},
	"BA91": {"alarm_code", "", KindAlarm, "Number of the last triggered alarm, even with no active alarm now"},

	// Runtime counters
	"6C55": {"compressor_runtime_heating", "hours", KindRuntime, "Compressor runtime for heating"},
	"6C56": {"compressor_runtime_hotwater", "hours", KindRuntime, "Compressor runtime for hot water production"},
	"6C58": {"aux_runtime_heating", "hours", KindRuntime, "Electrical additional heater runtime for heating"},
	"6C59": {"aux_runtime_hotwater", "hours", KindRuntime, "Electrical additional heater runtime for hot water production"},

	// Power and energy (common H60/H66 registers)
	"CFAA": {"power_consumption", "W", KindPower, "Real-time power consumption in Watts"},
	"5FAB": {"accumulated_energy", "kWh", KindEnergy, "Total accumulated energy consumption"},
}

var ivtAlarmCodes = map[int]string{
	0:  "no alarm",
	1:  "sensor radiator return (GT1)",
	2:  "outdoor sensor (GT2)",
	3:  "sensor hot water (GT3)",
	4:  "mixing valve sensor (GT4)",
	5:  "room sensor (GT5)",
	6:  "sensor compressor (GT6)",
	7:  "sensor heat fluid out (GT8)",
	8:  "sensor heat fluid in (GT9)",
	9:  "sensor cold fluid in (GT10)",
	10: "sensor cold fluid out (GT11)",
	11: "compressor circuit switch",
	12: "electrical cassette",
	13: "pump circuit switch (MB2)",
	14: "low pressure switch (LP)",
	15: "high pressure switch (HP)",
	16: "high return HP (GT9)",
	17: "heat carrier out max (GT8)",
	18: "brine in under limit (GT10)",
	19: "brine out under limit (GT11)",
	20: "compressor superheat (GT6)",
	21: "3-phase incorrect order",
	22: "power failure",
	23: "heat delta exceeded",
}
