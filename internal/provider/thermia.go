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

// Thermia Diplomat register map, per the Husdata H66 C60 profile.
type thermiaProvider struct{}

func (thermiaProvider) Brand() string       { return "thermia" }
func (thermiaProvider) DisplayName() string { return "Thermia Diplomat" }

func (thermiaProvider) AlarmRegisterID() string { return "2A91" }

func (thermiaProvider) RuntimeCounters() map[string]string {
	// Thermia keeps total runtime counters, not split by heating
	// versus hot water
	return map[string]string{
		"compressor_total": "6C60",
		"aux_3kw":          "6C63",
		"hot_water":        "6C64",
		"aux_6kw":          "6C66",
	}
}

func (thermiaProvider) AuxHeat() AuxHeatConfig {
	return AuxHeatConfig{
		Type:               "percentage",
		PercentageRegister: "3104",
		MaxPowerKW:         9,
	}
}

func (thermiaProvider) Registers() map[string]RegisterDef {
	return thermiaRegisters
}

func (thermiaProvider) AlarmCodes() map[int]string {
	return thermiaAlarmCodes
}

var thermiaRegisters = map[string]RegisterDef{
	// Temperatures
	"0001": {"radiator_return", "°C", KindTemperature, "Radiator return temperature (from radiators)"},
	"0002": {"radiator_forward", "°C", KindTemperature, "Radiator forward temperature (to radiators)"},
	"0005": {"brine_in_evaporator", "°C", KindTemperature, "Brine in/evaporator temp (from ground for LW, evaporator for AW/EW)"},
	"0006": {"brine_out_condenser", "°C", KindTemperature, "Brine out/condenser temp (to ground for LW, condenser for AW/EW)"},
	"0007": {"outdoor_temp", "°C", KindTemperature, "Outdoor temperature sensor"},
	"0008": {"indoor_temp", "°C", KindTemperature, "Indoor temperature (cable connected sensor if installed)"},
	"0009": {"hot_water_top", "°C", KindTemperature, "Hot water tank top sensor"},
	"0012": {"pressure_tube_temp", "°C", KindTemperature, "Temperature after compressor before expansion valve"},
	"0013": {"cooling_temp", "°C", KindTemperature, "Cooling circuit temperature (if installed)"},
	"0107": {"heating_setpoint", "°C", KindTemperature, "Target temperature for heating"},

	// Pump speeds
	"3109": {"circulation_pump_speed", "%", KindPercentage, "Variable speed for circulation pump"},
	"3110": {"brine_pump_speed", "%", KindPercentage, "Variable speed for ground source brine pump (LW only)"},

	// Statuses (0=off, 1=on)
	"1A01": {"compressor_status", "", KindStatus, "Compressor on/off status"},
	"1A04": {"brine_pump_status", "", KindStatus, "Ground source brine pump status (LW only)"},
	"1A06": {"radiator_pump_status", "", KindStatus, "Radiator circulation pump status"},
	"1A07": {"switch_valve_status", "", KindStatus, "Switch valve position (0=radiator heating, 1=hot water heating)"},

	// Additional heat
	"3104": {"additional_heat_percent", "%", KindPercentage, "Additional electrical heater percentage (typically 9kW max)"},

	// Alarms
	"1A20": {"alarm_status", "", KindAlarm, "Pump alarm status (0=OK, 1=alarming)"},
	"2A91": {"alarm_code", "", KindAlarm, "Active alarm code (e.g. 10=HP, 40=motor protector)"},

	// Settings
	"2201": {"operating_mode", "", KindSetting, "Operational mode (0=all off, 1=auto, 2=normal, 3=add heat only, 4=hot water only)"},
	"0203": {"room_temp_setpoint", "°C", KindTemperature, "Room temperature setpoint (if indoor sensor installed)"},
	"2204": {"room_sensor_influence", "°C", KindSetting, "How much room temp should influence heating"},
	"0205": {"heat_curve_L", "°C", KindSetting, "Heat curve setting (CurveL base point)"},
	"0206": {"heat_curve_R", "°C", KindSetting, "Heat curve MAX setting (CurveR)"},
	"0208": {"hot_water_stop_temp", "°C", KindTemperature, "Hot water highest temperature setpoint"},
	"0211": {"heating_stop_temp", "°C", KindTemperature, "Heating stop temperature setpoint"},
	"0212": {"hot_water_start_temp", "°C", KindTemperature, "Hot water lowest temperature setpoint"},
	"0214": {"cooling_setpoint", "°C", KindTemperature, "Cooling temperature level (if installed)"},
	"0217": {"outdoor_temp_offset", "°C", KindTemperature, "Outdoor temperature offset adjustment"},
	"0233": {"external_control", "°C", KindSetting, "Temperature reduction when EVU input has 10kOhm"},
	"8105": {"degree_minutes", "", KindSetting, "Regulation delay variable (integral)"},

	// Runtime counters
	"6C60": {"compressor_runtime", "hours", KindRuntime, "Compressor total runtime hours"},
	"6C63": {"aux_heater_3kw_runtime", "hours", KindRuntime, "3kW electrical heater total runtime"},
	"6C64": {"hot_water_runtime", "hours", KindRuntime, "Total time producing hot water"},
	"6C66": {"aux_heater_6kw_runtime", "hours", KindRuntime, "6kW electrical heater total runtime"},

	// Power and energy (common H60/H66 registers)
	"CFAA": {"power_consumption", "W", KindPower, "Real-time power consumption in Watts"},
	"5FAB": {"accumulated_energy", "kWh", KindEnergy, "Total accumulated energy consumption"},
}

var thermiaAlarmCodes = map[int]string{
	0:  "no alarm",
	10: "HP - high pressure switch",
	11: "LP - low pressure switch",
	12: "MP - compressor motor protector",
	13: "freeze guard",
	14: "LP2 - low pressure level 2",
	20: "flow guard, brine circuit",
	21: "flow guard, radiator circuit",
	30: "temperature sensor failure",
	31: "multiple sensor failures",
	40: "control board communication failure",
	50: "hot gas temperature too high",
	60: "external alarm",
	70: "service required",
	80: "information",
}
