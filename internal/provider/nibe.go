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

// NIBE F/S-series register map, per the Husdata H66 C40 profile for
// the EB100 controller. NIBE exposes energy meters rather than
// runtime hour counters.
type nibeProvider struct{}

func (nibeProvider) Brand() string       { return "nibe" }
func (nibeProvider) DisplayName() string { return "NIBE F/S-series" }

func (nibeProvider) AlarmRegisterID() string { return "2A20" }

func (nibeProvider) RuntimeCounters() map[string]string {
	return map[string]string{}
}

func (nibeProvider) AuxHeat() AuxHeatConfig {
	return AuxHeatConfig{
		Type:               "percentage",
		PercentageRegister: "3104",
		MaxPowerKW:         9,
	}
}

func (nibeProvider) Registers() map[string]RegisterDef {
	return nibeRegisters
}

func (nibeProvider) AlarmCodes() map[int]string {
	return nibeAlarmCodes
}

var nibeRegisters = map[string]RegisterDef{
	// Temperatures
	"0002": {"radiator_return", "°C", KindTemperature, "Radiator return temperature (BT61)"},
	"0003": {"heat_carrier_return", "°C", KindTemperature, "Internal heat carrier return (BT3)"},
	"0004": {"heat_carrier_forward", "°C", KindTemperature, "Internal heat carrier forward (BT2)"},
	"0005": {"brine_in_evaporator", "°C", KindTemperature, "Brine in from ground source (BT10/BT16)"},
	"0006": {"brine_out_condenser", "°C", KindTemperature, "Brine out to ground source (BT11/BT12)"},
	"0007": {"outdoor_temp", "°C", KindTemperature, "Outdoor temperature (BT1)"},
	"0008": {"indoor_temp", "°C", KindTemperature, "Indoor temperature (BT50)"},
	"0009": {"hot_water_top", "°C", KindTemperature, "Warm water top (BT7)"},
	"000A": {"warm_water_mid", "°C", KindTemperature, "Warm water mid (BT6)"},
	"000B": {"hot_gas_temp", "°C", KindTemperature, "Hot gas from compressor (LW-BT14, EW-BT18)"},
	"000C": {"suction_gas_temp", "°C", KindTemperature, "Suction gas after expansion valve (BT17)"},
	"000D": {"liquid_flow", "l/min", KindFlow, "Liquid flow"},
	"0011": {"pool_temp", "°C", KindTemperature, "Pool temperature if installed"},
	"0020": {"radiator_forward_2", "°C", KindTemperature, "Heat circuit 2 forward (EP21-BT2)"},

	// Setpoints and settings
	"0107": {"heating_setpoint", "°C", KindTemperature, "Target temperature for heating"},
	"0106": {"room_temp_setpoint", "°C", KindTemperature, "Current room temperature setpoint"},
	"0203": {"room_temp_setpoint_set", "°C", KindTemperature, "Set room temperature (M1.1.1)"},
	"2205": {"heating_curve", "", KindSetting, "Heat curve for circuit 1 (M1.9.11)"},
	"2207": {"heating_curve_offset", "°C", KindSetting, "Heat curve parallel offset circuit 1 (M1.9.11)"},
	"2204": {"room_sensor_influence", "", KindSetting, "Room sensor influence (M19.4)"},
	"2201": {"operating_mode", "", KindSetting, "Operating mode (0=auto, 1=manual, 2=only additional heater)"},
	"2213": {"warm_water_program", "", KindSetting, "Hot water program (0=eco, 1=normal, 2=luxury, 4=smart)"},
	"8105": {"degree_minutes", "DM", KindSetting, "Degree minute integral (M3.1)"},
	"9226": {"max_additional_heat", "kW", KindSetting, "Max additional heat power (M5.1.12)"},
	"22F2": {"reset_alarm", "", KindSetting, "Set to 1 to reset the active alarm"},

	// Statuses
	"1A01": {"compressor_status", "", KindStatus, "Compressor status (0=off, 1=on)"},
	"1A04": {"brine_pump_status", "", KindStatus, "Brine pump status (ground source pump, LW pumps only)"},
	"1A05": {"radiator_pump_status", "", KindStatus, "Internal circulation pump status (0=off, 1=on)"},
	"1A07": {"switch_valve_status", "", KindStatus, "Shunt valve 1 position (0=radiator heating, 1=hot water heating)"},

	// Performance
	"9108": {"compressor_speed", "%", KindPercentage, "Compressor speed, variable speed compressors"},
	"3104": {"additional_heat_percent", "%", KindPercentage, "Additional heat percentage in use"},
	"9124": {"additional_heat_power", "kW", KindPower, "Current additional heat power"},
	"4101": {"load_l1", "A", KindCurrent, "Phase 1 current draw"},
	"4102": {"load_l2", "A", KindCurrent, "Phase 2 current draw"},
	"4103": {"load_l3", "A", KindCurrent, "Phase 3 current draw"},

	// Energy meters
	"5C51": {"energy_total", "kWh", KindEnergy, "Total supplied energy"},
	"5C53": {"energy_hotwater", "kWh", KindEnergy, "Total supplied energy for hot water"},

	// Alarms
	"2A20": {"alarm_code", "", KindAlarm, "Alarm code if an alarm is active"},

	// Power and energy (common H60/H66 gateway registers)
	"CFAA": {"power_consumption", "W", KindPower, "Real-time power consumption in Watts"},
	"5FAB": {"accumulated_energy", "kWh", KindEnergy, "Total accumulated energy consumption"},
}

var nibeAlarmCodes = map[int]string{
	0:   "no alarm",
	1:   "sensor BT1 (outdoor) failure",
	2:   "sensor BT2 (forward) failure",
	3:   "sensor BT3 (return) failure",
	4:   "sensor BT6 (hot water charge) failure",
	5:   "sensor BT7 (hot water top) failure",
	6:   "sensor BT10 (brine in) failure",
	7:   "sensor BT11 (brine out) failure",
	8:   "sensor BT12 (compressor) failure",
	9:   "sensor BT14 (external forward) failure",
	10:  "sensor BT15 (external return) failure",
	11:  "sensor BT17 (suction gas) failure",
	12:  "sensor BT25 (external forward 2) failure",
	13:  "sensor BT50 (room) failure",
	14:  "sensor BP8 (pressure) failure",
	15:  "sensor EP14 (external forward) failure",
	20:  "compressor alarm",
	21:  "high pressure switch",
	22:  "low pressure switch",
	23:  "compressor motor protector",
	24:  "compressor temperature too high",
	25:  "compressor inverter failure",
	26:  "compressor does not start",
	27:  "compressor at max frequency",
	30:  "brine flow too low",
	31:  "radiator flow too low",
	32:  "brine pump alarm",
	33:  "radiator pump alarm",
	34:  "shunt valve alarm",
	35:  "flow guard, brine circuit",
	36:  "flow guard, radiator circuit",
	40:  "hot water temperature too high",
	41:  "hot water legionella protection failed",
	42:  "hot water charge timeout",
	50:  "additional heat failure",
	51:  "additional heat fuse tripped",
	52:  "additional heat overtemperature",
	53:  "additional heat step 1 failure",
	54:  "additional heat step 2 failure",
	60:  "internal communication failure",
	61:  "external communication failure",
	62:  "sensor communication failure",
	63:  "display communication failure",
	64:  "inverter communication failure",
	70:  "phase order incorrect",
	71:  "power failure",
	72:  "low voltage",
	73:  "high voltage",
	74:  "ground fault",
	75:  "system overheating",
	76:  "freeze protection, brine",
	77:  "freeze protection, radiator",
	78:  "freeze protection, hot water",
	80:  "configuration error",
	81:  "installation error",
	82:  "settings error",
	83:  "COP value too low",
	90:  "smart grid communication failure",
	91:  "smart grid conflict",
	92:  "external control failure",
	200: "service required",
	201: "service, filter",
	202: "service, compressor",
	203: "service, heating system",
	255: "unknown alarm, contact service",
}
