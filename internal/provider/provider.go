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

// Package provider abstracts the differences between heat pump brands
// connected through a Husdata H60/H66 gateway: register catalogs,
// alarm code tables, runtime counters, and auxiliary heater layouts.
package provider

import (
	"fmt"
	"sort"
)

// Kind classifies a register by what its value means, which decides
// how raw gateway integers are scaled and which analytics apply.
type Kind string

const (
	KindTemperature Kind = "temperature"
	KindPercentage  Kind = "percentage"
	KindStatus      Kind = "status"
	KindAlarm       Kind = "alarm"
	KindSetting     Kind = "setting"
	KindRuntime     Kind = "runtime"
	KindPower       Kind = "power"
	KindEnergy      Kind = "energy"
	KindFlow        Kind = "flow"
	KindCurrent     Kind = "current"
)

// RegisterDef describes one gateway register.
type RegisterDef struct {
	Name        string
	Unit        string
	Kind        Kind
	Description string
}

// AuxHeatStep is one fixed-power stage of a stepped auxiliary heater.
type AuxHeatStep struct {
	Register string
	PowerKW  float64
}

// AuxHeatConfig describes how a brand reports auxiliary electrical heat:
// either a single modulating percentage, or discrete on/off steps.
type AuxHeatConfig struct {
	Type               string // "percentage" or "steps"
	PercentageRegister string
	MaxPowerKW         float64
	Steps              []AuxHeatStep
}

// Provider is implemented once per supported heat pump brand.
type Provider interface {
	Brand() string
	DisplayName() string

	// Registers returns the brand's register catalog, keyed by the
	// four character hex register ID used on the gateway wire.
	Registers() map[string]RegisterDef

	// AlarmCodes maps brand alarm codes to human descriptions.
	AlarmCodes() map[int]string

	// AlarmRegisterID is the register holding the active alarm code.
	AlarmRegisterID() string

	// RuntimeCounters maps counter labels to runtime-hour register IDs.
	// May be empty for brands that expose energy meters instead.
	RuntimeCounters() map[string]string

	AuxHeat() AuxHeatConfig
}

// New returns the provider for a brand name, or an error if the
// brand is not supported.
func New(brand string) (Provider, error) {
	switch brand {
	case "thermia":
		return thermiaProvider{}, nil
	case "ivt":
		return ivtProvider{}, nil
	case "nibe":
		return nibeProvider{}, nil
	}
	return nil, fmt.Errorf("provider: unknown brand %q", brand)
}

// Brands lists the supported brand names.
func Brands() []string {
	return []string{"thermia", "ivt", "nibe"}
}

// Raw gateway values for temperatures, percentages, and settings are
// scaled by 10 (305 means 30.5). Statuses, alarms, runtime hours, and
// metered power/energy arrive in their final units. A few register
// names are listed explicitly because some brand catalogs classify
// them inconsistently.
var passThroughKinds = map[Kind]bool{
	KindStatus:  true,
	KindAlarm:   true,
	KindRuntime: true,
	KindPower:   true,
	KindEnergy:  true,
}

var passThroughNames = map[string]bool{
	"compressor_status":           true,
	"brine_pump_status":           true,
	"radiator_pump_status":        true,
	"pump_cold_circuit":           true,
	"pump_heat_circuit":           true,
	"pump_radiator":               true,
	"switch_valve_status":         true,
	"switch_valve_1":              true,
	"alarm_status":                true,
	"alarm_code":                  true,
	"add_heat_step_1":             true,
	"add_heat_step_2":             true,
	"power_consumption":           true,
	"accumulated_energy":          true,
	"compressor_runtime_heating":  true,
	"compressor_runtime_hotwater": true,
	"aux_runtime_heating":         true,
	"aux_runtime_hotwater":        true,
}

// Convert scales a raw gateway register value into its real unit.
func Convert(def RegisterDef, raw int64) float64 {
	if passThroughKinds[def.Kind] || passThroughNames[def.Name] {
		return float64(raw)
	}
	return float64(raw) / 10.0
}

// StatusFields returns the sorted names of a provider's on/off status
// registers. These carry their last observed value through time series
// queries instead of being averaged.
func StatusFields(p Provider) []string {
	var names []string
	for _, def := range p.Registers() {
		if def.Kind == KindStatus {
			names = append(names, def.Name)
		}
	}
	sort.Strings(names)
	return names
}

// AlarmDescription resolves an alarm code to the brand's description,
// falling back to a generic message for unlisted codes.
func AlarmDescription(p Provider, code int) string {
	if desc, ok := p.AlarmCodes()[code]; ok {
		return desc
	}
	return fmt.Sprintf("unknown alarm code %d", code)
}

// RegisterByName finds a register definition and its ID by field name.
func RegisterByName(p Provider, name string) (string, RegisterDef, bool) {
	for id, def := range p.Registers() {
		if def.Name == name {
			return id, def, true
		}
	}
	return "", RegisterDef{}, false
}
