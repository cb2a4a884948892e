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

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"heatmon/pkg/eventbus"
)

type InfluxConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

type GatewayConfig struct {
	// "http" polls a Husdata H60 style gateway over its
	// REST interface, "modbus" reads registers directly
	Mode string `yaml:"mode"`
	Addr string `yaml:"addr"`

	// optional YAML register table for modbus mode; when unset the
	// table is derived from the provider catalog
	RegisterTable string `yaml:"register_table"`

	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
}

type COPConfig struct {
	// heat output per degree of carrier delta, kW per K,
	// determined by the circulation flow rate
	FlowFactor float64 `yaml:"flow_factor"`
}

type HotWaterConfig struct {
	MinCycleMinutes float64 `yaml:"min_cycle_minutes"`
}

type EnergyConfig struct {
	PricePerKWh float64 `yaml:"price_per_kwh"`
}

type Config struct {
	// heat pump brand: thermia, ivt, or nibe
	Brand string `yaml:"brand"`

	HTTPListenAddr string `yaml:"http_listen_addr"`

	Influx   InfluxConfig   `yaml:"influx"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	COP      COPConfig      `yaml:"cop"`
	HotWater HotWaterConfig `yaml:"hot_water"`
	Energy   EnergyConfig   `yaml:"energy"`

	// not loaded from file, but added here to
	// pass to all services alongside config
	EventBus *eventbus.Bus `yaml:"-"`
}

func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// apply defaults
	if c.HTTPListenAddr == "" {
		c.HTTPListenAddr = ":8110"
	}
	if c.Gateway.Mode == "" {
		c.Gateway.Mode = "http"
	}
	if c.Gateway.PollIntervalSeconds == 0 {
		c.Gateway.PollIntervalSeconds = 30
	}
	if c.COP.FlowFactor == 0 {
		c.COP.FlowFactor = 2.7
	}
	if c.HotWater.MinCycleMinutes == 0 {
		c.HotWater.MinCycleMinutes = 2
	}
	if c.Energy.PricePerKWh == 0 {
		c.Energy.PricePerKWh = 2.0
	}
	if c.Brand == "" {
		return nil, fmt.Errorf("config: brand is required")
	}
	switch c.Brand {
	case "thermia", "ivt", "nibe":
	default:
		return nil, fmt.Errorf("config: unknown brand %q", c.Brand)
	}
	return &c, nil
}
