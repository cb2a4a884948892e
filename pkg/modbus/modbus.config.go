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

package modbus

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Conn      ConnConfig             `yaml:"modbus"`
	Registers map[string]RegisterDef `yaml:"registers"`
}

type ConnConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	SlaveID byte   `yaml:"slave_id"`
	Timeout int    `yaml:"timeout"` // seconds
}

// RegisterDef maps a register name to its modbus address. Values are
// returned raw; any unit scaling is the caller's concern.
type RegisterDef struct {
	Address     uint16 `yaml:"address"`
	DataType    string `yaml:"data_type"` // "uint16", "int16"
	Description string `yaml:"description,omitempty"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read modbus config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse modbus config: %w", err)
	}

	if config.Conn.Port == 0 {
		config.Conn.Port = 502
	}
	if config.Conn.Timeout == 0 {
		config.Conn.Timeout = 5
	}
	return &config, nil
}
