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

package gateway

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"heatmon/internal/config"
	"heatmon/internal/provider"
	"heatmon/pkg/logger"
	"heatmon/pkg/modbus"
)

// ModbusSource reads registers one by one over the gateway's
// Modbus TCP server. Slower than the REST interface, but works on
// gateways with the web API disabled.
type ModbusSource struct {
	log    *logger.Logger
	client *modbus.Client
	// modbus register name -> husdata hex ID
	ids map[string]string
}

func NewModbusSource(cfg config.GatewayConfig, p provider.Provider) (*ModbusSource, error) {
	host, port, err := splitGatewayAddr(cfg.Addr)
	if err != nil {
		return nil, err
	}

	var mbConfig *modbus.Config
	if cfg.RegisterTable != "" {
		mbConfig, err = modbus.LoadConfig(cfg.RegisterTable)
		if err != nil {
			return nil, err
		}
	} else {
		mbConfig, err = registerTableFromCatalog(p)
		if err != nil {
			return nil, err
		}
	}
	mbConfig.Conn.Host = host
	mbConfig.Conn.Port = port

	log := logger.New("ModbusGateway")
	ids := make(map[string]string)
	for name := range mbConfig.Registers {
		id, _, ok := provider.RegisterByName(p, name)
		if !ok {
			log.Warn("register table entry %q not in the %s catalog, skipping", name, p.Brand())
			delete(mbConfig.Registers, name)
			continue
		}
		ids[name] = id
	}

	return &ModbusSource{
		log:    log,
		client: modbus.NewClient(context.Background(), mbConfig),
		ids:    ids,
	}, nil
}

// registerTableFromCatalog derives the modbus register table from the
// provider catalog: the gateway maps each husdata ID directly onto a
// holding register address.
func registerTableFromCatalog(p provider.Provider) (*modbus.Config, error) {
	mbConfig := &modbus.Config{
		Registers: map[string]modbus.RegisterDef{},
	}
	for id, def := range p.Registers() {
		addr, err := strconv.ParseUint(id, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("gateway: bad register id %q: %w", id, err)
		}
		mbConfig.Registers[def.Name] = modbus.RegisterDef{
			Address:     uint16(addr),
			DataType:    modbusDataType(def.Kind),
			Description: def.Description,
		}
	}
	return mbConfig, nil
}

// temperatures and regulation settings can go below zero on the wire
func modbusDataType(kind provider.Kind) string {
	switch kind {
	case provider.KindTemperature, provider.KindSetting:
		return "int16"
	}
	return "uint16"
}

func (s *ModbusSource) ReadAll(ctx context.Context) (map[string]int64, error) {
	values := make(map[string]int64, len(s.ids))
	for name, id := range s.ids {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		v, err := s.client.ReadRaw(name)
		if err != nil {
			s.log.Debug("read %s failed: %v", name, err)
			continue
		}
		values[id] = v
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("gateway: no registers readable")
	}
	return values, nil
}

func (s *ModbusSource) Close() {
	s.client.Close()
}

func splitGatewayAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		// bare host, use the modbus default port
		return addr, 502, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("gateway: bad port in %q", addr)
	}
	return host, port, nil
}
