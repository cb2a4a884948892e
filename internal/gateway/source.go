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

// Package gateway reads raw register values from a Husdata H60/H66
// gateway, either over its REST interface or directly over
// Modbus TCP.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"heatmon/internal/config"
	"heatmon/internal/provider"
)

// Source reads one batch of raw register values, keyed by the
// four character hex register ID. Values are unscaled gateway
// integers.
type Source interface {
	ReadAll(ctx context.Context) (map[string]int64, error)
	Close()
}

// New builds the configured source for a provider's register catalog.
func New(cfg config.GatewayConfig, p provider.Provider) (Source, error) {
	switch cfg.Mode {
	case "http":
		return NewHTTPSource(cfg.Addr), nil
	case "modbus":
		return NewModbusSource(cfg, p)
	}
	return nil, fmt.Errorf("gateway: unknown mode %q", cfg.Mode)
}

// HTTPSource polls the gateway's REST interface. One request returns
// every register the gateway knows about.
type HTTPSource struct {
	url    string
	client *http.Client
}

func NewHTTPSource(addr string) *HTTPSource {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return &HTTPSource{
		url: strings.TrimRight(addr, "/") + "/api/alldata",
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *HTTPSource) ReadAll(ctx context.Context) (map[string]int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway request: unexpected status %s", resp.Status)
	}

	var raw map[string]json.Number
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("gateway response: %w", err)
	}

	values := make(map[string]int64, len(raw))
	for id, num := range raw {
		v, err := num.Int64()
		if err != nil {
			// some firmwares emit floats for scaled registers
			f, ferr := num.Float64()
			if ferr != nil {
				continue
			}
			v = int64(f)
		}
		values[strings.ToUpper(id)] = v
	}
	return values, nil
}

func (s *HTTPSource) Close() {}
