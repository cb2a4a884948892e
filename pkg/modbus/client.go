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
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	wrapper "github.com/grid-x/modbus"

	"heatmon/pkg/logger"
)

type Client struct {
	mu      sync.Mutex
	handler *wrapper.TCPClientHandler
	client  wrapper.Client
	config  *Config
	log     *logger.Logger
	ctx     context.Context
}

// NewClient creates and connects a Modbus TCP client, retrying until
// the first connection succeeds.
func NewClient(ctx context.Context, config *Config) *Client {
	c := &Client{
		config: config,
		log:    logger.New("ModbusConn"),
		ctx:    ctx,
	}
	c.connectWithRetry()
	return c
}

// connectWithRetry tries to connect with exponential backoff until success.
func (c *Client) connectWithRetry() {
	backoff := time.Second
	for {
		if err := c.connect(); err != nil {
			c.log.Error("modbus connect failed: %v (retrying in %v)", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
				if backoff > 30*time.Second {
					backoff = 30 * time.Second
				}
			}
			continue
		}
		return
	}
}

// connect safely (re)connects the Modbus client once.
func (c *Client) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handler != nil {
		_ = c.handler.Close()
	}

	url := fmt.Sprintf("%s:%d", c.config.Conn.Host, c.config.Conn.Port)
	handler := wrapper.NewTCPClientHandler(url)
	handler.SlaveID = c.config.Conn.SlaveID
	handler.Timeout = time.Second * time.Duration(c.config.Conn.Timeout)
	handler.ProtocolRecoveryTimeout = 250 * time.Millisecond
	handler.LinkRecoveryTimeout = 5 * time.Second

	c.log.Info("connecting to %s...", url)
	if err := handler.Connect(c.ctx); err != nil {
		return fmt.Errorf("modbus connect failed: %w", err)
	}

	c.handler = handler
	c.client = wrapper.NewClient(handler)
	c.log.Info("connected to %s", url)
	return nil
}

// retry wraps an operation and reconnects automatically on connection errors.
func (c *Client) retry(op func() error) error {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if !isConnError(err) {
			c.log.Debug("retry after err: %v", err)
			continue
		}
		c.log.Error("connection error: %v, reconnecting...", err)
		c.connectWithRetry()
	}
	return err
}

// ReadRaw reads a named register and returns its raw integer value.
// int16 registers are sign-extended; uint16 registers are not.
func (c *Client) ReadRaw(name string) (int64, error) {
	def, ok := c.config.Registers[name]
	if !ok {
		return 0, fmt.Errorf("register %q not configured", name)
	}

	var data []byte
	err := c.retry(func() error {
		c.mu.Lock()
		defer c.mu.Unlock()
		var rerr error
		data, rerr = c.client.ReadHoldingRegisters(c.ctx, def.Address, 1)
		return rerr
	})
	if err != nil {
		return 0, fmt.Errorf("register read failed for %s: %w", name, err)
	}
	if len(data) < 2 {
		return 0, fmt.Errorf("register %q returned insufficient data", name)
	}

	raw := binary.BigEndian.Uint16(data)
	switch def.DataType {
	case "int16":
		return int64(int16(raw)), nil
	case "", "uint16":
		return int64(raw), nil
	default:
		return 0, fmt.Errorf("register %q has unsupported data type %q", name, def.DataType)
	}
}

// RegisterNames returns all configured register names.
func (c *Client) RegisterNames() []string {
	names := make([]string, 0, len(c.config.Registers))
	for name := range c.config.Registers {
		names = append(names, name)
	}
	return names
}

// Close closes the underlying handler.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handler != nil {
		_ = c.handler.Close()
	}
}

func isConnError(err error) bool {
	if err == nil {
		return false
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "closed by the remote host") ||
		strings.Contains(msg, "i/o timeout") ||
		strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "connection refused")
}
