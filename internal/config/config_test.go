package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	path := writeTemp(t, "brand: thermia\n")
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.Gateway.Mode != "http" {
		t.Errorf("gateway mode = %q, want http", c.Gateway.Mode)
	}
	if c.Gateway.PollIntervalSeconds != 30 {
		t.Errorf("poll interval = %d, want 30", c.Gateway.PollIntervalSeconds)
	}
	if c.COP.FlowFactor != 2.7 {
		t.Errorf("flow factor = %v, want 2.7", c.COP.FlowFactor)
	}
	if c.HotWater.MinCycleMinutes != 2 {
		t.Errorf("min cycle minutes = %v, want 2", c.HotWater.MinCycleMinutes)
	}
	if c.Energy.PricePerKWh != 2.0 {
		t.Errorf("price per kwh = %v, want 2.0", c.Energy.PricePerKWh)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeTemp(t, `
brand: nibe
http_listen_addr: ":9000"
influx:
  url: http://localhost:8086
  token: secret
  org: home
  bucket: heatpump
gateway:
  mode: modbus
  addr: 192.168.1.50:502
  poll_interval_seconds: 10
cop:
  flow_factor: 3.1
`)
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.Brand != "nibe" {
		t.Errorf("brand = %q", c.Brand)
	}
	if c.Influx.Bucket != "heatpump" {
		t.Errorf("bucket = %q", c.Influx.Bucket)
	}
	if c.Gateway.Mode != "modbus" || c.Gateway.PollIntervalSeconds != 10 {
		t.Errorf("gateway = %+v", c.Gateway)
	}
	if c.COP.FlowFactor != 3.1 {
		t.Errorf("flow factor = %v", c.COP.FlowFactor)
	}
}

func TestLoadFileBadBrand(t *testing.T) {
	path := writeTemp(t, "brand: daikin\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for unknown brand")
	}
}

func TestLoadFileMissingBrand(t *testing.T) {
	path := writeTemp(t, "http_listen_addr: \":8080\"\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for missing brand")
	}
}
