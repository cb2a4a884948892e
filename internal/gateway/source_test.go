package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"heatmon/internal/config"
	"heatmon/internal/provider"
)

func TestHTTPSourceReadAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/alldata" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"0007": -52, "1a01": 1, "cfaa": 2450}`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL)
	values, err := src.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if values["0007"] != -52 {
		t.Errorf("0007 = %d, want -52", values["0007"])
	}
	// register IDs normalize to upper case
	if values["1A01"] != 1 {
		t.Errorf("1A01 = %d, want 1", values["1A01"])
	}
	if values["CFAA"] != 2450 {
		t.Errorf("CFAA = %d, want 2450", values["CFAA"])
	}
}

func TestHTTPSourceBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL)
	if _, err := src.ReadAll(context.Background()); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestNewUnknownMode(t *testing.T) {
	p, _ := provider.New("thermia")
	if _, err := New(config.GatewayConfig{Mode: "mqtt"}, p); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestRegisterTableFromCatalog(t *testing.T) {
	p, err := provider.New("thermia")
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	cfg, err := registerTableFromCatalog(p)
	if err != nil {
		t.Fatalf("registerTableFromCatalog: %v", err)
	}
	if len(cfg.Registers) != len(p.Registers()) {
		t.Errorf("table has %d registers, catalog has %d",
			len(cfg.Registers), len(p.Registers()))
	}

	outdoor, ok := cfg.Registers["outdoor_temp"]
	if !ok {
		t.Fatal("outdoor_temp missing from derived table")
	}
	// husdata ID 0007 maps directly onto the holding register address
	if outdoor.Address != 0x0007 {
		t.Errorf("outdoor_temp address = %#04x, want 0x0007", outdoor.Address)
	}
	if outdoor.DataType != "int16" {
		t.Errorf("outdoor_temp data type = %q, want int16", outdoor.DataType)
	}

	comp, ok := cfg.Registers["compressor_status"]
	if !ok {
		t.Fatal("compressor_status missing from derived table")
	}
	if comp.DataType != "uint16" {
		t.Errorf("compressor_status data type = %q, want uint16", comp.DataType)
	}
}

func TestSplitGatewayAddr(t *testing.T) {
	tests := []struct {
		addr string
		host string
		port int
	}{
		{"192.168.1.50:1502", "192.168.1.50", 1502},
		{"192.168.1.50", "192.168.1.50", 502},
		{"h60.local", "h60.local", 502},
	}
	for _, tt := range tests {
		host, port, err := splitGatewayAddr(tt.addr)
		if err != nil {
			t.Fatalf("splitGatewayAddr(%q): %v", tt.addr, err)
		}
		if host != tt.host || port != tt.port {
			t.Errorf("splitGatewayAddr(%q) = %q, %d", tt.addr, host, port)
		}
	}
}
