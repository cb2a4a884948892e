package provider

import (
	"testing"
)

func TestNewKnownBrands(t *testing.T) {
	for _, brand := range Brands() {
		p, err := New(brand)
		if err != nil {
			t.Fatalf("New(%q): %v", brand, err)
		}
		if p.Brand() != brand {
			t.Errorf("Brand() = %q, want %q", p.Brand(), brand)
		}
		if len(p.Registers()) == 0 {
			t.Errorf("%s: empty register catalog", brand)
		}
		if p.AlarmRegisterID() == "" {
			t.Errorf("%s: no alarm register", brand)
		}
		if _, ok := p.Registers()[p.AlarmRegisterID()]; !ok {
			t.Errorf("%s: alarm register %s not in catalog", brand, p.AlarmRegisterID())
		}
	}
}

func TestNewUnknownBrand(t *testing.T) {
	if _, err := New("daikin"); err == nil {
		t.Fatal("expected error for unknown brand")
	}
}

func TestRuntimeCounterRegistersExist(t *testing.T) {
	for _, brand := range Brands() {
		p, _ := New(brand)
		for label, id := range p.RuntimeCounters() {
			if _, ok := p.Registers()[id]; !ok {
				t.Errorf("%s: runtime counter %s -> %s not in catalog", brand, label, id)
			}
		}
	}
}

func TestAuxHeatRegistersExist(t *testing.T) {
	for _, brand := range Brands() {
		p, _ := New(brand)
		aux := p.AuxHeat()
		switch aux.Type {
		case "percentage":
			if _, ok := p.Registers()[aux.PercentageRegister]; !ok {
				t.Errorf("%s: aux percentage register %s not in catalog", brand, aux.PercentageRegister)
			}
		case "steps":
			if len(aux.Steps) == 0 {
				t.Errorf("%s: stepped aux heat with no steps", brand)
			}
			for _, step := range aux.Steps {
				if _, ok := p.Registers()[step.Register]; !ok {
					t.Errorf("%s: aux step register %s not in catalog", brand, step.Register)
				}
			}
		default:
			t.Errorf("%s: unknown aux heat type %q", brand, aux.Type)
		}
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		def  RegisterDef
		raw  int64
		want float64
	}{
		{"temperature scaled", RegisterDef{Name: "outdoor_temp", Kind: KindTemperature}, 305, 30.5},
		{"negative temperature", RegisterDef{Name: "outdoor_temp", Kind: KindTemperature}, -125, -12.5},
		{"percentage scaled", RegisterDef{Name: "additional_heat_percent", Kind: KindPercentage}, 500, 50},
		{"status passthrough", RegisterDef{Name: "compressor_status", Kind: KindStatus}, 1, 1},
		{"alarm passthrough", RegisterDef{Name: "alarm_code", Kind: KindAlarm}, 40, 40},
		{"power passthrough", RegisterDef{Name: "power_consumption", Kind: KindPower}, 2450, 2450},
		{"energy passthrough", RegisterDef{Name: "accumulated_energy", Kind: KindEnergy}, 12345, 12345},
		{"runtime passthrough", RegisterDef{Name: "compressor_runtime", Kind: KindRuntime}, 8760, 8760},
		{"name override wins", RegisterDef{Name: "add_heat_step_1", Kind: KindSetting}, 1, 1},
		{"setting scaled", RegisterDef{Name: "heat_curve_L", Kind: KindSetting}, 350, 35},
	}
	for _, tt := range tests {
		if got := Convert(tt.def, tt.raw); got != tt.want {
			t.Errorf("%s: Convert = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestStatusFields(t *testing.T) {
	p, _ := New("thermia")
	fields := StatusFields(p)
	want := map[string]bool{
		"compressor_status":    true,
		"brine_pump_status":    true,
		"radiator_pump_status": true,
		"switch_valve_status":  true,
	}
	if len(fields) != len(want) {
		t.Fatalf("StatusFields = %v, want %d fields", fields, len(want))
	}
	for _, f := range fields {
		if !want[f] {
			t.Errorf("unexpected status field %q", f)
		}
	}
	// sorted output
	for i := 1; i < len(fields); i++ {
		if fields[i-1] > fields[i] {
			t.Errorf("StatusFields not sorted: %v", fields)
		}
	}
}

func TestAlarmDescription(t *testing.T) {
	p, _ := New("thermia")
	if got := AlarmDescription(p, 10); got != "HP - high pressure switch" {
		t.Errorf("AlarmDescription(10) = %q", got)
	}
	if got := AlarmDescription(p, 999); got != "unknown alarm code 999" {
		t.Errorf("AlarmDescription(999) = %q", got)
	}
}

func TestRegisterByName(t *testing.T) {
	p, _ := New("ivt")
	id, def, ok := RegisterByName(p, "heat_carrier_forward")
	if !ok || id != "0004" {
		t.Fatalf("RegisterByName = %q, %v", id, ok)
	}
	if def.Kind != KindTemperature {
		t.Errorf("kind = %q", def.Kind)
	}
	if _, _, ok := RegisterByName(p, "no_such_field"); ok {
		t.Error("expected miss for unknown name")
	}
}
