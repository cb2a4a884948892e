package analytics

import (
	"strings"
	"testing"

	"heatmon/internal/provider"
	"heatmon/internal/timeseries"
)

func eventFrame(series map[string]timeseries.Series) *timeseries.Frame {
	f := timeseries.FromSeries(series)
	return &f
}

func mustProvider(t *testing.T, brand string) provider.Provider {
	t.Helper()
	p, err := provider.New(brand)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestBuildEventsCompressorTransitions(t *testing.T) {
	frame := eventFrame(map[string]timeseries.Series{
		MetricCompressorStatus: {
			{Time: minutes(0), Value: 0},
			{Time: minutes(1), Value: 1},
			{Time: minutes(2), Value: 1},
			{Time: minutes(3), Value: 0},
		},
	})
	events := BuildEvents(frame, mustProvider(t, "thermia"), 20)
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	// newest first
	if events[0].Message != "compressor OFF" || !events[0].Time.Equal(minutes(3)) {
		t.Errorf("events[0] = %+v", events[0])
	}
	if events[1].Message != "compressor ON" || !events[1].Time.Equal(minutes(1)) {
		t.Errorf("events[1] = %+v", events[1])
	}
}

func TestBuildEventsAuxHeat(t *testing.T) {
	frame := eventFrame(map[string]timeseries.Series{
		MetricAdditionalHeatPct: {
			{Time: minutes(0), Value: 0},
			{Time: minutes(1), Value: 35}, // ON
			{Time: minutes(2), Value: 40}, // +5, below change threshold
			{Time: minutes(3), Value: 60}, // +20, logged
			{Time: minutes(4), Value: 0},  // OFF
		},
	})
	events := BuildEvents(frame, mustProvider(t, "thermia"), 20)
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3: %+v", len(events), events)
	}
	if events[0].Message != "auxiliary heat OFF" {
		t.Errorf("events[0] = %q", events[0].Message)
	}
	if events[1].Message != "auxiliary heat changed to 60%" || events[1].Type != "warning" {
		t.Errorf("events[1] = %+v", events[1])
	}
	if events[2].Message != "auxiliary heat ON (35%)" {
		t.Errorf("events[2] = %q", events[2].Message)
	}
}

func TestBuildEventsAlarmUsesBrandTable(t *testing.T) {
	frame := eventFrame(map[string]timeseries.Series{
		MetricAlarmCode: {
			{Time: minutes(0), Value: 0},
			{Time: minutes(1), Value: 10},
			{Time: minutes(2), Value: 0},
		},
	})
	events := BuildEvents(frame, mustProvider(t, "thermia"), 20)
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Message != "alarm cleared" || events[0].Type != "success" {
		t.Errorf("events[0] = %+v", events[0])
	}
	if !strings.Contains(events[1].Message, "high pressure switch") || events[1].Type != "danger" {
		t.Errorf("events[1] = %+v", events[1])
	}
}

func TestBuildEventsUnknownAlarmCode(t *testing.T) {
	frame := eventFrame(map[string]timeseries.Series{
		MetricAlarmCode: {
			{Time: minutes(0), Value: 0},
			{Time: minutes(1), Value: 9999},
		},
	})
	events := BuildEvents(frame, mustProvider(t, "thermia"), 20)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if !strings.Contains(events[0].Message, "9999") {
		t.Errorf("events[0] = %q, want the code spelled out", events[0].Message)
	}
}

func TestBuildEventsHotWaterAndAlarmStatus(t *testing.T) {
	frame := eventFrame(map[string]timeseries.Series{
		MetricSwitchValveStatus: {
			{Time: minutes(0), Value: 0},
			{Time: minutes(1), Value: 1},
			{Time: minutes(10), Value: 0},
		},
		MetricAlarmStatus: {
			{Time: minutes(2), Value: 0},
			{Time: minutes(3), Value: 1},
		},
	})
	events := BuildEvents(frame, mustProvider(t, "ivt"), 20)
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3: %+v", len(events), events)
	}
	if events[0].Message != "hot water cycle STOP" {
		t.Errorf("events[0] = %q", events[0].Message)
	}
	if events[1].Message != "alarm activated" || events[1].Type != "danger" {
		t.Errorf("events[1] = %+v", events[1])
	}
	if events[2].Message != "hot water cycle START" {
		t.Errorf("events[2] = %q", events[2].Message)
	}
}

func TestBuildEventsLimit(t *testing.T) {
	var comp timeseries.Series
	for i := 0; i < 30; i++ {
		comp = append(comp, timeseries.Sample{Time: minutes(i), Value: float64(i % 2)})
	}
	frame := eventFrame(map[string]timeseries.Series{
		MetricCompressorStatus: comp,
	})
	events := BuildEvents(frame, mustProvider(t, "thermia"), 20)
	if len(events) != 20 {
		t.Fatalf("events = %d, want 20", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Time.After(events[i-1].Time) {
			t.Fatal("events not sorted newest first")
		}
	}
}
