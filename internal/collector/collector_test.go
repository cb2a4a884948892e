package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/prometheus/client_golang/prometheus"

	"heatmon/internal/events"
	"heatmon/internal/gateway"
	"heatmon/internal/provider"
	"heatmon/pkg/eventbus"
	"heatmon/pkg/logger"
)

type fakeSource struct {
	values map[string]int64
	err    error
}

func (f *fakeSource) ReadAll(ctx context.Context) (map[string]int64, error) {
	return f.values, f.err
}

func (f *fakeSource) Close() {}

type fakeWriter struct {
	points []*write.Point
	err    error
}

func (f *fakeWriter) WritePoint(ctx context.Context, point ...*write.Point) error {
	if f.err != nil {
		return f.err
	}
	f.points = append(f.points, point...)
	return nil
}

func (f *fakeWriter) WriteRecord(ctx context.Context, line ...string) error { return nil }
func (f *fakeWriter) EnableBatching()                                       {}
func (f *fakeWriter) Flush(ctx context.Context) error                       { return nil }

func newTestService(t *testing.T, source gateway.Source, writer *fakeWriter, bus *eventbus.Bus) *Service {
	t.Helper()
	p, err := provider.New("thermia")
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	return &Service{
		log:      logger.New("CollectorTest"),
		provider: p,
		source:   source,
		bus:      bus,
		writer:   writer,
		metrics:  newMetricSet(prometheus.NewRegistry()),
		interval: time.Second,
	}
}

func tagValue(p *write.Point, key string) string {
	for _, tag := range p.TagList() {
		if tag.Key == key {
			return tag.Value
		}
	}
	return ""
}

func fieldValue(p *write.Point) (float64, bool) {
	for _, field := range p.FieldList() {
		if field.Key == "value" {
			v, ok := field.Value.(float64)
			return v, ok
		}
	}
	return 0, false
}

func TestCollectOnceWritesConvertedPoints(t *testing.T) {
	source := &fakeSource{values: map[string]int64{
		"0007": -52,  // outdoor_temp, scaled /10
		"1A01": 1,    // compressor_status, pass-through
		"CFAA": 2450, // power_consumption, pass-through
		"ZZZZ": 9,    // not in the register map
	}}
	writer := &fakeWriter{}
	bus := eventbus.New()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, unsubscribe := bus.Subscribe(ctx, events.TopicSamples, false)
	defer unsubscribe()

	svc := newTestService(t, source, writer, bus)
	svc.collectOnce(ctx)

	if len(writer.points) != 3 {
		t.Fatalf("expected 3 points (unknown register skipped), got %d", len(writer.points))
	}

	want := map[string]float64{
		"outdoor_temp":      -5.2,
		"compressor_status": 1,
		"power_consumption": 2450,
	}
	stamp := writer.points[0].Time()
	for _, point := range writer.points {
		name := tagValue(point, "name")
		expect, ok := want[name]
		if !ok {
			t.Fatalf("unexpected point for %q", name)
		}
		got, ok := fieldValue(point)
		if !ok {
			t.Fatalf("point %q missing float value field", name)
		}
		if got != expect {
			t.Errorf("point %q = %v, want %v", name, got, expect)
		}
		if !point.Time().Equal(stamp) {
			t.Errorf("point %q timestamp %v differs from batch timestamp %v", name, point.Time(), stamp)
		}
		if tagValue(point, "register_id") == "" {
			t.Errorf("point %q missing register_id tag", name)
		}
	}

	select {
	case ev := <-ch:
		batch, ok := ev.(events.SampleBatch)
		if !ok {
			t.Fatalf("unexpected event type %T", ev)
		}
		if len(batch.Values) != 3 {
			t.Errorf("batch has %d values, want 3", len(batch.Values))
		}
		if got := batch.Values["outdoor_temp"]; got != -5.2 {
			t.Errorf("batch outdoor_temp = %v, want -5.2", got)
		}
		if !batch.Time.Equal(stamp) {
			t.Errorf("batch timestamp %v differs from point timestamp %v", batch.Time, stamp)
		}
	case <-time.After(time.Second):
		t.Fatal("no sample batch published on the bus")
	}
}

func TestCollectOnceGatewayError(t *testing.T) {
	source := &fakeSource{err: errors.New("gateway offline")}
	writer := &fakeWriter{}

	svc := newTestService(t, source, writer, nil)
	svc.collectOnce(context.Background())

	if len(writer.points) != 0 {
		t.Errorf("expected no writes after poll failure, got %d points", len(writer.points))
	}
}

func TestCollectOnceWriteError(t *testing.T) {
	source := &fakeSource{values: map[string]int64{"0007": -52}}
	writer := &fakeWriter{err: errors.New("influx unavailable")}
	bus := eventbus.New()
	defer bus.Close()

	svc := newTestService(t, source, writer, bus)
	svc.collectOnce(context.Background())

	// a failed write must not publish stale samples
	if ev, ok := bus.GetLast(events.TopicSamples); ok {
		t.Errorf("unexpected published batch after write failure: %v", ev)
	}
}
