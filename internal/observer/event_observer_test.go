package observer

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/barcode-studio-go/internal/logger"
)

type countingObserver struct {
	name  string
	count atomic.Int32
}

func (o *countingObserver) OnEvent(context.Context, Event) { o.count.Add(1) }
func (o *countingObserver) GetObserverName() string       { return o.name }

type panickingObserver struct{}

func (panickingObserver) OnEvent(context.Context, Event) { panic("boom") }
func (panickingObserver) GetObserverName() string       { return "panicking" }

func TestEventPublisher_NotifyAndUnsubscribe(t *testing.T) {
	p := NewEventPublisher(logger.Discard())
	a := &countingObserver{name: "a"}
	b := &countingObserver{name: "b"}
	p.Subscribe(a)
	p.Subscribe(b)
	p.Subscribe(panickingObserver{})

	p.NotifyObservers(context.Background(), Event{EventType: GenerationCompleted})
	p.Flush()

	p.Unsubscribe(b)
	p.NotifyObservers(context.Background(), Event{EventType: GenerationCompleted})
	p.Flush()

	if a.count.Load() != 2 {
		t.Errorf("Expected observer a to see 2 events, got %d", a.count.Load())
	}
	if b.count.Load() != 1 {
		t.Errorf("Expected observer b to see 1 event, got %d", b.count.Load())
	}
}

func TestEventPublisher_CancelledContextStillDelivers(t *testing.T) {
	p := NewEventPublisher(logger.Discard())
	got := make(chan error, 1)
	p.Subscribe(funcObserver(func(ctx context.Context, _ Event) { got <- ctx.Err() }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.NotifyObservers(ctx, Event{EventType: ScanCompleted})
	p.Flush()

	if err := <-got; err != nil {
		t.Errorf("Expected an uncancelled context, got %v", err)
	}
}

type funcObserver func(context.Context, Event)

func (f funcObserver) OnEvent(ctx context.Context, e Event) { f(ctx, e) }
func (f funcObserver) GetObserverName() string             { return "func" }

func TestStatsObserver(t *testing.T) {
	o := NewStatsObserver()
	ctx := context.Background()
	o.OnEvent(ctx, Event{EventType: GenerationCompleted, ProcessingTime: time.Millisecond})
	o.OnEvent(ctx, Event{EventType: GenerationFallback, ProcessingTime: time.Millisecond})
	o.OnEvent(ctx, Event{EventType: GenerationFailed, ProcessingTime: time.Millisecond})
	o.OnEvent(ctx, Event{EventType: ScanFailed, ProcessingTime: time.Millisecond})

	m := o.GetMetrics()
	want := map[string]int64{"generated": 2, "fallbacks": 1, "failed": 1, "scans": 1, "scan_misses": 1}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("%s = %v, want %d", k, m[k], v)
		}
	}
}

func TestLoggingObserver_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	o := NewLoggingObserver(l)
	o.OnEvent(context.Background(), Event{
		EventType: GenerationFallback,
		Symbology: "datamatrix",
		Format:    "png",
		Success:   true,
	})

	out := buf.String()
	for _, want := range []string{`"level":"warning"`, `"symbology":"datamatrix"`, "placeholder"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log output to contain %s, got %s", want, out)
		}
	}
}

func TestPrometheusObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewPrometheusObserver(reg)
	ctx := context.Background()

	o.OnEvent(ctx, Event{EventType: GenerationCompleted, Symbology: "qrcode", Format: "png"})
	o.OnEvent(ctx, Event{EventType: GenerationCompleted, Symbology: "qrcode", Format: "png"})
	o.OnEvent(ctx, Event{EventType: GenerationFallback, Symbology: "aztec", Format: "svg"})
	o.OnEvent(ctx, Event{EventType: GenerationFailed})
	o.OnEvent(ctx, Event{EventType: ScanFailed})

	if got := testutil.ToFloat64(o.generations.WithLabelValues("qrcode", "png", "ok")); got != 2 {
		t.Errorf("Expected 2 ok generations, got %v", got)
	}
	if got := testutil.ToFloat64(o.generations.WithLabelValues("aztec", "svg", "fallback")); got != 1 {
		t.Errorf("Expected 1 fallback, got %v", got)
	}
	if got := testutil.ToFloat64(o.generations.WithLabelValues("unknown", "unknown", "failed")); got != 1 {
		t.Errorf("Expected 1 failed generation, got %v", got)
	}
	if got := testutil.ToFloat64(o.scans.WithLabelValues("not_found")); got != 1 {
		t.Errorf("Expected 1 missed scan, got %v", got)
	}
}
