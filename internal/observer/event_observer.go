package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Event describes one finished generation or scan.
type Event struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	Symbology      string                 `json:"symbology,omitempty"`
	Format         string                 `json:"format,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of event
type EventType string

const (
	// GenerationCompleted when a code was rendered
	GenerationCompleted EventType = "generation_completed"
	// GenerationFallback when a 2D code was replaced by its placeholder
	GenerationFallback EventType = "generation_fallback"
	// GenerationFailed when the request was rejected or rendering failed
	GenerationFailed EventType = "generation_failed"
	// ScanCompleted when an upload was decoded
	ScanCompleted EventType = "scan_completed"
	// ScanFailed when nothing could be decoded
	ScanFailed EventType = "scan_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event Event)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event Event)
}

// LoggingObserver logs events
type LoggingObserver struct {
	logger logrus.FieldLogger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger logrus.FieldLogger) Observer {
	return &LoggingObserver{logger: logger}
}

// OnEvent handles events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event Event) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}
	if event.Symbology != "" {
		fields["symbology"] = event.Symbology
	}
	if event.Format != "" {
		fields["format"] = event.Format
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case GenerationCompleted:
		entry.Info("Barcode generated")
	case GenerationFallback:
		entry.Warn("2D barcode replaced by placeholder")
	case GenerationFailed:
		entry.Warn("Barcode generation failed")
	case ScanCompleted:
		entry.Info("Barcode scanned")
	case ScanFailed:
		entry.Info("No barcode detected")
	default:
		entry.Info("Event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// StatsObserver keeps in-process counters, exposed on /health.
type StatsObserver struct {
	mu                  sync.RWMutex
	generated           int64
	fallbacks           int64
	failed              int64
	scans               int64
	scanMisses          int64
	totalProcessingTime time.Duration
}

// NewStatsObserver creates a new stats observer
func NewStatsObserver() *StatsObserver {
	return &StatsObserver{}
}

// OnEvent updates the counters
func (o *StatsObserver) OnEvent(ctx context.Context, event Event) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case GenerationCompleted:
		o.generated++
	case GenerationFallback:
		o.generated++
		o.fallbacks++
	case GenerationFailed:
		o.failed++
	case ScanCompleted:
		o.scans++
	case ScanFailed:
		o.scans++
		o.scanMisses++
	}
	o.totalProcessingTime += event.ProcessingTime
}

// GetObserverName returns the observer name
func (o *StatsObserver) GetObserverName() string {
	return "stats_observer"
}

// GetMetrics returns current counters
func (o *StatsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	events := o.generated + o.failed + o.scans
	avg := time.Duration(0)
	if events > 0 {
		avg = o.totalProcessingTime / time.Duration(events)
	}

	return map[string]interface{}{
		"generated":           o.generated,
		"fallbacks":           o.fallbacks,
		"failed":              o.failed,
		"scans":               o.scans,
		"scan_misses":         o.scanMisses,
		"avg_processing_time": avg.String(),
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	log       logrus.FieldLogger
	wg        sync.WaitGroup
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(log logrus.FieldLogger) *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
		log:       log,
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers the event to every observer on its own
// goroutine. A panicking observer is logged and does not affect the others.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// Delivery outlives the request that produced the event.
	ctx = context.WithoutCancel(ctx)
	for _, observer := range observers {
		p.wg.Add(1)
		go func(obs Observer) {
			defer p.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					p.log.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

// Flush waits for in-flight deliveries. Used on shutdown and in tests.
func (p *EventPublisher) Flush() {
	p.wg.Wait()
}
