package scene

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/OCAP2/globe/internal/model/core"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Collector keeps every primitive it receives in memory
type Collector struct {
	mu         sync.Mutex
	name       string
	primitives []core.Primitive
	ended      bool
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add appends p.
func (c *Collector) Add(_ context.Context, p core.Primitive) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.primitives = append(c.primitives, p)
	return nil
}

// Begin resets the collector for a new scene.
func (c *Collector) Begin(_ context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
	c.primitives = nil
	c.ended = false
	return nil
}

// End marks the scene complete.
func (c *Collector) End(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ended = true
	return nil
}

// Name returns the name passed to the last Begin.
func (c *Collector) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// Ended reports whether End was called after the last Begin.
func (c *Collector) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ended
}

// Primitives returns a copy of everything collected so far.
func (c *Collector) Primitives() []core.Primitive {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.primitives)
}

// ByKind returns the collected primitives of kind k.
func (c *Collector) ByKind(k core.PrimitiveKind) []core.Primitive {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []core.Primitive
	for _, p := range c.primitives {
		if p.Kind() == k {
			out = append(out, p)
		}
	}
	return out
}

// MultiSink fans primitives out to several sinks.
// Every sink receives every primitive; errors are joined.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a sink writing to all non-nil sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	valid := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			valid = append(valid, s)
		}
	}
	return &MultiSink{sinks: valid}
}

// Add sends p to all sinks.
func (m *MultiSink) Add(ctx context.Context, p core.Primitive) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Add(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Begin forwards to every sink that is a Session. When one fails, the
// sessions already begun are ended and the error is returned.
func (m *MultiSink) Begin(ctx context.Context, name string) error {
	var begun []Session
	for _, s := range m.sinks {
		sess, ok := s.(Session)
		if !ok {
			continue
		}
		if err := sess.Begin(ctx, name); err != nil {
			errs := []error{err}
			for _, b := range begun {
				if endErr := b.End(ctx); endErr != nil {
					errs = append(errs, endErr)
				}
			}
			return errors.Join(errs...)
		}
		begun = append(begun, sess)
	}
	return nil
}

// End forwards to every sink that is a Session.
func (m *MultiSink) End(ctx context.Context) error {
	var errs []error
	for _, s := range m.sinks {
		if sess, ok := s.(Session); ok {
			if err := sess.End(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// MeteredSink counts primitives added to the wrapped sink, by kind
type MeteredSink struct {
	inner   Sink
	counter metric.Int64Counter
}

// NewMeteredSink wraps inner with a "globe.scene.primitives" counter from meter.
func NewMeteredSink(inner Sink, meter metric.Meter) (*MeteredSink, error) {
	counter, err := meter.Int64Counter(
		"globe.scene.primitives",
		metric.WithDescription("Primitives drawn into a scene sink"),
		metric.WithUnit("{primitive}"),
	)
	if err != nil {
		return nil, err
	}
	return &MeteredSink{inner: inner, counter: counter}, nil
}

// Add forwards p and counts it when the inner sink accepts it.
func (m *MeteredSink) Add(ctx context.Context, p core.Primitive) error {
	if err := m.inner.Add(ctx, p); err != nil {
		return err
	}
	m.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(p.Kind()))))
	return nil
}

// Begin forwards to the inner sink when it is a Session.
func (m *MeteredSink) Begin(ctx context.Context, name string) error {
	if sess, ok := m.inner.(Session); ok {
		return sess.Begin(ctx, name)
	}
	return nil
}

// End forwards to the inner sink when it is a Session.
func (m *MeteredSink) End(ctx context.Context) error {
	if sess, ok := m.inner.(Session); ok {
		return sess.End(ctx)
	}
	return nil
}

// OptionalSink wraps a sink whose failures must not abort the scene.
// The first error in a scene detaches the sink until the next Begin and is
// passed to onErr; the scene carries on without it.
type OptionalSink struct {
	inner Sink
	onErr func(error)

	mu       sync.Mutex
	detached bool
}

// NewOptionalSink wraps inner. A nil onErr discards errors.
func NewOptionalSink(inner Sink, onErr func(error)) *OptionalSink {
	if onErr == nil {
		onErr = func(error) {}
	}
	return &OptionalSink{inner: inner, onErr: onErr}
}

// Detached reports whether the wrapped sink was dropped from the current scene.
func (o *OptionalSink) Detached() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.detached
}

func (o *OptionalSink) fail(err error) {
	o.mu.Lock()
	o.detached = true
	o.mu.Unlock()
	o.onErr(err)
}

// Begin starts the wrapped session, detaching it on failure.
func (o *OptionalSink) Begin(ctx context.Context, name string) error {
	o.mu.Lock()
	o.detached = false
	o.mu.Unlock()

	if sess, ok := o.inner.(Session); ok {
		if err := sess.Begin(ctx, name); err != nil {
			o.fail(err)
		}
	}
	return nil
}

// Add forwards p unless the sink is detached.
func (o *OptionalSink) Add(ctx context.Context, p core.Primitive) error {
	if o.Detached() {
		return nil
	}
	if err := o.inner.Add(ctx, p); err != nil {
		o.fail(err)
	}
	return nil
}

// End ends the wrapped session unless the sink is detached.
func (o *OptionalSink) End(ctx context.Context) error {
	if o.Detached() {
		return nil
	}
	if sess, ok := o.inner.(Session); ok {
		if err := sess.End(ctx); err != nil {
			o.fail(err)
		}
	}
	return nil
}
