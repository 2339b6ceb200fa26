package event

import (
	"context"
	"log/slog"
	"reflect"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultWorkers   = 16
	defaultQueueSize = 1024
)

// Event marks types that can travel over the bus.
type Event[T any] interface {
	Event()
}

// Handler runs asynchronously on a bus worker.
type Handler[T any] func(context.Context, T)

type EventFilter[T any] func(T) bool

type Bus struct {
	ctx         context.Context
	cancel      context.CancelFunc
	subscribers map[reflect.Type][]subscriber
	mu          sync.RWMutex
	wg          sync.WaitGroup
	closed      atomic.Bool

	workQueue chan workItem
	metrics   *busMetrics
}

type workItem struct {
	event     any
	eventType string
	invoke    func(context.Context, any)
}

type subscriber struct {
	id      uuid.UUID
	invoke  func(context.Context, any)
	channel any
}

type Subscription struct {
	bus       *Bus
	eventType reflect.Type
	id        uuid.UUID
	once      sync.Once
}

type busOptions struct {
	workers   int
	queueSize int
}

type BusOption func(*busOptions)

func WithWorkers(n int) BusOption {
	return func(o *busOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

func WithQueueSize(n int) BusOption {
	return func(o *busOptions) {
		if n > 0 {
			o.queueSize = n
		}
	}
}

// NewBus starts the delivery workers. A nil registerer disables metrics.
func NewBus(registerer prometheus.Registerer, opts ...BusOption) *Bus {
	options := busOptions{workers: defaultWorkers, queueSize: defaultQueueSize}
	for _, opt := range opts {
		opt(&options)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus := &Bus{
		ctx:         ctx,
		cancel:      cancel,
		subscribers: make(map[reflect.Type][]subscriber),
		workQueue:   make(chan workItem, options.queueSize),
		metrics:     newBusMetrics(registerer),
	}

	for range options.workers {
		bus.wg.Add(1)
		go bus.worker()
	}

	return bus
}

func (bus *Bus) worker() {
	defer bus.wg.Done()

	for {
		select {
		case <-bus.ctx.Done():
			return
		case item := <-bus.workQueue:
			bus.deliver(item)
		}
	}
}

func (bus *Bus) deliver(item workItem) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(bus.ctx, "event handler panicked",
				"error", r,
				"event_type", item.eventType,
				"stack", string(debug.Stack()),
			)
		}
	}()

	item.invoke(bus.ctx, item.event)
	bus.metrics.incDelivered(item.eventType)
}

// Subscribe registers handler for events of type T. A nil filter accepts
// every event.
func Subscribe[T Event[T]](bus *Bus, handler Handler[T], filter EventFilter[T]) *Subscription {
	if bus.closed.Load() {
		slog.WarnContext(bus.ctx, "subscribe on closed event bus")
		return &Subscription{bus: bus}
	}

	filter = acceptAll(filter)
	id := uuid.New()
	return bus.add(typeOf[T](), subscriber{
		id: id,
		invoke: func(ctx context.Context, event any) {
			if typed, ok := event.(T); ok && filter(typed) {
				handler(ctx, typed)
			}
		},
	})
}

// SubscribeChannel delivers events of type T into a buffered channel. Events
// that do not fit into the buffer are dropped rather than blocking a worker.
// Unsubscribe closes the channel.
func SubscribeChannel[T Event[T]](bus *Bus, bufferSize int, filter EventFilter[T]) (<-chan T, *Subscription) {
	if bus.closed.Load() {
		slog.WarnContext(bus.ctx, "subscribe channel on closed event bus")
		ch := make(chan T)
		close(ch)
		return ch, &Subscription{bus: bus}
	}

	eventType := typeOf[T]()
	eventTypeName := eventType.String()
	filter = acceptAll(filter)

	ch := make(chan T, bufferSize)
	id := uuid.New()
	sub := bus.add(eventType, subscriber{
		id:      id,
		channel: ch,
		invoke: func(ctx context.Context, event any) {
			typed, ok := event.(T)
			if !ok || !filter(typed) {
				return
			}
			select {
			case ch <- typed:
			default:
				bus.metrics.incDropped(eventTypeName)
				slog.DebugContext(ctx, "dropped event, subscriber buffer full",
					"event_type", eventTypeName,
					"subscriber_id", id,
				)
			}
		},
	})

	return ch, sub
}

func (bus *Bus) add(eventType reflect.Type, sub subscriber) *Subscription {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscribers[eventType] = append(bus.subscribers[eventType], sub)

	return &Subscription{bus: bus, eventType: eventType, id: sub.id}
}

// Unsubscribe is idempotent.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()

		if s.bus.closed.Load() {
			return
		}

		subscribers := s.bus.subscribers[s.eventType]
		for i, sub := range subscribers {
			if sub.id != s.id {
				continue
			}
			s.bus.subscribers[s.eventType] = append(subscribers[:i:i], subscribers[i+1:]...)
			closeChannel(sub)
			break
		}
	})
}

// Publish queues event for every subscriber of its type. It never blocks:
// when the work queue is full the delivery is dropped and counted.
func Publish[T Event[T]](bus *Bus, event T) {
	if bus.closed.Load() {
		slog.DebugContext(bus.ctx, "publish on closed event bus")
		return
	}

	eventType := reflect.TypeOf(event)
	eventTypeName := eventType.String()

	bus.mu.RLock()
	subs := make([]subscriber, len(bus.subscribers[eventType]))
	copy(subs, bus.subscribers[eventType])
	bus.mu.RUnlock()

	for _, sub := range subs {
		item := workItem{event: event, eventType: eventTypeName, invoke: sub.invoke}

		select {
		case bus.workQueue <- item:
		case <-bus.ctx.Done():
			return
		default:
			bus.metrics.incDropped(eventTypeName)
			slog.DebugContext(bus.ctx, "dropped event, work queue full", "event_type", eventTypeName)
		}
	}

	bus.metrics.incPublished(eventTypeName)
}

// Close stops the workers and closes every channel subscription. Queued but
// undelivered events are discarded.
func (bus *Bus) Close() {
	if !bus.closed.CompareAndSwap(false, true) {
		return
	}

	bus.cancel()
	bus.wg.Wait()

	bus.mu.Lock()
	defer bus.mu.Unlock()
	for eventType, subs := range bus.subscribers {
		for _, sub := range subs {
			closeChannel(sub)
		}
		delete(bus.subscribers, eventType)
	}

	slog.Debug("event bus closed")
}

func (bus *Bus) IsClosed() bool {
	return bus.closed.Load()
}

func SubscriberCount[T Event[T]](bus *Bus) int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	return len(bus.subscribers[typeOf[T]()])
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

func acceptAll[T any](filter EventFilter[T]) EventFilter[T] {
	if filter != nil {
		return filter
	}
	return func(T) bool { return true }
}

func closeChannel(sub subscriber) {
	if sub.channel != nil {
		reflect.ValueOf(sub.channel).Close()
	}
}
