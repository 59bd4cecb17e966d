package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Eka2r/Padayon/internal/lib/sl"
)

// Loader reads the whole collection from storage.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Feed publishes and subscribes to one collection.
type Feed[T any] struct {
	appID      string
	collection string
	load       Loader[T]
	order      Order[T]
	transport  Transport
	store      Store
	log        *slog.Logger
	open       prometheus.Gauge

	// refreshMu keeps publish order equal to load order on this instance.
	refreshMu sync.Mutex
}

// NewFeed wires a collection feed. open may be nil.
func NewFeed[T any](
	appID, collection string,
	load Loader[T],
	order Order[T],
	transport Transport,
	store Store,
	log *slog.Logger,
	open prometheus.Gauge,
) *Feed[T] {
	return &Feed[T]{
		appID:      appID,
		collection: collection,
		load:       load,
		order:      order,
		transport:  transport,
		store:      store,
		log:        log.With(slog.String("collection", collection)),
		open:       open,
	}
}

// Collection returns the collection name.
func (f *Feed[T]) Collection() string {
	return f.collection
}

// Refresh loads the full collection, stores it as the latest snapshot and
// broadcasts it to every subscriber.
func (f *Feed[T]) Refresh(ctx context.Context) error {
	const op = "live.Feed.Refresh"

	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()

	snap, err := f.take(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := f.transport.Publish(ctx, channelName(f.appID, f.collection), payload); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	f.log.Debug("snapshot published", slog.Int("items", len(snap.Items)), slog.Int64("version", snap.Version))
	return nil
}

// Latest returns the cached snapshot, loading it when nothing is cached yet.
func (f *Feed[T]) Latest(ctx context.Context) (Snapshot[T], error) {
	const op = "live.Feed.Latest"

	var snap Snapshot[T]
	found, err := f.store.Get(ctx, latestKey(f.appID, f.collection), &snap)
	if err != nil {
		f.log.Warn("failed to read cached snapshot", sl.Err(err))
	}
	if found {
		return snap, nil
	}

	snap, err = f.take(ctx)
	if err != nil {
		return Snapshot[T]{}, fmt.Errorf("%s: %w", op, err)
	}
	return snap, nil
}

func (f *Feed[T]) take(ctx context.Context) (Snapshot[T], error) {
	items, err := f.load(ctx)
	if err != nil {
		return Snapshot[T]{}, err
	}
	if items == nil {
		items = []T{}
	}
	snap := Snapshot[T]{
		Collection: f.collection,
		Path:       Path(f.appID, f.collection),
		Version:    time.Now().UnixNano(),
		Items:      items,
	}
	if err := f.store.Set(ctx, latestKey(f.appID, f.collection), snap, 0); err != nil {
		f.log.Warn("failed to cache snapshot", sl.Err(err))
	}
	return snap, nil
}

// Subscribe opens one live subscription bound to ctx. The first state is
// delivered before Subscribe returns. sink may be nil.
func (f *Feed[T]) Subscribe(ctx context.Context, sink func(State[T])) (*Subscription[T], error) {
	const op = "live.Feed.Subscribe"

	stream, err := f.transport.Subscribe(ctx, channelName(f.appID, f.collection))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		view:   NewView(f.order, sink),
		stream: stream,
		cancel: cancel,
		done:   make(chan struct{}),
		open:   f.open,
	}
	if f.open != nil {
		f.open.Inc()
	}

	if snap, err := f.Latest(ctx); err != nil {
		f.log.Error("initial snapshot failed", sl.Err(err))
		sub.view.Fail(f.failMessage())
	} else {
		sub.view.Apply(snap)
	}

	go f.listen(ctx, sub)
	return sub, nil
}

func (f *Feed[T]) listen(ctx context.Context, sub *Subscription[T]) {
	defer close(sub.done)
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-sub.stream.C():
			if !ok {
				if ctx.Err() == nil {
					f.log.Error("live stream closed")
					sub.view.Fail(f.failMessage())
				}
				return
			}
			var snap Snapshot[T]
			if err := json.Unmarshal(payload, &snap); err != nil {
				f.log.Error("malformed snapshot", sl.Err(err))
				sub.view.Fail(f.failMessage())
				continue
			}
			sub.view.Apply(snap)
		}
	}
}

func (f *Feed[T]) failMessage() string {
	return fmt.Sprintf("could not load %s, showing the last known list", f.collection)
}

// Subscription is the cancel handle of one live subscription.
type Subscription[T any] struct {
	view   *View[T]
	stream Stream
	cancel context.CancelFunc
	done   chan struct{}
	open   prometheus.Gauge
	once   sync.Once
}

// State returns the subscriber's current state.
func (s *Subscription[T]) State() State[T] {
	return s.view.State()
}

// Done is closed when the subscription stops delivering.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

// Close releases the subscription. Only the first call has an effect.
func (s *Subscription[T]) Close() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		err = s.stream.Close()
		<-s.done
		if s.open != nil {
			s.open.Dec()
		}
	})
	return err
}
