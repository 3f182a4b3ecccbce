package api

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"device-inventory-backend/internal/model"
	"device-inventory-backend/internal/store"
)

// memStore is an in-memory store.Store with a unique MAC constraint.
type memStore struct {
	mu      sync.Mutex
	devices map[string]model.Device
	err     error // returned by every call when set
	pingErr error
	calls   int
}

func newMemStore() *memStore {
	return &memStore{devices: map[string]model.Device{}}
}

func (m *memStore) enter() error {
	m.calls++
	return m.err
}

func (m *memStore) macTaken(mac, except string) bool {
	for id, d := range m.devices {
		if id != except && d.MACAddress == mac {
			return true
		}
	}
	return false
}

func (m *memStore) List(context.Context) ([]model.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	out := make([]model.Device, 0, len(m.devices))
	for _, d := range m.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) Get(_ context.Context, id string) (*model.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	d, ok := m.devices[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (m *memStore) Create(_ context.Context, d *model.Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if m.macTaken(d.MACAddress, "") {
		return store.ErrDuplicate
	}
	d.ID = primitive.NewObjectID().Hex()
	m.devices[d.ID] = *d
	return nil
}

func (m *memStore) Update(_ context.Context, id string, f model.DeviceFields, now time.Time) (*model.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return nil, err
	}
	d, ok := m.devices[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if m.macTaken(f.MACAddress, id) {
		return nil, store.ErrDuplicate
	}
	d.Apply(f, now)
	m.devices[id] = d
	return &d, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(); err != nil {
		return err
	}
	if _, ok := m.devices[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.devices, id)
	return nil
}

func (m *memStore) Ping(context.Context) error { return m.pingErr }

func (m *memStore) Close(context.Context) error { return nil }

var errConnRefused = errors.New("connection refused")

// stubProber answers with a fixed result and records the addresses probed.
type stubProber struct {
	online bool
	probed []string
}

func (p *stubProber) Probe(_ context.Context, ip string) bool {
	p.probed = append(p.probed, ip)
	return p.online
}

// blockingStore holds the first List call until release is closed.
type blockingStore struct {
	*memStore
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newBlockingStore() *blockingStore {
	return &blockingStore{
		memStore: newMemStore(),
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (b *blockingStore) List(ctx context.Context) ([]model.Device, error) {
	devices, err := b.memStore.List(ctx)
	b.once.Do(func() {
		close(b.entered)
		<-b.release
	})
	return devices, err
}
