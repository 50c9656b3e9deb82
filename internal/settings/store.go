package settings

import "sync"

// Store provides the current settings and notifies subscribers when they may
// have changed. Notifications carry no payload; subscribers re-read Settings.
type Store interface {
	Settings() (Settings, error)
	Subscribe(fn func()) Subscription
}

// Subscription is a registered change callback.
type Subscription interface {
	Cancel()
}

// observers is the subscriber list shared by the stores.
type observers struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func()
}

type subscription struct {
	once   sync.Once
	cancel func()
}

func (s *subscription) Cancel() {
	s.once.Do(s.cancel)
}

func (o *observers) subscribe(fn func()) Subscription {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fns == nil {
		o.fns = make(map[int]func())
	}
	id := o.nextID
	o.nextID++
	o.fns[id] = fn
	return &subscription{cancel: func() {
		o.mu.Lock()
		delete(o.fns, id)
		o.mu.Unlock()
	}}
}

func (o *observers) notify() {
	o.mu.Lock()
	fns := make([]func(), 0, len(o.fns))
	for _, fn := range o.fns {
		fns = append(fns, fn)
	}
	o.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// MemoryStore keeps settings in memory.
type MemoryStore struct {
	observers
	mu sync.RWMutex
	s  Settings
}

// NewMemoryStore returns a store holding s.
func NewMemoryStore(s Settings) *MemoryStore {
	return &MemoryStore{s: s}
}

// Settings returns the stored value.
func (m *MemoryStore) Settings() (Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.s, nil
}

// Set replaces the stored value and notifies subscribers.
func (m *MemoryStore) Set(s Settings) {
	m.mu.Lock()
	m.s = s
	m.mu.Unlock()
	m.notify()
}

// Subscribe registers fn for change notifications.
func (m *MemoryStore) Subscribe(fn func()) Subscription {
	return m.subscribe(fn)
}
