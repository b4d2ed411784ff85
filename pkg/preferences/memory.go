package preferences

import (
	"context"
	"sync"

	"github.com/travigo/railcommute/pkg/ctdf"
)

type MemoryStore struct {
	mutex       sync.Mutex
	settings    ctdf.JourneyAlertSettings
	subscribers map[int]chan ctdf.JourneyAlertSettings
	nextID      int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		settings:    ctdf.DefaultJourneyAlertSettings(),
		subscribers: map[int]chan ctdf.JourneyAlertSettings{},
	}
}

func (s *MemoryStore) Get(_ context.Context) (ctdf.JourneyAlertSettings, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.settings, nil
}

func (s *MemoryStore) SetAlertPreference(_ context.Context, preference ctdf.AlertPreference) error {
	s.update(func(settings *ctdf.JourneyAlertSettings) {
		settings.AlertPreference = ctdf.ParseAlertPreference(string(preference))
	})

	return nil
}

func (s *MemoryStore) SetTwoMinuteAlertEnabled(_ context.Context, enabled bool) error {
	s.update(func(settings *ctdf.JourneyAlertSettings) {
		settings.TwoMinuteAlertEnabled = enabled
	})

	return nil
}

func (s *MemoryStore) Subscribe(ctx context.Context) (<-chan ctdf.JourneyAlertSettings, func()) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	id := s.nextID
	s.nextID++

	ch := make(chan ctdf.JourneyAlertSettings, 1)
	ch <- s.settings
	s.subscribers[id] = ch

	stop := make(chan struct{})

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mutex.Lock()
			defer s.mutex.Unlock()

			delete(s.subscribers, id)
			close(ch)
			close(stop)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-stop:
		}
	}()

	return ch, cancel
}

func (s *MemoryStore) update(change func(settings *ctdf.JourneyAlertSettings)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	change(&s.settings)

	for _, ch := range s.subscribers {
		offer(ch, s.settings)
	}
}
