package countdown

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/powertimer/domain"
)

// Completer commits the completed transition for a timer that reached zero.
type Completer interface {
	Complete(ctx context.Context, id string) (*domain.Timer, error)
}

// Notifier announces completions the service committed.
type Notifier interface {
	TimerCompleted(timer domain.Timer) error
}

// removedTTL bounds how long a forgotten id keeps rejecting late copies.
const removedTTL = 10 * time.Minute

// Config contains runtime options for the Service.
type Config struct {
	TickInterval    time.Duration
	CompleteTimeout time.Duration
}

type track struct {
	timer       domain.Timer
	known       bool
	completing  bool
	subscribers map[int]chan Update
}

// Service runs one countdown per timer id for the whole process. Between
// authoritative updates it predicts remaining time locally and it is the only
// component that reports a zero-crossing to the Completer.
type Service struct {
	mu        sync.Mutex
	cfg       Config
	tracks    map[string]*track
	removed   map[string]time.Time
	nextSub   int
	completer Completer
	notifier  Notifier
	logger    *zap.Logger
	stopCh    chan struct{}
	running   bool
	inflight  sync.WaitGroup
}

// New creates a Service with the provided configuration.
func New(cfg Config, logger *zap.Logger) *Service {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.CompleteTimeout <= 0 {
		cfg.CompleteTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:    cfg,
		tracks:  make(map[string]*track),
		removed: make(map[string]time.Time),
		logger:  logger,
	}
}

// SetCompleter injects the completion path.
func (s *Service) SetCompleter(c Completer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completer = c
}

// SetNotifier injects the completion notifier.
func (s *Service) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

// Start launches the ticking loop.
func (s *Service) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	go s.run(stopCh)
}

// Stop terminates the ticking loop, waits for in-flight completions and closes every subscriber.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.running = false
	s.mu.Unlock()

	s.inflight.Wait()

	s.mu.Lock()
	for id, t := range s.tracks {
		closeSubscribers(t)
		delete(s.tracks, id)
	}
	s.mu.Unlock()
}

// Replace installs an authoritative copy of timer and clears any pending
// completion flag. Copies older than the cached version are ignored so late
// deliveries cannot roll a track back. A running timer's remaining time is
// projected from its last commit, and a reload of the same version keeps the
// lower local prediction. Ids removed through Forget stay ignored.
func (s *Service) Replace(timer domain.Timer) {
	if timer.ID == "" {
		return
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, gone := s.removed[timer.ID]; gone {
		return
	}

	t := s.trackLocked(timer.ID)
	if t.known && timer.Version > 0 && timer.Version < t.timer.Version {
		return
	}

	next := timer.Clone()
	if next.Status == domain.StatusRunning {
		if !next.UpdatedAt.IsZero() {
			if elapsed := int(now.Sub(next.UpdatedAt) / time.Second); elapsed > 0 {
				next.RemainingSeconds = max(0, next.RemainingSeconds-elapsed)
			}
		}
		if t.known && t.timer.Status == domain.StatusRunning && t.timer.Version == next.Version {
			next.RemainingSeconds = min(next.RemainingSeconds, t.timer.RemainingSeconds)
		}
	}

	t.timer = next
	t.known = true
	t.completing = false
	s.emitLocked(t, SourceAuthoritative, now)
}

// Forget drops the track for id and closes its subscribers. Copies of id
// arriving later, such as a resync list read before the delete, are ignored.
func (s *Service) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed[id] = time.Now()
	if t, ok := s.tracks[id]; ok {
		closeSubscribers(t)
		delete(s.tracks, id)
	}
}

// Publish lets the Service receive committed mutations from the timer use case.
func (s *Service) Publish(_ context.Context, timer domain.Timer) {
	s.Replace(timer)
}

// Remove forgets a deleted timer.
func (s *Service) Remove(_ context.Context, id string) {
	s.Forget(id)
}

// Sync replaces every listed timer and forgets unlisted tracks nobody watches.
func (s *Service) Sync(timers []domain.Timer) {
	listed := make(map[string]bool, len(timers))
	for _, timer := range timers {
		listed[timer.ID] = true
		s.Replace(timer)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tracks {
		if !listed[id] && len(t.subscribers) == 0 {
			delete(s.tracks, id)
		}
	}
	cutoff := time.Now().Add(-removedTTL)
	for id, at := range s.removed {
		if at.Before(cutoff) {
			delete(s.removed, id)
		}
	}
}

// Subscribe registers an observer for one timer id. The current copy is sent
// first when known. Sends never block: a full channel drops the update.
func (s *Service) Subscribe(id string, buffer int) (<-chan Update, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Update, buffer)

	s.mu.Lock()
	t := s.trackLocked(id)
	s.nextSub++
	subID := s.nextSub
	t.subscribers[subID] = ch
	if t.known {
		ch <- Update{Timer: t.timer.Clone(), Source: SourceAuthoritative, At: time.Now()}
	}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if t, ok := s.tracks[id]; ok {
				if sub, ok := t.subscribers[subID]; ok {
					delete(t.subscribers, subID)
					close(sub)
				}
			}
		})
	}
	return ch, cancel
}

// Snapshot returns the cached copy for id.
func (s *Service) Snapshot(id string) (domain.Timer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tracks[id]
	if !ok || !t.known {
		return domain.Timer{}, false
	}
	return t.timer.Clone(), true
}

// Remaining reports the predicted remaining seconds of a running timer.
func (s *Service) Remaining(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tracks[id]
	if !ok || !t.known || t.timer.Status != domain.StatusRunning {
		return 0, false
	}
	return t.timer.RemainingSeconds, true
}

// Len returns the number of tracked timers.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tracks)
}

func (s *Service) run(stopCh <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			s.tick(now)
		}
	}
}

func (s *Service) tick(now time.Time) {
	var expired []string

	s.mu.Lock()
	for id, t := range s.tracks {
		if !t.known || t.completing || t.timer.Status != domain.StatusRunning {
			continue
		}
		predicted := t.timer.RemainingSeconds - 1
		if predicted < 0 {
			predicted = 0
		}
		t.timer.RemainingSeconds = predicted
		if predicted == 0 {
			// Views see zero only once the committed completion comes back.
			t.completing = true
			expired = append(expired, id)
			continue
		}
		s.emitLocked(t, SourcePredicted, now)
	}
	completer := s.completer
	s.mu.Unlock()

	for _, id := range expired {
		if completer == nil {
			s.logger.Warn("timer reached zero without a completer", zap.String("timer_id", id))
			continue
		}
		s.inflight.Add(1)
		go s.complete(completer, id)
	}
}

func (s *Service) complete(completer Completer, id string) {
	defer s.inflight.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CompleteTimeout)
	defer cancel()

	timer, err := completer.Complete(ctx, id)
	if err != nil {
		// No retry: the track stays stale until the next authoritative copy arrives.
		s.logger.Warn("timer completion failed", zap.String("timer_id", id), zap.Error(err))
		return
	}
	s.Replace(*timer)
	if !timer.IsCompleted() {
		return
	}
	s.logger.Info("timer completed", zap.String("timer_id", id), zap.String("name", timer.Name))

	s.mu.Lock()
	notifier := s.notifier
	s.mu.Unlock()
	if notifier == nil {
		return
	}
	if err := notifier.TimerCompleted(timer.Clone()); err != nil {
		s.logger.Debug("completion notification skipped", zap.String("timer_id", id), zap.Error(err))
	}
}

func (s *Service) trackLocked(id string) *track {
	t, ok := s.tracks[id]
	if !ok {
		t = &track{subscribers: make(map[int]chan Update)}
		s.tracks[id] = t
	}
	return t
}

func (s *Service) emitLocked(t *track, source Source, at time.Time) {
	for _, ch := range t.subscribers {
		select {
		case ch <- Update{Timer: t.timer.Clone(), Source: source, At: at}:
		default:
		}
	}
}

func closeSubscribers(t *track) {
	for subID, ch := range t.subscribers {
		delete(t.subscribers, subID)
		close(ch)
	}
}
