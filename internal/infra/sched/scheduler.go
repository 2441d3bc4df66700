package sched

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/ports/adapter"
	"github.com/fqrmix/what-is-the-price-now/internal/infra/metrics"
)

var _ adapter.TimerScheduler = (*Scheduler)(nil)

const shardCount = 16

// entry is one armed one-shot timer. The identity of the entry matters:
// fire only consumes the table slot if it still holds this exact entry,
// so a concurrent cancel-and-replace can never be undone by a stale timer.
type entry struct {
	timer *time.Timer
	cb    adapter.TimerCallback
	at    time.Time
}

type shard struct {
	mu     sync.Mutex
	timers map[string]*entry
}

// Scheduler keeps one pending timer per subscription id in a sharded
// table. It holds no recurrence logic: a fired timer is consumed and the
// callback re-arms the chain itself. Timers live in process memory only;
// the owning system re-arms everything from storage on startup.
type Scheduler struct {
	shards [shardCount]*shard

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
	// mu orders Schedule against Shutdown: inserts hold it shared for
	// their whole critical section so the shutdown sweep, which holds it
	// exclusively, can never leave a late timer behind.
	mu sync.RWMutex

	log *zerolog.Logger
}

func New(parent context.Context, logger *zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(parent)
	schedLog := logger.With().Str("component", "Scheduler").Logger()
	s := &Scheduler{ctx: ctx, cancel: cancel, log: &schedLog}
	for i := range s.shards {
		s.shards[i] = &shard{timers: make(map[string]*entry)}
	}
	return s
}

func (s *Scheduler) shardFor(id string) *shard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return s.shards[h.Sum32()%shardCount]
}

// Schedule arms a one-shot timer for the subscription. If a timer is
// already armed for the same id it is cancelled first, under the same
// lock, so two timers for one id can never coexist. A target time in the
// past fires immediately.
func (s *Scheduler) Schedule(subscriptionID string, at time.Time, cb adapter.TimerCallback) error {
	if subscriptionID == "" || cb == nil {
		return domain.ErrInvalidArgument
	}

	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}

	// Hold the read lock past the insert so Shutdown's sweep cannot run
	// between the closed check and the timer landing in the table.
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return domain.ErrSchedulerClosed
	}
	sh := s.shardFor(subscriptionID)
	sh.mu.Lock()
	if old, ok := sh.timers[subscriptionID]; ok {
		old.timer.Stop()
		delete(sh.timers, subscriptionID)
	}
	e := &entry{cb: cb, at: at}
	e.timer = time.AfterFunc(delay, func() { s.fire(subscriptionID, e) })
	sh.timers[subscriptionID] = e
	sh.mu.Unlock()
	s.mu.RUnlock()

	metrics.SetTimersArmed(s.Armed())
	s.log.Debug().Str("subscription_id", subscriptionID).Time("at", at).Msg("timer armed")
	return nil
}

// fire consumes the timer and runs its callback. The entry comparison
// drops stale firings that lost a race against Cancel or a re-Schedule.
func (s *Scheduler) fire(id string, e *entry) {
	sh := s.shardFor(id)
	sh.mu.Lock()
	cur, ok := sh.timers[id]
	if !ok || cur != e {
		sh.mu.Unlock()
		return
	}
	delete(sh.timers, id)
	sh.mu.Unlock()

	metrics.SetTimersArmed(s.Armed())
	s.run(id, e.cb)
}

// run invokes the callback fail-stop: a panic ends the chain for this
// subscription and is surfaced via log and metric, never propagated.
func (s *Scheduler) run(id string, cb adapter.TimerCallback) {
	defer func() {
		if r := recover(); r != nil {
			metrics.IncTimerChainDead()
			s.log.Error().
				Str("subscription_id", id).
				Interface("panic", r).
				Msg("timer callback panicked; chain for this subscription is dead until re-armed")
		}
	}()
	cb(s.ctx, id)
}

// Cancel drops the pending timer for the id, if any. Absent and
// already-fired timers are a no-op.
func (s *Scheduler) Cancel(subscriptionID string) {
	sh := s.shardFor(subscriptionID)
	sh.mu.Lock()
	if e, ok := sh.timers[subscriptionID]; ok {
		e.timer.Stop()
		delete(sh.timers, subscriptionID)
		s.log.Debug().Str("subscription_id", subscriptionID).Msg("timer cancelled")
	}
	sh.mu.Unlock()
	metrics.SetTimersArmed(s.Armed())
}

// RunNow triggers the pending timer's callback immediately. The firing is
// a normal one: the timer is consumed and the callback re-arms the chain.
func (s *Scheduler) RunNow(subscriptionID string) bool {
	sh := s.shardFor(subscriptionID)
	sh.mu.Lock()
	e, ok := sh.timers[subscriptionID]
	if !ok {
		sh.mu.Unlock()
		return false
	}
	e.timer.Stop()
	delete(sh.timers, subscriptionID)
	sh.mu.Unlock()

	metrics.SetTimersArmed(s.Armed())
	go s.run(subscriptionID, e.cb)
	return true
}

// Armed reports how many timers are currently pending.
func (s *Scheduler) Armed() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.timers)
		sh.mu.Unlock()
	}
	return n
}

// NextExecutionAt reports the armed target for a subscription, for
// introspection in tests and diagnostics.
func (s *Scheduler) NextExecutionAt(subscriptionID string) (time.Time, bool) {
	sh := s.shardFor(subscriptionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if e, ok := sh.timers[subscriptionID]; ok {
		return e.at, true
	}
	return time.Time{}, false
}

// Shutdown stops every pending timer and rejects further Schedule calls.
// Callbacks already running observe the cancelled context.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, e := range sh.timers {
			e.timer.Stop()
			delete(sh.timers, id)
		}
		sh.mu.Unlock()
	}
	s.mu.Unlock()

	s.cancel()
	metrics.SetTimersArmed(0)
	s.log.Info().Msg("scheduler shut down")
}
