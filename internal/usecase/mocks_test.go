package usecase

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/ports/adapter"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memUserRepo is a small in-memory implementation used by unit tests.
type memUserRepo struct {
	mu        sync.RWMutex
	store     map[int64]*model.User
	upsertErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[int64]*model.User)}
}

func (m *memUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) Upsert(ctx context.Context, user *model.User) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.store[user.ID] = &cp
	return nil
}

// memSubRepo is an in-memory SubscriptionRepository.
type memSubRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.Subscription
	updateErr error
	updates   int
}

func newMemSubRepo() *memSubRepo {
	return &memSubRepo{store: make(map[string]*model.Subscription)}
}

func (m *memSubRepo) Create(ctx context.Context, s *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[s.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *memSubRepo) FindByID(ctx context.Context, id string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSubRepo) ListByUser(ctx context.Context, userID int64) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range m.store {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSubRepo) ListAll(ctx context.Context) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range m.store {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memSubRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.store {
		if s.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memSubRepo) Update(ctx context.Context, s *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.store[s.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *memSubRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

// memFeedbackRepo records saved feedback.
type memFeedbackRepo struct {
	mu    sync.Mutex
	saved []*model.Feedback
}

func (m *memFeedbackRepo) Save(ctx context.Context, f *model.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	m.saved = append(m.saved, &cp)
	return nil
}

// fakeDispatch resolves a fixed host table and serves canned fetches.
type fakeDispatch struct {
	hosts    map[string]model.ShopID
	fetch    func(ctx context.Context, shop model.ShopID, rawURL string) (model.Article, error)
	fetchErr error
}

func newFakeDispatch() *fakeDispatch {
	return &fakeDispatch{
		hosts: map[string]model.ShopID{
			"vinylbox.ru":     model.ShopVinylBox,
			"www.vinylbox.ru": model.ShopVinylBox,
			"pult.ru":         model.ShopPultRu,
		},
	}
}

func (f *fakeDispatch) Resolve(rawURL string) (model.ShopID, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	id, ok := f.hosts[u.Hostname()]
	return id, ok
}

func (f *fakeDispatch) Fetch(ctx context.Context, shop model.ShopID, rawURL string) (model.Article, error) {
	if f.fetchErr != nil {
		return model.Article{}, f.fetchErr
	}
	if f.fetch != nil {
		return f.fetch(ctx, shop, rawURL)
	}
	return model.Article{
		Name:  "LP X",
		Price: decimal.NewFromInt(1500),
		Shop:  shop,
		URL:   rawURL,
	}, nil
}

// recordingSink captures every outbound notification.
type recordingSink struct {
	mu    sync.Mutex
	sends []struct {
		UserID int64
		Text   string
	}
	sendErr error
}

func (r *recordingSink) Send(ctx context.Context, userID int64, text string) error {
	if r.sendErr != nil {
		return r.sendErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sends = append(r.sends, struct {
		UserID int64
		Text   string
	}{userID, text})
	return nil
}

func (r *recordingSink) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.sends))
	for i, s := range r.sends {
		out[i] = s.Text
	}
	return out
}

// fakeScheduler records timer operations without any real timers.
type fakeScheduler struct {
	mu            sync.Mutex
	scheduled     map[string]time.Time
	cancelled     []string
	ranNow        []string
	scheduleErr   error
	scheduleCalls int
	runNowOK      bool
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{scheduled: make(map[string]time.Time), runNowOK: true}
}

func (f *fakeScheduler) Schedule(id string, at time.Time, cb adapter.TimerCallback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduleCalls++
	if f.scheduleErr != nil {
		return f.scheduleErr
	}
	f.scheduled[id] = at
	return nil
}

func (f *fakeScheduler) Cancel(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, id)
	delete(f.scheduled, id)
}

func (f *fakeScheduler) RunNow(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.runNowOK {
		return false
	}
	f.ranNow = append(f.ranNow, id)
	return true
}

func (f *fakeScheduler) scheduledAt(id string) (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	at, ok := f.scheduled[id]
	return at, ok
}

// fakeLimiter admits or rejects manual checks unconditionally.
type fakeLimiter struct {
	allow bool
}

func (f *fakeLimiter) AllowManualCheck(ctx context.Context, userID int64, window time.Duration) (bool, error) {
	return f.allow, nil
}
