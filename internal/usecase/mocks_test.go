package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tefillin-reminder-bot/internal/domain"
	"tefillin-reminder-bot/internal/domain/model"
	"tefillin-reminder-bot/internal/domain/ports/adapter"
	"tefillin-reminder-bot/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memUserRepo is a small in-memory implementation used by unit tests.
type memUserRepo struct {
	mu      sync.RWMutex
	store   map[int64]*model.User
	saveErr error // used by tests to simulate save failures
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[int64]*model.User)}
}

func (m *memUserRepo) put(u *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
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

func (m *memUserRepo) Save(ctx context.Context, u *model.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[u.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindActiveByDailyTime(ctx context.Context, hhmm string) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.User
	for _, u := range m.store {
		if u.Active && u.DailyTime == hhmm {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUserRepo) FindActiveWithSunsetReminder(ctx context.Context) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.User
	for _, u := range m.store {
		if u.Active && u.SunsetReminder > 0 {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUserRepo) mutate(id int64, fn func(u *model.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(u)
	return nil
}

func (m *memUserRepo) SetDailyTime(ctx context.Context, id int64, hhmm string) error {
	return m.mutate(id, func(u *model.User) { u.DailyTime = hhmm })
}

func (m *memUserRepo) SetSunsetReminder(ctx context.Context, id int64, minutes int) error {
	return m.mutate(id, func(u *model.User) { u.SunsetReminder = minutes })
}

func (m *memUserRepo) SetSkippedDate(ctx context.Context, id int64, day string) error {
	return m.mutate(id, func(u *model.User) { u.SkippedDate = day })
}

func (m *memUserRepo) SetLastReminderDate(ctx context.Context, id int64, day string) error {
	return m.mutate(id, func(u *model.User) { u.LastReminderDate = day })
}

func (m *memUserRepo) SetLastSunsetReminderDate(ctx context.Context, id int64, day string) error {
	return m.mutate(id, func(u *model.User) { u.LastSunsetReminderDate = day })
}

func (m *memUserRepo) RecordDone(ctx context.Context, id int64, streak int, day string, at time.Time) error {
	return m.mutate(id, func(u *model.User) {
		u.Streak = streak
		u.LastDone = day
		u.LastDoneAt = at
	})
}

func (m *memUserRepo) Deactivate(ctx context.Context, id int64, reason string) error {
	return m.mutate(id, func(u *model.User) {
		u.Active = false
		u.DeactivationReason = reason
	})
}

func (m *memUserRepo) Reactivate(ctx context.Context, id int64) error {
	return m.mutate(id, func(u *model.User) {
		u.Active = true
		u.DeactivationReason = ""
	})
}

func (m *memUserRepo) CountActive(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, u := range m.store {
		if u.Active {
			n++
		}
	}
	return n, nil
}

func (m *memUserRepo) CountDoneOn(ctx context.Context, day string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, u := range m.store {
		if u.LastDone == day {
			n++
		}
	}
	return n, nil
}

var _ repository.UserRepository = (*memUserRepo)(nil)

type loggedAction struct {
	userID  int64
	action  string
	details string
	at      time.Time
}

// memActionLog is the in-memory audit log used by tests.
type memActionLog struct {
	mu      sync.Mutex
	rows    []loggedAction
	nowFunc func() time.Time
}

func newMemActionLog() *memActionLog {
	return &memActionLog{nowFunc: time.Now}
}

func (m *memActionLog) Log(ctx context.Context, userID int64, action, details string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, loggedAction{userID: userID, action: action, details: details, at: m.nowFunc()})
	return nil
}

func (m *memActionLog) CountByUser(ctx context.Context, userID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.userID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memActionLog) CountByUserAction(ctx context.Context, userID int64, action string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.userID == userID && r.action == action {
			n++
		}
	}
	return n, nil
}

func (m *memActionLog) CountActionBetween(ctx context.Context, action string, from, to time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.action == action && !r.at.Before(from) && r.at.Before(to) {
			n++
		}
	}
	return n, nil
}

func (m *memActionLog) UsageSince(ctx context.Context, since time.Time) ([]model.UsageRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	perUser := map[int64]map[string]struct{}{}
	hours := map[int64]map[string]struct{}{}
	last := map[int64]time.Time{}
	for _, r := range m.rows {
		if r.action != repository.ActionTefillinDone || r.at.Before(since) {
			continue
		}
		if perUser[r.userID] == nil {
			perUser[r.userID] = map[string]struct{}{}
			hours[r.userID] = map[string]struct{}{}
		}
		perUser[r.userID][model.DateKey(r.at)] = struct{}{}
		hours[r.userID][r.at.Format("15:04")] = struct{}{}
		if r.at.After(last[r.userID]) {
			last[r.userID] = r.at
		}
	}
	var out []model.UsageRow
	for uid, days := range perUser {
		var hs []string
		for h := range hours[uid] {
			hs = append(hs, h)
		}
		sort.Strings(hs)
		out = append(out, model.UsageRow{UserID: uid, DaysCount: len(days), Hours: hs, Last: last[uid]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DaysCount > out[j].DaysCount })
	return out, nil
}

func (m *memActionLog) UsageSummarySince(ctx context.Context, since time.Time) (model.UsageSummary, error) {
	rows, _ := m.UsageSince(ctx, since)
	s := model.UsageSummary{UsersMarkedDone: len(rows)}
	for _, r := range rows {
		s.TotalMarks += r.DaysCount
	}
	return s, nil
}

func (m *memActionLog) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []loggedAction
	purged := 0
	for _, r := range m.rows {
		if r.at.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return purged, nil
}

var _ repository.ActionLogRepository = (*memActionLog)(nil)

// memStatsRepo stores rollup rows keyed by date.
type memStatsRepo struct {
	mu   sync.Mutex
	rows map[string]model.DailyStats
}

func newMemStatsRepo() *memStatsRepo {
	return &memStatsRepo{rows: make(map[string]model.DailyStats)}
}

func (m *memStatsRepo) UpsertDaily(ctx context.Context, s model.DailyStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[s.Date] = s
	return nil
}

func (m *memStatsRepo) ListRecent(ctx context.Context, days int) ([]model.DailyStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.DailyStats
	for _, s := range m.rows {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if len(out) > days {
		out = out[:days]
	}
	return out, nil
}

var _ repository.StatsRepository = (*memStatsRepo)(nil)

// memSnoozeRepo keeps one pending job per user.
type memSnoozeRepo struct {
	mu   sync.Mutex
	jobs map[int64]model.SnoozeJob
}

func newMemSnoozeRepo() *memSnoozeRepo {
	return &memSnoozeRepo{jobs: make(map[int64]model.SnoozeJob)}
}

func (m *memSnoozeRepo) Upsert(ctx context.Context, job model.SnoozeJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.UserID] = job
	return nil
}

func (m *memSnoozeRepo) Delete(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, userID)
	return nil
}

func (m *memSnoozeRepo) ListPending(ctx context.Context) ([]model.SnoozeJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.SnoozeJob
	for _, j := range m.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out, nil
}

var _ repository.SnoozeJobRepository = (*memSnoozeRepo)(nil)

type sentMessage struct {
	chatID int64
	text   string
	rows   [][]adapter.Button
}

// mockMessenger records outbound messages. SendKeyboardFunc can be set to
// simulate transport failures.
type mockMessenger struct {
	mu               sync.Mutex
	sent             []sentMessage
	SendKeyboardFunc func(chatID int64) error
}

func newMockMessenger() *mockMessenger { return &mockMessenger{} }

func (m *mockMessenger) SendMessage(ctx context.Context, chatID int64, text string) error {
	return m.SendKeyboard(ctx, chatID, text, nil)
}

func (m *mockMessenger) SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]adapter.Button) error {
	if m.SendKeyboardFunc != nil {
		if err := m.SendKeyboardFunc(chatID); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{chatID: chatID, text: text, rows: rows})
	return nil
}

func (m *mockMessenger) EditMessage(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.Button) error {
	return m.SendKeyboard(ctx, chatID, text, rows)
}

func (m *mockMessenger) sentTo(chatID int64) []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMessage
	for _, s := range m.sent {
		if s.chatID == chatID {
			out = append(out, s)
		}
	}
	return out
}

func (m *mockMessenger) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *mockMessenger) lastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1].text
}

var _ adapter.Messenger = (*mockMessenger)(nil)

// fakeOracle returns scripted calendar answers.
type fakeOracle struct {
	holiday bool
	sunset  time.Time
}

func (f *fakeOracle) SunsetTime(ctx context.Context, date time.Time) time.Time { return f.sunset }
func (f *fakeOracle) IsHolidayOrShabbat(ctx context.Context, date time.Time) bool {
	return f.holiday
}

// fakeTimers records Arm/Disarm calls.
type fakeTimers struct {
	mu       sync.Mutex
	armed    []model.SnoozeJob
	disarmed []int64
}

func (f *fakeTimers) Arm(job model.SnoozeJob) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed = append(f.armed, job)
}

func (f *fakeTimers) Disarm(userID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disarmed = append(f.disarmed, userID)
}

func containsText(msgs []sentMessage, substr string) bool {
	for _, m := range msgs {
		if strings.Contains(m.text, substr) {
			return true
		}
	}
	return false
}
