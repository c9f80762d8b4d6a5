package sched

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tefillin-reminder-bot/internal/domain/model"
	"tefillin-reminder-bot/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// leaseState is the shared "Redis key" behind memLease instances.
type leaseState struct {
	mu     sync.Mutex
	holder string
	exp    time.Time
}

// expire force-ages the lease, simulating a TTL elapsing or a manual delete.
func (s *leaseState) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holder = ""
	s.exp = time.Time{}
}

// memLease is one instance's view of the shared lease.
type memLease struct {
	state *leaseState
	owner string
}

func newMemLease(state *leaseState) *memLease {
	return &memLease{state: state, owner: uuid.NewString()}
}

func (l *memLease) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	now := time.Now()
	if l.state.holder != "" && now.Before(l.state.exp) {
		return l.state.holder == l.owner, nil
	}
	l.state.holder = l.owner
	l.state.exp = now.Add(ttl)
	return true, nil
}

func (l *memLease) Refresh(ctx context.Context, ttl time.Duration) (bool, error) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	if l.state.holder != l.owner || !time.Now().Before(l.state.exp) {
		return false, nil
	}
	l.state.exp = time.Now().Add(ttl)
	return true, nil
}

func (l *memLease) Release(ctx context.Context) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	if l.state.holder == l.owner {
		l.state.holder = ""
	}
}

func (l *memLease) OwnerID() string { return l.owner }

var _ repository.LeaderLease = (*memLease)(nil)

// memSnoozeRepo mirrors the one-row-per-user table.
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

func (m *memSnoozeRepo) has(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[userID]
	return ok
}

var _ repository.SnoozeJobRepository = (*memSnoozeRepo)(nil)
