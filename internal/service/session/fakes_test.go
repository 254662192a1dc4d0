package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/session"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/user"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// fakeTxManager serializes every transaction, which is stronger than the per-user
// advisory lock used in PostgreSQL.
type fakeTxManager struct {
	mu sync.Mutex
}

func (m *fakeTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

func (m *fakeTxManager) WithinReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]*session.WorkSession
	locks    int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*session.WorkSession)}
}

func cloneSession(ws *session.WorkSession) *session.WorkSession {
	c := *ws
	c.Breaks = append([]session.BreakInterval{}, ws.Breaks...)
	return &c
}

func (r *fakeSessionRepo) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func (r *fakeSessionRepo) LockUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locks++
	return nil
}

func (r *fakeSessionRepo) Create(ctx context.Context, ws session.WorkSession) (session.WorkSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.sessions {
		if existing.UserID != ws.UserID {
			continue
		}
		if existing.Date.Equal(ws.Date) {
			return session.WorkSession{}, session.ErrAlreadyStartedToday
		}
		if existing.IsOpen() {
			return session.WorkSession{}, session.ErrAlreadyActive
		}
	}

	ws.ID = r.nextID("session")
	ws.Breaks = []session.BreakInterval{}
	ws.CreatedAt = ws.StartTime
	ws.UpdatedAt = ws.StartTime
	r.sessions[ws.ID] = cloneSession(&ws)
	return ws, nil
}

func (r *fakeSessionRepo) find(match func(*session.WorkSession) bool) []session.WorkSession {
	var out []session.WorkSession
	for _, ws := range r.sessions {
		if match(ws) {
			out = append(out, *cloneSession(ws))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (r *fakeSessionRepo) GetOpenByUser(ctx context.Context, userID string) (*session.WorkSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := r.find(func(ws *session.WorkSession) bool { return ws.UserID == userID && ws.IsOpen() })
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (r *fakeSessionRepo) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*session.WorkSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := r.find(func(ws *session.WorkSession) bool { return ws.UserID == userID && ws.Date.Equal(date) })
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (r *fakeSessionRepo) ListByUser(ctx context.Context, userID string) ([]session.WorkSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := r.find(func(ws *session.WorkSession) bool { return ws.UserID == userID })
	sort.Slice(found, func(i, j int) bool { return found[i].Date.After(found[j].Date) })
	return found, nil
}

func (r *fakeSessionRepo) ListByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]session.WorkSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.find(func(ws *session.WorkSession) bool {
		return ws.UserID == userID && !ws.Date.Before(from) && !ws.Date.After(to)
	}), nil
}

func (r *fakeSessionRepo) ListStaleOpen(ctx context.Context, before time.Time) ([]session.WorkSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.find(func(ws *session.WorkSession) bool { return ws.IsOpen() && ws.Date.Before(before) }), nil
}

func (r *fakeSessionRepo) Close(ctx context.Context, ws session.WorkSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[ws.ID]
	if !ok || !stored.IsOpen() {
		return session.ErrNoActiveSession
	}
	breaks := stored.Breaks
	updated := ws
	updated.Breaks = breaks
	r.sessions[ws.ID] = cloneSession(&updated)
	return nil
}

func (r *fakeSessionRepo) OpenBreak(ctx context.Context, brk session.BreakInterval) (session.BreakInterval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.sessions[brk.SessionID]
	if !ok {
		return session.BreakInterval{}, session.ErrNoActiveSession
	}
	if stored.OpenBreak() != nil {
		return session.BreakInterval{}, session.ErrBreakAlreadyOpen
	}
	brk.ID = r.nextID("break")
	brk.CreatedAt = brk.StartTime
	stored.Breaks = append(stored.Breaks, brk)
	return brk, nil
}

func (r *fakeSessionRepo) CloseBreak(ctx context.Context, breakID string, endTime time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ws := range r.sessions {
		for i := range ws.Breaks {
			if ws.Breaks[i].ID == breakID && ws.Breaks[i].IsOpen() {
				end := endTime
				ws.Breaks[i].EndTime = &end
				return nil
			}
		}
	}
	return session.ErrNoOpenBreak
}

// stored returns a copy of a persisted session for assertions
func (r *fakeSessionRepo) stored(id string) session.WorkSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *cloneSession(r.sessions[id])
}

type fakeUserRepo struct {
	users map[string]user.User
}

func newFakeUserRepo(ids ...string) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]user.User)}
	for _, id := range ids {
		repo.users[id] = user.User{ID: id, Name: id, Email: id + "@example.com", Role: user.RoleEmployee, IsActive: true}
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	r.users[u.ID] = u
	return u, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

type fakeLeaveRepo struct {
	mu       sync.Mutex
	requests []leave.LeaveRequest
}

func (r *fakeLeaveRepo) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = fmt.Sprintf("leave-%d", len(r.requests)+1)
	r.requests = append(r.requests, req)
	return req, nil
}

func (r *fakeLeaveRepo) ListApproved(ctx context.Context, filter leave.ApprovedFilter) ([]leave.LeaveRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []leave.LeaveRequest
	for _, req := range r.requests {
		if req.Status != leave.StatusApproved || !req.Overlaps(filter.From, filter.To) {
			continue
		}
		if filter.UserID != nil && req.UserID != *filter.UserID {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}
