package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Tracker drives the per-user check-in/check-out state machine on top of a
// Store. The cached state only changes after the store confirms a write.
type Tracker struct {
	store    Store
	// Check-in and check-out are separate captures.
	inCamera  Camera
	outCamera Camera
	feed     Publisher
	clock    func() time.Time
	location *time.Location
	logger   *zap.Logger
	newID    func() string

	mu     sync.Mutex
	states map[string]userState
	locks  map[string]*sync.Mutex
}

type userState struct {
	open   OpenSession
	active bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(t *Tracker) { t.clock = clock }
}

// WithLocation sets the zone used to derive a session's calendar day.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) { t.location = loc }
}

// WithCamera attaches the same capture step to check-in and check-out.
func WithCamera(c Camera) Option {
	return func(t *Tracker) {
		t.inCamera = c
		t.outCamera = c
	}
}

// WithCheckInCamera captures a photo on check-in only.
func WithCheckInCamera(c Camera) Option {
	return func(t *Tracker) { t.inCamera = c }
}

// WithCheckOutCamera captures a photo on check-out only.
func WithCheckOutCamera(c Camera) Option {
	return func(t *Tracker) { t.outCamera = c }
}

// WithPublisher sends committed changes to a change feed.
func WithPublisher(p Publisher) Option {
	return func(t *Tracker) { t.feed = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(t *Tracker) { t.newID = fn }
}

// NewTracker creates a Tracker backed by store.
func NewTracker(store Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:    store,
		clock:    time.Now,
		location: time.Local,
		logger:   zap.NewNop(),
		newID:    func() string { return uuid.New().String() },
		states:   make(map[string]userState),
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Now returns the tracker clock's current instant.
func (t *Tracker) Now() time.Time {
	return t.clock()
}

// Location returns the zone used for calendar days.
func (t *Tracker) Location() *time.Location {
	return t.location
}

// CheckIn opens a new session for userID. It fails with ErrAlreadyCheckedIn
// if the user already has an open session, on any day.
func (t *Tracker) CheckIn(ctx context.Context, userID string) (OpenSession, error) {
	const op = "check in"
	userID, err := normalizeUser(userID)
	if err != nil {
		return OpenSession{}, err
	}

	unlock := t.lockUser(userID)
	defer unlock()

	now := t.clock()

	st, err := t.load(ctx, userID)
	if err != nil {
		return OpenSession{}, t.persistenceError(op, userID, err)
	}
	if st.active {
		return OpenSession{}, ErrAlreadyCheckedIn
	}

	photo, err := capture(ctx, t.inCamera)
	if err != nil {
		return OpenSession{}, &OpError{Op: op, Kind: ErrCaptureFailure, Err: err}
	}

	session := OpenSession{Base: Base{
		ID:           t.newID(),
		UserID:       userID,
		Date:         DayOf(now, t.location),
		CheckInTime:  now,
		CheckInPhoto: photo,
	}}

	if err := t.store.Insert(ctx, session); err != nil {
		if errors.Is(err, ErrConflict) {
			// Another client checked in first; reload on next use.
			t.forget(userID)
			return OpenSession{}, ErrAlreadyCheckedIn
		}
		return OpenSession{}, t.persistenceError(op, userID, err)
	}

	t.setState(userID, userState{open: session, active: true})
	t.logger.Info("checked in",
		zap.String("user_id", userID),
		zap.String("session_id", session.ID),
		zap.String("date", session.Date),
	)
	t.publish(ctx, Event{
		Type:      EventCheckedIn,
		SessionID: session.ID,
		UserID:    userID,
		Date:      session.Date,
		At:        now,
	})

	return session, nil
}

// CheckOut closes the user's open session at the current instant.
func (t *Tracker) CheckOut(ctx context.Context, userID string) (ClosedSession, error) {
	const op = "check out"
	userID, err := normalizeUser(userID)
	if err != nil {
		return ClosedSession{}, err
	}

	unlock := t.lockUser(userID)
	defer unlock()

	now := t.clock()

	st, err := t.load(ctx, userID)
	if err != nil {
		return ClosedSession{}, t.persistenceError(op, userID, err)
	}
	if !st.active {
		return ClosedSession{}, ErrNoActiveSession
	}
	if !now.After(st.open.CheckInTime) {
		return ClosedSession{}, ErrCheckOutNotAfterCheckIn
	}

	photo, err := capture(ctx, t.outCamera)
	if err != nil {
		return ClosedSession{}, &OpError{Op: op, Kind: ErrCaptureFailure, Err: err}
	}

	closed := st.open.Close(now, photo)
	if err := t.store.Close(ctx, closed); err != nil {
		if errors.Is(err, ErrConflict) {
			t.forget(userID)
			return ClosedSession{}, ErrNoActiveSession
		}
		return ClosedSession{}, t.persistenceError(op, userID, err)
	}

	t.setState(userID, userState{})
	t.logger.Info("checked out",
		zap.String("user_id", userID),
		zap.String("session_id", closed.ID),
		zap.Int("duration_minutes", closed.DurationMinutes),
	)
	minutes := closed.DurationMinutes
	t.publish(ctx, Event{
		Type:            EventCheckedOut,
		SessionID:       closed.ID,
		UserID:          userID,
		Date:            closed.Date,
		At:              now,
		DurationMinutes: &minutes,
	})

	return closed, nil
}

// Active reports the user's open session.
func (t *Tracker) Active(ctx context.Context, userID string) (OpenSession, bool, error) {
	userID, err := normalizeUser(userID)
	if err != nil {
		return OpenSession{}, false, err
	}

	unlock := t.lockUser(userID)
	defer unlock()

	st, err := t.load(ctx, userID)
	if err != nil {
		return OpenSession{}, false, t.persistenceError("load state", userID, err)
	}
	return st.open, st.active, nil
}

// Refresh drops the cached state so the next call reads the store again.
func (t *Tracker) Refresh(userID string) {
	t.forget(strings.TrimSpace(userID))
}

// Day returns the user's sessions on date in check-in order.
func (t *Tracker) Day(ctx context.Context, userID, date string) ([]Session, error) {
	userID, err := normalizeUser(userID)
	if err != nil {
		return nil, err
	}

	sessions, err := t.store.ListDay(ctx, userID, date)
	if err != nil {
		return nil, t.persistenceError("list day", userID, err)
	}
	return sessions, nil
}

// Summary aggregates the user's sessions on date as of the tracker clock.
func (t *Tracker) Summary(ctx context.Context, userID, date string) (DailySummary, error) {
	sessions, err := t.Day(ctx, userID, date)
	if err != nil {
		return DailySummary{}, err
	}
	return Summarize(date, sessions, t.clock()), nil
}

// Today aggregates the current calendar day.
func (t *Tracker) Today(ctx context.Context, userID string) (DailySummary, error) {
	return t.Summary(ctx, userID, DayOf(t.clock(), t.location))
}

// Week aggregates the Monday..Sunday week containing day.
func (t *Tracker) Week(ctx context.Context, userID string, day time.Time) (WeekSummary, error) {
	userID, err := normalizeUser(userID)
	if err != nil {
		return WeekSummary{}, err
	}

	start := WeekStart(day.In(t.location))
	from := start.Format(DateLayout)
	to := start.AddDate(0, 0, 6).Format(DateLayout)

	sessions, err := t.store.ListRange(ctx, userID, from, to)
	if err != nil {
		return WeekSummary{}, t.persistenceError("list week", userID, err)
	}
	return SummarizeWeek(start, sessions, t.clock()), nil
}

// normalizeUser trims userID and rejects an empty one.
func normalizeUser(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrMissingUser
	}
	return userID, nil
}

// load returns the cached state, reading the store on first use.
func (t *Tracker) load(ctx context.Context, userID string) (userState, error) {
	t.mu.Lock()
	st, ok := t.states[userID]
	t.mu.Unlock()
	if ok {
		return st, nil
	}

	open, found, err := t.store.FindOpen(ctx, userID)
	if err != nil {
		return userState{}, err
	}
	st = userState{open: open, active: found}
	t.setState(userID, st)
	return st, nil
}

func (t *Tracker) setState(userID string, st userState) {
	t.mu.Lock()
	t.states[userID] = st
	t.mu.Unlock()
}

func (t *Tracker) forget(userID string) {
	t.mu.Lock()
	delete(t.states, userID)
	t.mu.Unlock()
}

// lockUser serializes state transitions of one user within this process.
func (t *Tracker) lockUser(userID string) func() {
	t.mu.Lock()
	l, ok := t.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[userID] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func capture(ctx context.Context, camera Camera) (string, error) {
	if camera == nil {
		return "", nil
	}
	photo, err := camera.Capture(ctx)
	if err != nil {
		return "", err
	}
	return photo, nil
}

func (t *Tracker) publish(ctx context.Context, ev Event) {
	if t.feed == nil {
		return
	}
	// Publish errors are logged only: the write is already committed.
	if err := t.feed.Publish(ctx, ev); err != nil {
		t.logger.Warn("publishing session event",
			zap.String("type", string(ev.Type)),
			zap.String("session_id", ev.SessionID),
			zap.Error(err),
		)
	}
}

func (t *Tracker) persistenceError(op, userID string, err error) error {
	t.logger.Error(op+" failed",
		zap.String("user_id", userID),
		zap.Error(err),
	)
	return &OpError{Op: op, Kind: ErrPersistenceFailure, Err: fmt.Errorf("store: %w", err)}
}
