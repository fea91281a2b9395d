package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/litterscan/backend/internal/models"
	"github.com/litterscan/backend/internal/store"
	"gorm.io/datatypes"
)

// fakeGateway is an in-memory store.Gateway. Appends and patches are
// atomic under one mutex, mirroring the targeted-write contract of the
// real store. An optional appendDelay widens race windows in tests.
type fakeGateway struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*models.User
	byName      map[string]uuid.UUID
	reports     map[uuid.UUID][]*models.LitterReport
	appendDelay time.Duration
	insertErr   error
	findErr     error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		users:   make(map[uuid.UUID]*models.User),
		byName:  make(map[string]uuid.UUID),
		reports: make(map[uuid.UUID][]*models.LitterReport),
	}
}

func (g *fakeGateway) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.findErr != nil {
		return nil, g.findErr
	}
	id, ok := g.byName[username]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return g.snapshotLocked(id), nil
}

func (g *fakeGateway) FindUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.findErr != nil {
		return nil, g.findErr
	}
	if _, ok := g.users[id]; !ok {
		return nil, store.ErrUserNotFound
	}
	return g.snapshotLocked(id), nil
}

func (g *fakeGateway) InsertUser(_ context.Context, user *models.User) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.insertErr != nil {
		return g.insertErr
	}
	if _, taken := g.byName[user.Username]; taken {
		return store.ErrUsernameTaken
	}
	clone := *user
	g.users[user.ID] = &clone
	g.byName[user.Username] = user.ID
	return nil
}

func (g *fakeGateway) AppendReport(_ context.Context, userID uuid.UUID, report *models.LitterReport) error {
	// Delay outside the lock so concurrent appends overlap, the way two
	// in-flight statements against a slow store would.
	if g.appendDelay > 0 {
		time.Sleep(g.appendDelay)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.users[userID]; !ok {
		return store.ErrUserNotFound
	}
	clone := *report
	clone.OwnerID = userID
	g.reports[userID] = append(g.reports[userID], &clone)
	return nil
}

func (g *fakeGateway) PatchReportAnalysis(_ context.Context, userID, reportID uuid.UUID, patch store.AnalysisPatch) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.reports[userID] {
		if r.ID != reportID || r.AnalysisModel != nil {
			continue
		}
		r.Entries = datatypes.NewJSONType(patch.Entries)
		r.AnalysisCounts = datatypes.NewJSONType(patch.Counts)
		total := patch.TotalItems
		r.AnalysisTotalItems = &total
		r.AnalysisNotes = patch.Notes
		ms := patch.ProcessingTimeMs
		r.AnalysisProcessingTimeMs = &ms
		model := patch.Model
		r.AnalysisModel = &model
		return nil
	}
	return store.ErrReportNotFound
}

func (g *fakeGateway) snapshotLocked(id uuid.UUID) *models.User {
	user := *g.users[id]
	user.Reports = nil
	for _, r := range g.reports[id] {
		user.Reports = append(user.Reports, *r)
	}
	return &user
}

// fakeAnalyzer returns a canned result or error. When gate is non-nil the
// call blocks until the gate is closed, letting tests observe the window
// between report creation and enrichment.
type fakeAnalyzer struct {
	gate   chan struct{}
	result *AnalysisResult
	err    error
	calls  atomic.Int32
}

func (a *fakeAnalyzer) Analyze(_ context.Context, _ []byte) (*AnalysisResult, error) {
	a.calls.Add(1)
	if a.gate != nil {
		<-a.gate
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.result, nil
}
