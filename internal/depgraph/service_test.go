package depgraph

import (
	"errors"
	"fmt"
	"testing"

	"shipboard/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.Team{},
		&model.Service{},
		&model.Release{},
		&model.ReleaseDependency{},
		&model.DeploymentGroup{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

const testTeamID = 1

func seedTeam(t *testing.T, db *gorm.DB) {
	t.Helper()
	team := model.Team{Name: "platform", Slug: "platform"}
	if err := db.Create(&team).Error; err != nil {
		t.Fatalf("seed team: %v", err)
	}
	svc := model.Service{Name: "api", TeamID: team.ID}
	if err := db.Create(&svc).Error; err != nil {
		t.Fatalf("seed service: %v", err)
	}
}

func seedRelease(t *testing.T, db *gorm.DB, title string, status model.ReleaseStatus) *model.Release {
	t.Helper()
	r := model.Release{
		Title:     title,
		TeamID:    testTeamID,
		ServiceID: 1,
		Status:    status,
	}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("seed release %q: %v", title, err)
	}
	return &r
}

func reload(t *testing.T, db *gorm.DB, id int) *model.Release {
	t.Helper()
	var r model.Release
	if err := db.First(&r, id).Error; err != nil {
		t.Fatalf("reload release %d: %v", id, err)
	}
	return &r
}

// blockedChange captures one notifier invocation.
type blockedChange struct {
	releaseID  int
	wasBlocked bool
	isBlocked  bool
	reason     string
}

type captureNotifier struct {
	changes []blockedChange
}

func (n *captureNotifier) HandleBlockedChange(release *model.Release, wasBlocked, isBlocked bool, reason string) {
	n.changes = append(n.changes, blockedChange{
		releaseID:  release.ID,
		wasBlocked: wasBlocked,
		isBlocked:  isBlocked,
		reason:     reason,
	})
}

func TestAddDependencyValidation(t *testing.T) {
	db := newTestDB(t)
	seedTeam(t, db)
	svc := NewService(db, nil, nil, nil)

	a := seedRelease(t, db, "A", model.ReleaseStatusPlanning)
	b := seedRelease(t, db, "B", model.ReleaseStatusPlanning)
	c := seedRelease(t, db, "C", model.ReleaseStatusPlanning)

	if _, err := svc.AddDependency(testTeamID, a.ID, a.ID, model.DependencyTypeBlocks, ""); !errors.Is(err, ErrInvalidDependency) {
		t.Errorf("self edge: got %v, want ErrInvalidDependency", err)
	}

	if _, err := svc.AddDependency(testTeamID, a.ID, 9999, model.DependencyTypeBlocks, ""); !errors.Is(err, ErrReleaseNotFound) {
		t.Errorf("missing blocking release: got %v, want ErrReleaseNotFound", err)
	}

	if _, err := svc.AddDependency(testTeamID, a.ID, b.ID, model.DependencyTypeBlocks, ""); err != nil {
		t.Fatalf("first edge: %v", err)
	}
	if _, err := svc.AddDependency(testTeamID, a.ID, b.ID, model.DependencyTypeSoftDependency, ""); !errors.Is(err, ErrDuplicateDependency) {
		t.Errorf("duplicate pair: got %v, want ErrDuplicateDependency", err)
	}

	// A -> B -> C exists after this; C -> A must be rejected
	if _, err := svc.AddDependency(testTeamID, b.ID, c.ID, model.DependencyTypeBlocks, ""); err != nil {
		t.Fatalf("second edge: %v", err)
	}
	if _, err := svc.AddDependency(testTeamID, c.ID, a.ID, model.DependencyTypeBlocks, ""); !errors.Is(err, ErrCyclicDependency) {
		t.Errorf("cycle close: got %v, want ErrCyclicDependency", err)
	}

	// rejected edge must not be stored
	var count int64
	if err := db.Model(&model.ReleaseDependency{}).Count(&count).Error; err != nil {
		t.Fatalf("count edges: %v", err)
	}
	if count != 2 {
		t.Errorf("stored edges = %d, want 2", count)
	}
}

func TestAddDependencyMarksDependentBlocked(t *testing.T) {
	db := newTestDB(t)
	seedTeam(t, db)
	svc := NewService(db, nil, nil, nil)

	a := seedRelease(t, db, "Checkout revamp", model.ReleaseStatusPlanning)
	b := seedRelease(t, db, "Payments core", model.ReleaseStatusInDevelopment)

	if _, err := svc.AddDependency(testTeamID, a.ID, b.ID, model.DependencyTypeBlocks, ""); err != nil {
		t.Fatalf("add dependency: %v", err)
	}

	got := reload(t, db, a.ID)
	if !got.IsBlocked {
		t.Fatal("dependent should be blocked")
	}
	want := "Blocked by: Payments core (in_development)"
	if got.BlockedReason == nil || *got.BlockedReason != want {
		t.Errorf("blocked reason = %v, want %q", got.BlockedReason, want)
	}

	// informational edges must not block
	c := seedRelease(t, db, "Docs update", model.ReleaseStatusPlanning)
	if _, err := svc.AddDependency(testTeamID, c.ID, b.ID, model.DependencyTypeSoftDependency, ""); err != nil {
		t.Fatalf("add soft dependency: %v", err)
	}
	if reload(t, db, c.ID).IsBlocked {
		t.Error("soft dependency must not block")
	}
}

func TestSetResolvedUnblocks(t *testing.T) {
	db := newTestDB(t)
	seedTeam(t, db)
	notifier := &captureNotifier{}
	svc := NewService(db, nil, notifier, nil)

	a := seedRelease(t, db, "A", model.ReleaseStatusPlanning)
	b := seedRelease(t, db, "B", model.ReleaseStatusPlanning)

	edge, err := svc.AddDependency(testTeamID, a.ID, b.ID, model.DependencyTypeBlocks, "")
	if err != nil {
		t.Fatalf("add dependency: %v", err)
	}
	if !reload(t, db, a.ID).IsBlocked {
		t.Fatal("precondition: A blocked")
	}

	resolved, err := svc.SetResolved(testTeamID, edge.ID, true)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !resolved.IsResolved || resolved.ResolvedAt == nil {
		t.Error("edge should be resolved with a timestamp")
	}

	got := reload(t, db, a.ID)
	if got.IsBlocked {
		t.Error("A should be unblocked after resolve")
	}
	if got.BlockedReason != nil {
		t.Errorf("blocked reason should be cleared, got %q", *got.BlockedReason)
	}

	// blocked -> unblocked produced exactly one transition after the initial block
	if len(notifier.changes) != 2 {
		t.Fatalf("notifier calls = %d, want 2", len(notifier.changes))
	}
	last := notifier.changes[1]
	if !last.wasBlocked || last.isBlocked {
		t.Errorf("last transition = %+v, want blocked -> unblocked", last)
	}

	// resolving again is a no-op: no further notification
	if _, err := svc.SetResolved(testTeamID, edge.ID, true); err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if len(notifier.changes) != 2 {
		t.Errorf("notifier calls after no-op resolve = %d, want 2", len(notifier.changes))
	}
}

func TestRecalculateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	seedTeam(t, db)
	notifier := &captureNotifier{}
	svc := NewService(db, nil, notifier, nil)

	a := seedRelease(t, db, "A", model.ReleaseStatusPlanning)
	b := seedRelease(t, db, "B", model.ReleaseStatusPlanning)
	if _, err := svc.AddDependency(testTeamID, a.ID, b.ID, model.DependencyTypeBlocks, ""); err != nil {
		t.Fatalf("add dependency: %v", err)
	}
	calls := len(notifier.changes)

	for i := 0; i < 3; i++ {
		if err := svc.RecalculateBlockedStatus(a.ID); err != nil {
			t.Fatalf("recalculate %d: %v", i, err)
		}
	}
	if len(notifier.changes) != calls {
		t.Errorf("recalculate on unchanged input notified %d extra times", len(notifier.changes)-calls)
	}
	if !reload(t, db, a.ID).IsBlocked {
		t.Error("A should stay blocked")
	}
}

func TestTerminalBlockerUnblocksDependents(t *testing.T) {
	tests := []struct {
		name        string
		status      model.ReleaseStatus
		wantBlocked bool
	}{
		{"deployed releases dependents", model.ReleaseStatusDeployed, false},
		{"cancelled releases dependents", model.ReleaseStatusCancelled, false},
		{"rolled back keeps dependents blocked", model.ReleaseStatusRolledBack, true},
		{"in staging keeps dependents blocked", model.ReleaseStatusInStaging, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			seedTeam(t, db)
			svc := NewService(db, nil, nil, nil)

			a := seedRelease(t, db, "A", model.ReleaseStatusPlanning)
			b := seedRelease(t, db, "B", model.ReleaseStatusInDevelopment)
			if _, err := svc.AddDependency(testTeamID, a.ID, b.ID, model.DependencyTypeBlocks, ""); err != nil {
				t.Fatalf("add dependency: %v", err)
			}

			if err := db.Model(&model.Release{}).Where("id = ?", b.ID).
				Update("status", tt.status).Error; err != nil {
				t.Fatalf("set status: %v", err)
			}
			svc.RecalculateDependentBlockedStatus(b.ID)

			got := reload(t, db, a.ID)
			if got.IsBlocked != tt.wantBlocked {
				t.Errorf("blocked = %v, want %v", got.IsBlocked, tt.wantBlocked)
			}
		})
	}
}

func TestPropagationSettlesTransitiveChain(t *testing.T) {
	db := newTestDB(t)
	seedTeam(t, db)
	svc := NewService(db, nil, nil, nil)

	// C depends on B, B depends on A. Only A is unfinished.
	a := seedRelease(t, db, "A", model.ReleaseStatusInDevelopment)
	b := seedRelease(t, db, "B", model.ReleaseStatusPlanning)
	c := seedRelease(t, db, "C", model.ReleaseStatusPlanning)

	if _, err := svc.AddDependency(testTeamID, b.ID, a.ID, model.DependencyTypeBlocks, ""); err != nil {
		t.Fatalf("B->A: %v", err)
	}
	if _, err := svc.AddDependency(testTeamID, c.ID, b.ID, model.DependencyTypeBlocks, ""); err != nil {
		t.Fatalf("C->B: %v", err)
	}

	// both dependents are blocked: B by A, C by B
	if !reload(t, db, b.ID).IsBlocked {
		t.Fatal("B should be blocked by A")
	}
	if !reload(t, db, c.ID).IsBlocked {
		t.Fatal("C should be blocked by B")
	}

	// A ships. B unblocks, but C stays blocked: B itself has not shipped.
	if err := db.Model(&model.Release{}).Where("id = ?", a.ID).
		Update("status", model.ReleaseStatusDeployed).Error; err != nil {
		t.Fatalf("deploy A: %v", err)
	}
	svc.RecalculateDependentBlockedStatus(a.ID)

	if reload(t, db, b.ID).IsBlocked {
		t.Error("B should be unblocked after A deployed")
	}
	if !reload(t, db, c.ID).IsBlocked {
		t.Error("C should stay blocked while B is undeployed")
	}

	// B ships too. Now C unblocks.
	if err := db.Model(&model.Release{}).Where("id = ?", b.ID).
		Update("status", model.ReleaseStatusDeployed).Error; err != nil {
		t.Fatalf("deploy B: %v", err)
	}
	svc.RecalculateDependentBlockedStatus(b.ID)

	if reload(t, db, c.ID).IsBlocked {
		t.Error("C should be unblocked after B deployed")
	}
}

func TestRemoveDependencyUnblocks(t *testing.T) {
	db := newTestDB(t)
	seedTeam(t, db)
	svc := NewService(db, nil, nil, nil)

	a := seedRelease(t, db, "A", model.ReleaseStatusPlanning)
	b := seedRelease(t, db, "B", model.ReleaseStatusPlanning)
	edge, err := svc.AddDependency(testTeamID, a.ID, b.ID, model.DependencyTypeBlocks, "")
	if err != nil {
		t.Fatalf("add dependency: %v", err)
	}

	if err := svc.RemoveDependency(testTeamID, edge.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if reload(t, db, a.ID).IsBlocked {
		t.Error("A should be unblocked after edge removal")
	}

	if err := svc.RemoveDependency(testTeamID, edge.ID); !errors.Is(err, ErrDependencyNotFound) {
		t.Errorf("double remove: got %v, want ErrDependencyNotFound", err)
	}
}

func TestTeamScoping(t *testing.T) {
	db := newTestDB(t)
	seedTeam(t, db)
	other := model.Team{Name: "other", Slug: "other"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed other team: %v", err)
	}
	svc := NewService(db, nil, nil, nil)

	a := seedRelease(t, db, "A", model.ReleaseStatusPlanning)
	b := seedRelease(t, db, "B", model.ReleaseStatusPlanning)

	// edges cannot be created across a team boundary
	if _, err := svc.AddDependency(other.ID, a.ID, b.ID, model.DependencyTypeBlocks, ""); !errors.Is(err, ErrReleaseNotFound) {
		t.Errorf("cross-team add: got %v, want ErrReleaseNotFound", err)
	}

	edge, err := svc.AddDependency(testTeamID, a.ID, b.ID, model.DependencyTypeBlocks, "")
	if err != nil {
		t.Fatalf("add dependency: %v", err)
	}
	if err := svc.RemoveDependency(other.ID, edge.ID); !errors.Is(err, ErrDependencyNotFound) {
		t.Errorf("cross-team remove: got %v, want ErrDependencyNotFound", err)
	}
	if _, err := svc.SetResolved(other.ID, edge.ID, true); !errors.Is(err, ErrDependencyNotFound) {
		t.Errorf("cross-team resolve: got %v, want ErrDependencyNotFound", err)
	}
}

func TestRemoveEdgesForRelease(t *testing.T) {
	db := newTestDB(t)
	seedTeam(t, db)
	svc := NewService(db, nil, nil, nil)

	hub := seedRelease(t, db, "Hub", model.ReleaseStatusPlanning)
	var dependents []int
	for i := 0; i < 3; i++ {
		r := seedRelease(t, db, fmt.Sprintf("Dep %d", i), model.ReleaseStatusPlanning)
		if _, err := svc.AddDependency(testTeamID, r.ID, hub.ID, model.DependencyTypeBlocks, ""); err != nil {
			t.Fatalf("add dependency %d: %v", i, err)
		}
		dependents = append(dependents, r.ID)
	}
	upstream := seedRelease(t, db, "Upstream", model.ReleaseStatusPlanning)
	if _, err := svc.AddDependency(testTeamID, hub.ID, upstream.ID, model.DependencyTypeBlocks, ""); err != nil {
		t.Fatalf("hub upstream edge: %v", err)
	}

	former, err := svc.RemoveEdgesForRelease(hub.ID)
	if err != nil {
		t.Fatalf("remove edges: %v", err)
	}
	if len(former) != len(dependents) {
		t.Fatalf("former dependents = %v, want %d ids", former, len(dependents))
	}

	var count int64
	if err := db.Model(&model.ReleaseDependency{}).Count(&count).Error; err != nil {
		t.Fatalf("count edges: %v", err)
	}
	if count != 0 {
		t.Errorf("remaining edges = %d, want 0", count)
	}
}
