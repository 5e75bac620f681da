package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"kizuki-server/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestCaseService_GetOrCreateCaseByMemo(t *testing.T) {
	repo := newMockCaseRepo()
	service := NewCaseService(repo, signedInAs("user1"), nil, nopLog)
	ctx := context.Background()

	first, err := service.GetOrCreateCaseByMemo(ctx, "memo-1")
	if err != nil {
		t.Fatalf("GetOrCreateCaseByMemo() error = %v", err)
	}
	if first.MemoID != "memo-1" || first.UserID != "user1" {
		t.Errorf("case = %+v", first)
	}
	if first.Status == nil || *first.Status != domain.CaseStatusDraft {
		t.Errorf("Status = %v, want draft", first.Status)
	}
	if first.ProductCodes == nil || len(first.ProductCodes) != 0 {
		t.Errorf("ProductCodes = %v, want empty list", first.ProductCodes)
	}
	if first.PropertyName != nil || first.Address != nil || first.Period != nil || first.WorkDetail != nil {
		t.Error("draft fields must start null")
	}

	second, err := service.GetOrCreateCaseByMemo(ctx, "memo-1")
	if err != nil {
		t.Fatalf("second GetOrCreateCaseByMemo() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second call id = %s, want %s", second.ID, first.ID)
	}
	if repo.count() != 1 {
		t.Errorf("case rows = %d, want 1", repo.count())
	}
}

func TestCaseService_GetOrCreateIsPerUser(t *testing.T) {
	repo := newMockCaseRepo()
	ctx := context.Background()

	a, _ := NewCaseService(repo, signedInAs("user1"), nil, nopLog).GetOrCreateCaseByMemo(ctx, "memo-1")
	b, _ := NewCaseService(repo, signedInAs("user2"), nil, nopLog).GetOrCreateCaseByMemo(ctx, "memo-1")

	if a.ID == b.ID {
		t.Error("users must not share a case")
	}
}

func TestCaseService_GetOrCreateLosesRace(t *testing.T) {
	repo := newMockCaseRepo()
	status := domain.CaseStatusDraft
	winner := &domain.Case{ID: "winner", MemoID: "memo-1", UserID: "user1", ProductCodes: []string{}, Status: &status}

	repo.beforeCreate = func() {
		repo.mu.Lock()
		repo.cases[caseKey{"user1", "memo-1"}] = winner
		repo.mu.Unlock()
	}

	got, err := NewCaseService(repo, signedInAs("user1"), nil, nopLog).GetOrCreateCaseByMemo(context.Background(), "memo-1")
	if err != nil {
		t.Fatalf("GetOrCreateCaseByMemo() error = %v", err)
	}
	if got.ID != "winner" {
		t.Errorf("got %s, want the concurrently created case", got.ID)
	}
}

func TestCaseService_GetOrCreateConcurrent(t *testing.T) {
	repo := newMockCaseRepo()
	service := NewCaseService(repo, signedInAs("user1"), nil, nopLog)

	const callers = 16
	ids := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := service.GetOrCreateCaseByMemo(context.Background(), "memo-1")
			errs[i] = err
			if c != nil {
				ids[i] = c.ID
			}
		}(i)
	}
	wg.Wait()

	for i := range ids {
		if errs[i] != nil {
			t.Fatalf("caller %d error = %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("caller %d got %s, want %s", i, ids[i], ids[0])
		}
	}
	if repo.count() != 1 {
		t.Errorf("case rows = %d, want 1", repo.count())
	}
}

func TestCaseService_GetOrCreateErrors(t *testing.T) {
	_, err := NewCaseService(newMockCaseRepo(), signedOut(), nil, nopLog).GetOrCreateCaseByMemo(context.Background(), "memo-1")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("no session: error = %v, want ErrUnauthorized", err)
	}

	failing := newMockCaseRepo()
	failing.err = errors.New("relation \"cases\" does not exist")
	_, err = NewCaseService(failing, signedInAs("user1"), nil, nopLog).GetOrCreateCaseByMemo(context.Background(), "memo-1")
	if got := ActionError(err); got != "relation \"cases\" does not exist" {
		t.Errorf("ActionError() = %q", got)
	}
}

func TestCaseService_UpdateCaseOverwritesEveryField(t *testing.T) {
	repo := newMockCaseRepo()
	notifier := &recordingNotifier{}
	service := NewCaseService(repo, signedInAs("user1"), notifier, nopLog)
	ctx := context.Background()

	c, _ := service.GetOrCreateCaseByMemo(ctx, "memo-1")

	full := domain.CasePatch{
		PropertyName: strPtr("Sunrise Heights"),
		Address:      strPtr("1-2-3 Minato"),
		Period:       strPtr("2026/06"),
		WorkDetail:   strPtr("repaint"),
		ProductCodes: []string{"A", "B"},
		Status:       strPtr("in_progress"),
	}
	updated, err := service.UpdateCase(ctx, c.ID, full)
	if err != nil {
		t.Fatalf("UpdateCase() error = %v", err)
	}
	if *updated.PropertyName != "Sunrise Heights" || len(updated.ProductCodes) != 2 {
		t.Errorf("updated = %+v", updated)
	}

	updated, err = service.UpdateCase(ctx, c.ID, domain.CasePatch{PropertyName: strPtr("Only name")})
	if err != nil {
		t.Fatalf("UpdateCase() error = %v", err)
	}
	if updated.Address != nil || updated.Period != nil || updated.WorkDetail != nil || updated.Status != nil || updated.ProductCodes != nil {
		t.Errorf("omitted fields must be cleared, got %+v", updated)
	}

	stored, _ := repo.FindByMemo(ctx, "user1", "memo-1")
	if stored.Address != nil || *stored.PropertyName != "Only name" {
		t.Errorf("stored = %+v", stored)
	}
	if len(notifier.cases) != 2 {
		t.Errorf("notifications = %d, want 2", len(notifier.cases))
	}
}

func TestCaseService_UpdateCaseErrors(t *testing.T) {
	repo := newMockCaseRepo()
	ctx := context.Background()
	c, _ := NewCaseService(repo, signedInAs("user1"), nil, nopLog).GetOrCreateCaseByMemo(ctx, "memo-1")

	tests := []struct {
		name    string
		gate    *fakeGate
		caseID  string
		wantErr error
	}{
		{name: "no session", gate: signedOut(), caseID: c.ID, wantErr: ErrUnauthorized},
		{name: "unknown id", gate: signedInAs("user1"), caseID: "missing", wantErr: ErrUpdateFailed},
		{name: "other user's case", gate: signedInAs("user2"), caseID: c.ID, wantErr: ErrUpdateFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCaseService(repo, tt.gate, nil, nopLog).UpdateCase(ctx, tt.caseID, domain.CasePatch{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("UpdateCase() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	stored, _ := repo.FindByMemo(ctx, "user1", "memo-1")
	if stored.Status == nil {
		t.Error("rejected updates must leave the case untouched")
	}
}
