package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"kizuki-server/internal/domain"
	"kizuki-server/internal/repository"
	"kizuki-server/internal/session"
)

type fakeGate struct {
	mu       sync.Mutex
	identity *session.Identity
	err      error
	calls    int
	revoked  []string
}

func signedInAs(userID string) *fakeGate {
	return &fakeGate{identity: &session.Identity{UserID: userID, Email: userID + "@example.com", TokenID: "tok-" + userID}}
}

func signedOut() *fakeGate {
	return &fakeGate{}
}

func (g *fakeGate) Resolve(context.Context) (*session.Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	if g.identity == nil {
		return nil, session.ErrNoSession
	}
	identity := *g.identity
	return &identity, nil
}

func (g *fakeGate) Revoke(_ context.Context, identity *session.Identity) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.revoked = append(g.revoked, identity.TokenID)
	return nil
}

type mockMemoRepo struct {
	memos   map[string]*domain.Memo
	err     error
	creates int
}

func newMockMemoRepo() *mockMemoRepo {
	return &mockMemoRepo{memos: make(map[string]*domain.Memo)}
}

func (m *mockMemoRepo) Create(_ context.Context, memo *domain.Memo) error {
	m.creates++
	if m.err != nil {
		return m.err
	}
	m.memos[memo.ID] = memo
	return nil
}

func (m *mockMemoRepo) FindByID(_ context.Context, userID, id string) (*domain.Memo, error) {
	if m.err != nil {
		return nil, m.err
	}
	if memo, ok := m.memos[id]; ok && memo.UserID == userID {
		return memo, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockMemoRepo) ListLatest(_ context.Context, userID string, limit int) ([]*domain.Memo, error) {
	if m.err != nil {
		return nil, m.err
	}
	var memos []*domain.Memo
	for _, memo := range m.memos {
		if memo.UserID == userID {
			memos = append(memos, memo)
		}
	}
	sort.Slice(memos, func(i, j int) bool { return memos[i].CreatedAt.After(memos[j].CreatedAt) })
	if len(memos) > limit {
		memos = memos[:limit]
	}
	return memos, nil
}

type caseKey struct{ userID, memoID string }

type mockCaseRepo struct {
	mu    sync.Mutex
	cases map[caseKey]*domain.Case
	err   error
	// beforeCreate runs inside Create before the uniqueness check.
	beforeCreate func()
}

func newMockCaseRepo() *mockCaseRepo {
	return &mockCaseRepo{cases: make(map[caseKey]*domain.Case)}
}

func (m *mockCaseRepo) FindByMemo(_ context.Context, userID, memoID string) (*domain.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := m.cases[caseKey{userID, memoID}]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockCaseRepo) Create(_ context.Context, c *domain.Case) error {
	if m.beforeCreate != nil {
		m.beforeCreate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	key := caseKey{c.UserID, c.MemoID}
	if _, exists := m.cases[key]; exists {
		return repository.ErrCaseExists
	}
	cp := *c
	m.cases[key] = &cp
	return nil
}

func (m *mockCaseRepo) Replace(_ context.Context, userID, caseID string, patch domain.CasePatch) (*domain.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for key, c := range m.cases {
		if c.ID == caseID && key.userID == userID {
			patch.Apply(c)
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockCaseRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cases)
}

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(_ context.Context, user *domain.User) error {
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := m.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) Update(_ context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

type recordingNotifier struct {
	mu    sync.Mutex
	memos []*domain.MemoSummary
	cases []*domain.Case
}

func (n *recordingNotifier) MemoCreated(_ string, memo *domain.MemoSummary) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.memos = append(n.memos, memo)
}

func (n *recordingNotifier) CaseUpdated(_ string, c *domain.Case) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cases = append(n.cases, c)
}
