package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/storage"
	"github.com/Rrens/meeting-buddy/internal/storage/memory"
)

var (
	alice = domain.User{ID: uuid.New(), Email: "alice@acme.io", Name: "Alice"}
	bob   = domain.User{ID: uuid.New(), Email: "bob@acme.io", Name: "Bob"}
	carol = domain.User{ID: uuid.New(), Email: "carol@acme.io", Name: "Carol"}
	dave  = domain.User{ID: uuid.New(), Email: "dave@acme.io", Name: "Dave"}
	erin  = domain.User{ID: uuid.New(), Email: "erin@acme.io", Name: "Erin"}
	hana  = domain.User{ID: uuid.New(), Email: "hana@acme.io", Name: "Hana"}
)

var testNow = time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

// switchIdentity lets a test act as different users against one store
type switchIdentity struct {
	mu   sync.Mutex
	user *domain.User
}

func (i *switchIdentity) Current() domain.AuthState {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.user == nil {
		return domain.Anonymous()
	}
	return domain.Authenticated(*i.user, "token")
}

func (i *switchIdentity) as(u domain.User) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.user = &u
}

func (i *switchIdentity) logout() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.user = nil
}

type fixedLinker struct{ n int }

func (l *fixedLinker) Link() string {
	l.n++
	return "https://meet.jit.si/Test" + string(rune('A'+l.n-1))
}

// failingKV accepts reads and fails every write
type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (failingKV) Set(context.Context, string, string) error         { return errors.New("disk full") }
func (failingKV) Remove(context.Context, string) error              { return errors.New("disk full") }

// flakyKV fails the next reads, then behaves like the wrapped KV
type flakyKV struct {
	storage.KV
	mu       sync.Mutex
	failures int
}

func (k *flakyKV) Get(ctx context.Context, key string) (string, bool, error) {
	k.mu.Lock()
	fail := k.failures > 0
	if fail {
		k.failures--
	}
	k.mu.Unlock()
	if fail {
		return "", false, errors.New("connection reset")
	}
	return k.KV.Get(ctx, key)
}

type fixture struct {
	store *Store
	id    *switchIdentity
	kv    *memory.KV
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	id := &switchIdentity{}
	id.as(alice)
	kv := memory.New()
	s := New(id, kv, &fixedLinker{}, Options{})
	s.now = func() time.Time { return testNow }
	return &fixture{store: s, id: id, kv: kv}
}

func member(u domain.User, role domain.Role) domain.HubMemberInput {
	return domain.HubMemberInput{UserID: u.ID, Name: u.Name, Email: u.Email, Role: role}
}

// acmeHub creates "Acme" as Alice (CEO) with the given initial members
func (f *fixture) acmeHub(t *testing.T, members ...domain.HubMemberInput) domain.Hub {
	t.Helper()
	f.id.as(alice)
	hub, err := f.store.CreateHub(context.Background(), domain.HubCreate{
		Name:        "Acme",
		Type:        domain.HubTypeCorporate,
		CreatorRole: domain.RoleCEO,
		Members:     members,
	})
	require.NoError(t, err)
	return hub
}

// staffedHub is Acme with two managers, HR and three employees
func (f *fixture) staffedHub(t *testing.T) domain.Hub {
	return f.acmeHub(t,
		member(bob, domain.RoleManager),
		member(dave, domain.RoleManager),
		member(hana, domain.RoleHR),
		member(carol, domain.RoleEmployee),
		member(erin, domain.RoleEmployee),
	)
}

func allMembersChannel(t *testing.T, hub domain.Hub) domain.Channel {
	t.Helper()
	ch, ok := hub.AllMembersChannel()
	require.True(t, ok)
	return ch
}
