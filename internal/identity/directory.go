package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/storage"
)

// DefaultAvatar is given to registered users without a picture
const DefaultAvatar = "https://images.pexels.com/photos/771742/pexels-photo-771742.jpeg?auto=compress&cs=tinysrgb&w=100&h=100&fit=crop"

// Account is a directory entry
type Account struct {
	User         domain.User `json:"user"`
	PasswordHash string      `json:"passwordHash"`
}

// Directory looks up and registers accounts. Lookups return nil, nil when
// nothing matches.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	Create(ctx context.Context, account Account) error
}

// NormalizeEmail lowercases and trims an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserID derives a stable id from an email address so that demo accounts
// keep their data across restarts.
func UserID(email string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+NormalizeEmail(email)))
}

// MemoryDirectory is a process-local Directory
type MemoryDirectory struct {
	mu      sync.RWMutex
	byEmail map[string]Account
}

// NewMemoryDirectory creates an empty directory
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{byEmail: make(map[string]Account)}
}

func (d *MemoryDirectory) FindByEmail(_ context.Context, email string) (*Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	acc, ok := d.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	return &acc, nil
}

func (d *MemoryDirectory) FindByID(_ context.Context, id uuid.UUID) (*Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, acc := range d.byEmail {
		if acc.User.ID == id {
			found := acc
			return &found, nil
		}
	}
	return nil, nil
}

func (d *MemoryDirectory) Create(_ context.Context, account Account) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	email := NormalizeEmail(account.User.Email)
	if _, exists := d.byEmail[email]; exists {
		return domain.ErrEmailTaken
	}
	d.byEmail[email] = account
	return nil
}

// StoredDirectory keeps accounts in a storage.KV so registrations survive
// restarts of the CLI and the server.
type StoredDirectory struct {
	mu sync.Mutex
	kv storage.KV
}

// NewStoredDirectory creates a directory over kv
func NewStoredDirectory(kv storage.KV) *StoredDirectory {
	return &StoredDirectory{kv: kv}
}

func accountKey(email string) string { return "account_" + NormalizeEmail(email) }

func accountIDKey(id uuid.UUID) string { return "account_id_" + id.String() }

func (d *StoredDirectory) FindByEmail(ctx context.Context, email string) (*Account, error) {
	raw, ok, err := d.kv.Get(ctx, accountKey(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var acc Account
	if err := json.Unmarshal([]byte(raw), &acc); err != nil {
		return nil, fmt.Errorf("failed to decode account: %w", err)
	}
	return &acc, nil
}

func (d *StoredDirectory) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	email, ok, err := d.kv.Get(ctx, accountIDKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get account index: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return d.FindByEmail(ctx, email)
}

func (d *StoredDirectory) Create(ctx context.Context, account Account) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	existing, err := d.FindByEmail(ctx, account.User.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrEmailTaken
	}

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to encode account: %w", err)
	}
	if err := d.kv.Set(ctx, accountKey(account.User.Email), string(data)); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	if err := d.kv.Set(ctx, accountIDKey(account.User.ID), NormalizeEmail(account.User.Email)); err != nil {
		return fmt.Errorf("failed to index account: %w", err)
	}
	return nil
}

// DemoCredential is a sample login
type DemoCredential struct {
	Name     string
	Email    string
	Password string
	Avatar   string
}

// DemoCredentials are the sample accounts available out of the box
var DemoCredentials = []DemoCredential{
	{
		Name:     "Admin User",
		Email:    "admin@company.com",
		Password: "admin123",
		Avatar:   "https://images.pexels.com/photos/2379004/pexels-photo-2379004.jpeg?auto=compress&cs=tinysrgb&w=100&h=100&fit=crop",
	},
	{
		Name:     "Sarah Manager",
		Email:    "manager@company.com",
		Password: "manager123",
		Avatar:   "https://images.pexels.com/photos/1181686/pexels-photo-1181686.jpeg?auto=compress&cs=tinysrgb&w=100&h=100&fit=crop",
	},
	{
		Name:     "John Doe",
		Email:    "john@company.com",
		Password: "john123",
		Avatar:   "https://images.pexels.com/photos/1222271/pexels-photo-1222271.jpeg?auto=compress&cs=tinysrgb&w=100&h=100&fit=crop",
	},
}

// SeedDemo registers the demo accounts that are not present yet
func SeedDemo(ctx context.Context, dir Directory, cost int) error {
	for _, c := range DemoCredentials {
		existing, err := dir.FindByEmail(ctx, c.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), cost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		err = dir.Create(ctx, Account{
			User: domain.User{
				ID:     UserID(c.Email),
				Email:  NormalizeEmail(c.Email),
				Name:   c.Name,
				Avatar: c.Avatar,
			},
			PasswordHash: string(hash),
		})
		if err != nil {
			return fmt.Errorf("failed to seed %s: %w", c.Email, err)
		}
	}
	return nil
}
