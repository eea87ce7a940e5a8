package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rrens/meeting-buddy/internal/domain"
	"github.com/Rrens/meeting-buddy/internal/storage/memory"
)

func TestDirectories(t *testing.T) {
	dirs := map[string]Directory{
		"memory": NewMemoryDirectory(),
		"stored": NewStoredDirectory(memory.New()),
	}

	for name, dir := range dirs {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, SeedDemo(ctx, dir, bcrypt.MinCost))
			// seeding twice is a no-op
			require.NoError(t, SeedDemo(ctx, dir, bcrypt.MinCost))

			acc, err := dir.FindByEmail(ctx, "admin@company.com")
			require.NoError(t, err)
			require.NotNil(t, acc)
			assert.Equal(t, "Admin User", acc.User.Name)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte("admin123")))

			byID, err := dir.FindByID(ctx, acc.User.ID)
			require.NoError(t, err)
			require.NotNil(t, byID)
			assert.Equal(t, acc.User, byID.User)

			missing, err := dir.FindByEmail(ctx, "ghost@company.com")
			require.NoError(t, err)
			assert.Nil(t, missing)

			err = dir.Create(ctx, Account{User: domain.User{ID: UserID("x@y.z"), Email: "Admin@Company.com"}})
			assert.ErrorIs(t, err, domain.ErrEmailTaken)
		})
	}
}

func TestUserID_Stable(t *testing.T) {
	assert.Equal(t, UserID("john@company.com"), UserID(" John@Company.com "))
	assert.NotEqual(t, UserID("john@company.com"), UserID("admin@company.com"))
}
