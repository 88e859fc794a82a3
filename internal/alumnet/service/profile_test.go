package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestProfileReadAndUpdate(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	profiles := &ProfileService{Store: e.st}

	_, raw := e.issueStored(t, "alice@hu.example", 2020, 0)
	user, err := e.accounts.CreateAccount(ctx, CreateAccountRequest{
		Token: raw, Password: "password123", ConfirmPassword: "password123", GraduationYear: "2020",
	})
	require.NoError(t, err)
	alice := httpx.Principal{UserID: user.ID, Username: user.Username, Role: string(user.Role), InstitutionID: user.InstitutionID}

	t.Run("owner reads the profile created with the account", func(t *testing.T) {
		p, err := profiles.Get(ctx, alice)
		require.NoError(t, err)
		alumni, ok := p.Data.(domain.AlumniProfile)
		require.True(t, ok)
		require.Equal(t, "Computer Science", alumni.Major)
	})

	t.Run("admins have no profile", func(t *testing.T) {
		_, err := profiles.Get(ctx, e.admin)
		require.ErrorIs(t, err, ErrProfileNotFound)

		bio := "hello"
		_, err = profiles.Update(ctx, e.admin, domain.ProfileUpdate{Bio: &bio})
		require.ErrorIs(t, err, ErrProfileNotFound)
	})

	t.Run("update keeps identity fields", func(t *testing.T) {
		company, month := "Harbour Labs", 11
		updated, err := profiles.Update(ctx, alice, domain.ProfileUpdate{
			CurrentCompany:  &company,
			GraduationMonth: &month,
		})
		require.NoError(t, err)
		alumni := updated.Data.(domain.AlumniProfile)
		require.Equal(t, "Harbour Labs", alumni.CurrentCompany)
		require.Equal(t, 11, *alumni.GraduationMonth)
		require.Equal(t, "alice@hu.example", alumni.Email)
		require.Equal(t, 2020, alumni.GraduationYear)
		require.Equal(t, "Computer Science", alumni.Major)

		again, err := profiles.Get(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, updated.Data, again.Data)
	})

	t.Run("invalid updates change nothing", func(t *testing.T) {
		address, month := "1 Quay St", 13
		_, err := profiles.Update(ctx, alice, domain.ProfileUpdate{Address: &address})
		require.ErrorIs(t, err, domain.ErrInvalidProfile)
		_, err = profiles.Update(ctx, alice, domain.ProfileUpdate{GraduationMonth: &month})
		require.ErrorIs(t, err, domain.ErrInvalidProfile)

		p, err := profiles.Get(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, 11, *p.Data.(domain.AlumniProfile).GraduationMonth)
	})
}
