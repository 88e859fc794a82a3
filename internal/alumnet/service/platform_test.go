package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/pkg/cryptox"
	"github.com/aussiebroadwan/alumnet/pkg/idx"
	"github.com/aussiebroadwan/alumnet/pkg/jwtx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInstitutionLifecycleAndFirstLogin(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	km, err := jwtx.NewEphemeralKeyManager("alumnet-test", 1)
	require.NoError(t, err)

	institutions := &InstitutionService{Store: e.st, Mail: e.mail}
	auth := &AuthService{Store: e.st, KeyManager: km, Issuer: "alumnet-test", AccessTTL: time.Minute}

	req := CreateInstitutionRequest{
		Name:        "River College",
		Code:        "river",
		EmailDomain: "River.example",
		AdminEmail:  "Head@River.example",
	}

	t.Run("only super admins create", func(t *testing.T) {
		_, err := institutions.Create(ctx, e.admin, req)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("required fields", func(t *testing.T) {
		bad := req
		bad.EmailDomain = ""
		_, err := institutions.Create(ctx, e.super, bad)
		require.ErrorIs(t, err, ErrInvalidInstitution)
		require.ErrorContains(t, err, "email_domain is required")
	})

	created, err := institutions.Create(ctx, e.super, req)
	require.NoError(t, err)
	require.Equal(t, "RIVER", created.Institution.Code)
	require.Equal(t, domain.DefaultMaxUsers, created.Institution.MaxUsers)
	require.Equal(t, "admin_river", created.Admin.Username)
	require.True(t, created.Admin.MustChangePassword)
	require.Empty(t, created.Admin.PasswordHash)

	t.Run("duplicates", func(t *testing.T) {
		_, err := institutions.Create(ctx, e.super, req)
		require.ErrorIs(t, err, ErrInstitutionCode)

		dup := req
		dup.Code = "OTHER"
		_, err = institutions.Create(ctx, e.super, dup)
		require.ErrorIs(t, err, ErrAdminEmailTaken)
	})

	// The temporary password only ever leaves through the outbox.
	_, err = e.mail.DispatchPending(ctx)
	require.NoError(t, err)
	var temp string
	for _, msg := range e.sender.messages() {
		if msg.To != "head@river.example" {
			continue
		}
		for _, line := range strings.Split(msg.Body, "\r\n") {
			if v, ok := strings.CutPrefix(line, "- Temporary Password: "); ok {
				temp = v
			}
		}
	}
	require.Len(t, temp, 12)

	t.Run("change password on first login", func(t *testing.T) {
		err := auth.ChangePassword(ctx, ChangePasswordRequest{
			Username: "admin_river", CurrentPassword: temp, NewPassword: "new-secret-1", ConfirmPassword: "other",
		})
		require.ErrorIs(t, err, ErrNewPasswordMismatch)

		err = auth.ChangePassword(ctx, ChangePasswordRequest{
			Username: "admin_river", CurrentPassword: "wrong-pass", NewPassword: "new-secret-1", ConfirmPassword: "new-secret-1",
		})
		require.ErrorIs(t, err, ErrCurrentPassword)

		require.NoError(t, auth.ChangePassword(ctx, ChangePasswordRequest{
			Username: "admin_river", CurrentPassword: temp, NewPassword: "new-secret-1", ConfirmPassword: "new-secret-1",
		}))

		err = auth.ChangePassword(ctx, ChangePasswordRequest{
			Username: "admin_river", CurrentPassword: "new-secret-1", NewPassword: "new-secret-2", ConfirmPassword: "new-secret-2",
		})
		require.ErrorIs(t, err, ErrPasswordChangeNotNeeded)
	})

	t.Run("login issues a scoped token", func(t *testing.T) {
		_, err := auth.Login(ctx, LoginRequest{Login: "admin_river", Password: temp})
		require.ErrorIs(t, err, ErrInvalidCredentials)

		res, err := auth.Login(ctx, LoginRequest{Login: "head@river.example", Password: "new-secret-1"})
		require.NoError(t, err)
		require.Equal(t, 60, res.ExpiresIn)

		claims, err := km.Verifier.Verify(res.AccessToken)
		require.NoError(t, err)
		require.Equal(t, string(domain.RoleInstitutionAdmin), claims.Role)
		require.Equal(t, created.Institution.ID, claims.InstitutionID)
		require.Equal(t, []string{"pwd"}, claims.AMR)
	})

	t.Run("scoping", func(t *testing.T) {
		list, err := institutions.List(ctx, e.admin)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, e.inst.ID, list[0].ID)

		_, err = institutions.Get(ctx, e.admin, created.Institution.ID)
		require.ErrorIs(t, err, ErrForbidden)

		all, err := institutions.List(ctx, e.super)
		require.NoError(t, err)
		require.Len(t, all, 2)
	})

	t.Run("update", func(t *testing.T) {
		website := "https://hu.example"
		got, err := institutions.Update(ctx, e.admin, e.inst.ID, UpdateInstitutionRequest{Website: &website})
		require.NoError(t, err)
		require.Equal(t, website, got.Website)

		limit := 5
		_, err = institutions.Update(ctx, e.admin, e.inst.ID, UpdateInstitutionRequest{MaxUsers: &limit})
		require.ErrorIs(t, err, ErrForbidden)

		got, err = institutions.Update(ctx, e.super, e.inst.ID, UpdateInstitutionRequest{MaxUsers: &limit})
		require.NoError(t, err)
		require.Equal(t, 5, got.MaxUsers)
	})

	t.Run("deactivation blocks login", func(t *testing.T) {
		require.ErrorIs(t, institutions.SetActive(ctx, e.admin, created.Institution.ID, false), ErrForbidden)
		require.NoError(t, institutions.SetActive(ctx, e.super, created.Institution.ID, false))

		_, err := auth.Login(ctx, LoginRequest{Login: "admin_river", Password: "new-secret-1"})
		require.ErrorIs(t, err, ErrInstitutionInactive)

		require.ErrorIs(t, institutions.SetActive(ctx, e.super, "missing", true), ErrInstitutionNotFound)
	})
}

func TestInstitutionUsersAndAdminReset(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	institutions := &InstitutionService{Store: e.st, Mail: e.mail}

	_, raw := e.issueStored(t, "alice@hu.example", 2020, 0)
	alice, err := e.accounts.CreateAccount(ctx, CreateAccountRequest{
		Token: raw, Password: "password123", ConfirmPassword: "password123", GraduationYear: "2020",
	})
	require.NoError(t, err)

	t.Run("list users", func(t *testing.T) {
		users, err := institutions.ListUsers(ctx, e.admin, e.inst.ID, UserQuery{})
		require.NoError(t, err)
		require.Len(t, users, 2)
		for _, u := range users {
			require.Empty(t, u.PasswordHash)
		}

		users, err = institutions.ListUsers(ctx, e.admin, e.inst.ID, UserQuery{Role: "alumni", Status: "all"})
		require.NoError(t, err)
		require.Len(t, users, 1)
		require.Equal(t, alice.ID, users[0].ID)

		users, err = institutions.ListUsers(ctx, e.super, e.inst.ID, UserQuery{Search: "SMI"})
		require.NoError(t, err)
		require.Len(t, users, 1)

		users, err = institutions.ListUsers(ctx, e.admin, e.inst.ID, UserQuery{Search: "%"})
		require.NoError(t, err)
		require.Empty(t, users)

		_, err = institutions.ListUsers(ctx, e.admin, e.inst.ID, UserQuery{Status: "deleted"})
		require.ErrorIs(t, err, ErrInvalidUserFilter)

		_, err = institutions.ListUsers(ctx, e.admin, "other", UserQuery{})
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("reset admin password", func(t *testing.T) {
		_, err := institutions.ResetAdminPassword(ctx, e.admin, e.inst.ID)
		require.ErrorIs(t, err, ErrForbidden)

		_, err = institutions.ResetAdminPassword(ctx, e.super, "missing")
		require.ErrorIs(t, err, ErrInstitutionNotFound)

		admin, err := institutions.ResetAdminPassword(ctx, e.super, e.inst.ID)
		require.NoError(t, err)
		require.Equal(t, e.admin.UserID, admin.ID)
		require.Empty(t, admin.PasswordHash)

		_, err = e.mail.DispatchPending(ctx)
		require.NoError(t, err)
		var msg Message
		for _, m := range e.sender.messages() {
			if m.To == "admin@hu.example" {
				msg = m
			}
		}
		require.Equal(t, "Admin Password Reset - Harbour University Alumni Platform", msg.Subject)
		var temp string
		for _, line := range strings.Split(msg.Body, "\r\n") {
			if v, ok := strings.CutPrefix(line, "- Temporary Password: "); ok {
				temp = v
			}
		}
		require.Len(t, temp, 12)

		stored, err := e.st.Users().GetUserByID(ctx, e.admin.UserID)
		require.NoError(t, err)
		require.True(t, stored.MustChangePassword)
		require.NoError(t, cryptox.VerifyPassword(temp, stored.PasswordHash))
	})

	t.Run("institution without an admin", func(t *testing.T) {
		lone := domain.Institution{ID: idx.New().String(), Name: "Lone", Code: "LONE", IsActive: true}
		require.NoError(t, e.st.Institutions().CreateInstitution(ctx, lone))

		_, err := institutions.ResetAdminPassword(ctx, e.super, lone.ID)
		require.ErrorIs(t, err, ErrAdminNotFound)
	})
}

func TestBootstrapAndMFA(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newTestEnv(t)

	bs := &BootstrapService{Store: e.st, Token: "s3cret"}
	_, err := bs.Bootstrap(ctx, "s3cret", BootstrapRequest{Username: "owner", Email: "owner@x.example", Password: "long-password"})
	require.ErrorIs(t, err, ErrBootstrapAlready)

	empty := emptyStore(t)
	bs = &BootstrapService{Store: empty, Token: "s3cret"}

	_, err = bs.Bootstrap(ctx, "wrong", BootstrapRequest{Username: "owner", Email: "owner@x.example", Password: "long-password"})
	require.ErrorIs(t, err, ErrBootstrapUnauthorized)

	_, err = bs.Bootstrap(ctx, "s3cret", BootstrapRequest{Username: "owner", Email: "owner@x.example", Password: "short"})
	require.ErrorIs(t, err, ErrPasswordTooShort)

	owner, err := bs.Bootstrap(ctx, "s3cret", BootstrapRequest{Username: "owner", Email: "Owner@X.example", Password: "long-password"})
	require.NoError(t, err)
	require.Equal(t, domain.RoleSuperAdmin, owner.Role)
	require.Equal(t, "owner@x.example", owner.Email)

	done, err := bs.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.True(t, done)

	km, err := jwtx.NewEphemeralKeyManager("alumnet-test", 2)
	require.NoError(t, err)
	auth := &AuthService{Store: empty, KeyManager: km, Issuer: "alumnet-test"}
	mfa := &MFAService{Store: empty, Issuer: "Alumnet"}

	enrollment, err := mfa.Enroll(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, "owner", enrollment.Account)
	require.Contains(t, enrollment.URL, "otpauth://totp/")

	require.ErrorIs(t, mfa.Verify(ctx, owner.ID, "000000x"), ErrInvalidTOTPCode)

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, mfa.Verify(ctx, owner.ID, code))
	require.ErrorIs(t, mfa.Verify(ctx, owner.ID, code), ErrMFAAlreadyEnabled)

	_, err = auth.Login(ctx, LoginRequest{Login: "owner", Password: "long-password"})
	require.ErrorIs(t, err, ErrMFARequired)

	res, err := auth.Login(ctx, LoginRequest{Login: "owner", Password: "long-password", OTPCode: code})
	require.NoError(t, err)
	claims, err := km.Verifier.Verify(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, []string{"pwd", "otp"}, claims.AMR)
	require.Empty(t, claims.InstitutionID)

	require.NoError(t, mfa.Disable(ctx, owner.ID, code))
	require.ErrorIs(t, mfa.Disable(ctx, owner.ID, code), ErrMFANotEnabled)
}

func TestHousekeepingExpiresStaleInvites(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	ctx := context.Background()

	e.invites.Now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	stale, _ := e.issueStored(t, "stale@hu.example", 2010, time.Hour)
	e.invites.Now = nil
	fresh, _ := e.issueStored(t, "fresh@hu.example", 2010, 0)

	hk := NewHousekeepingService(e.st, discardLogger(), 0)
	require.Equal(t, time.Hour, hk.Interval)
	hk.Cleanup(ctx)

	got, err := e.st.Invites().GetInviteByID(ctx, stale.ID)
	require.NoError(t, err)
	require.True(t, got.Expired)

	got, err = e.st.Invites().GetInviteByID(ctx, fresh.ID)
	require.NoError(t, err)
	require.False(t, got.Expired)

	require.False(t, hk.Running())
	hk.Start()
	require.True(t, hk.Running())
	hk.Stop()
	require.False(t, hk.Running())
}
