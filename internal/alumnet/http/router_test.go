package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/service"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/store/drivers/sqlite"
	"github.com/aussiebroadwan/alumnet/pkg/alumnetsdk"
	"github.com/aussiebroadwan/alumnet/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer         = "https://alumnet.test"
	testBootstrapToken = "bootstrap-secret"
)

type outbox struct {
	mu   sync.Mutex
	sent []service.Message
}

func (o *outbox) Send(_ context.Context, msg service.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

// lastTo returns the body of the newest message sent to addr.
func (o *outbox) lastTo(t *testing.T, addr string) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.sent) - 1; i >= 0; i-- {
		if o.sent[i].To == addr {
			return o.sent[i].Body
		}
	}
	t.Fatalf("no mail sent to %s", addr)
	return ""
}

type testServer struct {
	client *alumnetsdk.Client
	mail   *service.MailService
	outbox *outbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	km, err := jwtx.NewEphemeralKeyManager(testIssuer, 1)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	box := &outbox{}
	mail := service.NewMailService(st, box, logger, "https://alumni.example", time.Hour, 3)
	invites := &service.InviteService{Store: st, Mail: mail}

	router := NewRouter(km.KeySet, km.Verifier, "test", st, logger)
	router.AccountService = &service.AccountService{Store: st, Invites: invites}
	router.InviteService = invites
	router.ImportService = &service.ImportService{Store: st, Invites: invites, Mail: mail}
	router.InstitutionService = &service.InstitutionService{Store: st, Mail: mail}
	router.AuthService = &service.AuthService{Store: st, KeyManager: km, Issuer: testIssuer}
	router.MFAService = &service.MFAService{Store: st, Issuer: "AlumNet"}
	router.BootstrapService = &service.BootstrapService{Store: st, Token: testBootstrapToken}
	router.ProfileService = &service.ProfileService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{
		client: alumnetsdk.NewClient(srv.URL),
		mail:   mail,
		outbox: box,
	}
}

// flush delivers queued mail synchronously.
func (s *testServer) flush(t *testing.T) {
	t.Helper()
	_, err := s.mail.DispatchPending(context.Background())
	require.NoError(t, err)
}

func requireAPIError(t *testing.T, err error, status int, code string) *alumnetsdk.APIError {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := err.(*alumnetsdk.APIError)
	require.True(t, ok, "expected *APIError, got %T: %v", err, err)
	require.Equal(t, status, apiErr.StatusCode)
	if code != "" {
		require.Equal(t, code, apiErr.Code)
	}
	return apiErr
}

func tokenFromInvitation(t *testing.T, body string) string {
	t.Helper()
	for _, line := range strings.Split(body, "\r\n") {
		if _, link, ok := strings.Cut(line, "visit: "); ok {
			u, err := url.Parse(link)
			require.NoError(t, err)
			return u.Query().Get("token")
		}
	}
	t.Fatal("invitation has no link")
	return ""
}

func passwordFromCredentials(t *testing.T, body string) string {
	t.Helper()
	for _, line := range strings.Split(body, "\r\n") {
		if pw, ok := strings.CutPrefix(line, "- Temporary Password: "); ok {
			return pw
		}
	}
	t.Fatal("credentials mail has no password")
	return ""
}

func TestOnboardingFlow(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	// Bootstrap and sign in as the super admin.
	_, err := s.client.Bootstrap(ctx, "wrong", alumnetsdk.BootstrapRequest{
		Username: "root", Email: "root@platform.example", Password: "super-secret-1",
	})
	requireAPIError(t, err, http.StatusUnauthorized, alumnetsdk.ErrorCodeUnauthorized)

	boot, err := s.client.Bootstrap(ctx, testBootstrapToken, alumnetsdk.BootstrapRequest{
		Username: "root", Email: "root@platform.example", Password: "super-secret-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, boot.AdminUserID)

	root, err := s.client.Login(ctx, alumnetsdk.LoginRequest{Login: "root", Password: "super-secret-1"})
	require.NoError(t, err)
	require.Equal(t, "super_admin", root.User.Role)

	// Create an institution; its admin gets a temporary password by mail.
	created, err := root.CreateInstitution(ctx, alumnetsdk.CreateInstitutionRequest{
		Name:        "Harbour University",
		Code:        "hu",
		EmailDomain: "hu.example",
		AdminEmail:  "registrar@hu.example",
	})
	require.NoError(t, err)
	require.Equal(t, "HU", created.Institution.Code)
	require.True(t, created.Admin.MustChangePassword)

	_, err = root.CreateInstitution(ctx, alumnetsdk.CreateInstitutionRequest{
		Name: "Other", Code: "HU", EmailDomain: "o.example", AdminEmail: "x@o.example",
	})
	requireAPIError(t, err, http.StatusConflict, alumnetsdk.ErrorCodeConflict)

	s.flush(t)
	temp := passwordFromCredentials(t, s.outbox.lastTo(t, "registrar@hu.example"))

	require.NoError(t, s.client.ChangePassword(ctx, alumnetsdk.ChangePasswordRequest{
		Username:        created.Admin.Username,
		CurrentPassword: temp,
		NewPassword:     "registrar-pass",
		ConfirmPassword: "registrar-pass",
	}))

	admin, err := s.client.Login(ctx, alumnetsdk.LoginRequest{Login: "registrar@hu.example", Password: "registrar-pass"})
	require.NoError(t, err)
	require.Equal(t, created.Institution.ID, admin.User.InstitutionID)

	// Import a roster with one bad row.
	up, err := admin.UploadRoster(ctx, alumnetsdk.UploadRosterRequest{
		UserType: "alumni",
		Filename: "alumni.csv",
		Data: []byte("first_name,last_name,email,graduation_year,department\n" +
			"Alice,Smith,alice@hu.example,2020,Engineering\n" +
			"Bob,,bob@hu.example,2019,Law\n"),
	})
	require.NoError(t, err)
	require.Equal(t, "completed", up.Status)
	require.Equal(t, 2, up.Summary.TotalRecords)
	require.Equal(t, 1, up.Summary.SuccessfulRecords)
	require.Len(t, up.Errors, 1)
	require.Equal(t, 3, up.Errors[0].RowNumber)

	s.flush(t)

	t.Run("batch status reports mail delivery", func(t *testing.T) {
		b, err := admin.GetBatch(ctx, up.BatchID)
		require.NoError(t, err)
		require.Equal(t, 1, b.SuccessfulRecords)
		require.Equal(t, 1, b.FailedRecords)
		require.NotNil(t, b.Mail)
		require.Equal(t, 1, b.Mail.Sent)
	})

	t.Run("unsupported files are rejected before a batch exists", func(t *testing.T) {
		_, err := admin.UploadRoster(ctx, alumnetsdk.UploadRosterRequest{
			UserType: "alumni", Filename: "alumni.xls", Data: []byte("x"),
		})
		requireAPIError(t, err, http.StatusBadRequest, alumnetsdk.ErrorCodeInvalidRequest)

		batches, err := admin.ListBatches(ctx, "", 0)
		require.NoError(t, err)
		require.Len(t, batches, 1)
	})

	// Redeem the invitation.
	raw := tokenFromInvitation(t, s.outbox.lastTo(t, "alice@hu.example"))

	info, err := s.client.ValidateInvite(ctx, raw)
	require.NoError(t, err)
	require.Equal(t, "alice@hu.example", info.Email)
	require.Equal(t, "Harbour University", info.InstitutionName)

	err = s.client.VerifyGraduation(ctx, raw, alumnetsdk.YearOf(2019))
	requireAPIError(t, err, http.StatusBadRequest, alumnetsdk.ErrorCodeInvalidRequest)
	require.NoError(t, s.client.VerifyGraduation(ctx, raw, alumnetsdk.YearOf(2020)))

	acct, err := s.client.CreateAccount(ctx, alumnetsdk.CreateAccountRequest{
		Token:           raw,
		Password:        "alice-password",
		ConfirmPassword: "alice-password",
		GraduationYear:  alumnetsdk.YearOf(2020),
	})
	require.NoError(t, err)
	require.Equal(t, "alumni", acct.UserType)
	require.Equal(t, "alice", acct.User.Username)

	_, err = s.client.CreateAccount(ctx, alumnetsdk.CreateAccountRequest{
		Token:           raw,
		Password:        "alice-password",
		ConfirmPassword: "alice-password",
		GraduationYear:  alumnetsdk.YearOf(2020),
	})
	apiErr := requireAPIError(t, err, http.StatusBadRequest, alumnetsdk.ErrorCodeInvalidRequest)
	require.Equal(t, "Token has expired or been used", apiErr.Description)

	alice, err := s.client.Login(ctx, alumnetsdk.LoginRequest{Login: "alice", Password: "alice-password"})
	require.NoError(t, err)

	t.Run("alumni see their own profile", func(t *testing.T) {
		me, err := alice.Me(ctx)
		require.NoError(t, err)
		require.Equal(t, "alice@hu.example", me.User.Email)
		require.Contains(t, string(me.Profile), `"graduation_year":2020`)
	})

	t.Run("alumni cannot reach admin routes", func(t *testing.T) {
		_, err := alice.ListBatches(ctx, "", 0)
		requireAPIError(t, err, http.StatusForbidden, alumnetsdk.ErrorCodeAccessDenied)
	})

	t.Run("institution admins cannot create institutions", func(t *testing.T) {
		_, err := admin.CreateInstitution(ctx, alumnetsdk.CreateInstitutionRequest{
			Name: "Rogue", Code: "RG", EmailDomain: "rg.example", AdminEmail: "a@rg.example",
		})
		requireAPIError(t, err, http.StatusForbidden, alumnetsdk.ErrorCodeAccessDenied)
	})

	t.Run("super admins must name an institution", func(t *testing.T) {
		_, err := root.ListInvites(ctx, "", "", 0)
		requireAPIError(t, err, http.StatusBadRequest, "")

		invites, err := root.ListInvites(ctx, created.Institution.ID, "used", 0)
		require.NoError(t, err)
		require.Len(t, invites, 1)
		require.Equal(t, "used", invites[0].State)
	})

	t.Run("alumni edit their own profile", func(t *testing.T) {
		company, month := "  Harbour Labs ", 6
		updated, err := alice.UpdateProfile(ctx, alumnetsdk.UpdateProfileRequest{
			CurrentCompany:  &company,
			GraduationMonth: &month,
			Skills:          &[]string{"go", " ", "sql"},
		})
		require.NoError(t, err)
		require.Equal(t, "alumni", updated.UserType)
		require.Contains(t, string(updated.Profile), `"current_company":"Harbour Labs"`)
		require.Contains(t, string(updated.Profile), `"skills":["go","sql"]`)

		got, err := alice.Profile(ctx)
		require.NoError(t, err)
		require.JSONEq(t, string(updated.Profile), string(got.Profile))

		address := "1 Quay St"
		_, err = alice.UpdateProfile(ctx, alumnetsdk.UpdateProfileRequest{Address: &address})
		requireAPIError(t, err, http.StatusBadRequest, alumnetsdk.ErrorCodeInvalidRequest)

		_, err = admin.Profile(ctx)
		requireAPIError(t, err, http.StatusNotFound, alumnetsdk.ErrorCodeNotFound)
	})

	t.Run("admins list institution users", func(t *testing.T) {
		users, err := admin.ListInstitutionUsers(ctx, created.Institution.ID, alumnetsdk.ListUsersRequest{})
		require.NoError(t, err)
		require.Len(t, users, 2)

		users, err = admin.ListInstitutionUsers(ctx, created.Institution.ID, alumnetsdk.ListUsersRequest{
			Role: "alumni", Search: "SMITH",
		})
		require.NoError(t, err)
		require.Len(t, users, 1)
		require.Equal(t, "alice", users[0].Username)

		_, err = admin.ListInstitutionUsers(ctx, created.Institution.ID, alumnetsdk.ListUsersRequest{Role: "root"})
		requireAPIError(t, err, http.StatusBadRequest, alumnetsdk.ErrorCodeInvalidRequest)

		_, err = alice.ListInstitutionUsers(ctx, created.Institution.ID, alumnetsdk.ListUsersRequest{})
		requireAPIError(t, err, http.StatusForbidden, alumnetsdk.ErrorCodeAccessDenied)
	})

	t.Run("super admins reset the institution admin password", func(t *testing.T) {
		_, err := admin.ResetAdminPassword(ctx, created.Institution.ID)
		requireAPIError(t, err, http.StatusForbidden, alumnetsdk.ErrorCodeAccessDenied)

		_, err = root.ResetAdminPassword(ctx, "missing")
		requireAPIError(t, err, http.StatusNotFound, alumnetsdk.ErrorCodeNotFound)

		msg, err := root.ResetAdminPassword(ctx, created.Institution.ID)
		require.NoError(t, err)
		require.NotEmpty(t, msg.Message)

		s.flush(t)
		reset := passwordFromCredentials(t, s.outbox.lastTo(t, "registrar@hu.example"))
		require.NotEqual(t, temp, reset)

		_, err = s.client.Login(ctx, alumnetsdk.LoginRequest{Login: "registrar@hu.example", Password: "registrar-pass"})
		requireAPIError(t, err, http.StatusUnauthorized, "")

		require.NoError(t, s.client.ChangePassword(ctx, alumnetsdk.ChangePasswordRequest{
			Username:        created.Admin.Username,
			CurrentPassword: reset,
			NewPassword:     "registrar-pass-2",
			ConfirmPassword: "registrar-pass-2",
		}))
		_, err = s.client.Login(ctx, alumnetsdk.LoginRequest{Login: "registrar@hu.example", Password: "registrar-pass-2"})
		require.NoError(t, err)
	})
}

func TestSystemEndpoints(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	ctx := context.Background()

	live, err := s.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := s.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "v1", ready.Checks.Schema)
	require.Equal(t, "ok", ready.Checks.Signer)

	jwks, err := s.client.GetJWKS(ctx)
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)

	t.Run("metrics are exported", func(t *testing.T) {
		resp, err := http.Get(s.client.BaseURL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, string(body), `http_requests_total{method="GET",path="GET /livez",status="200"}`)
	})

	t.Run("protected routes need a bearer token", func(t *testing.T) {
		_, err := s.client.NewSession("not-a-jwt").Me(ctx)
		requireAPIError(t, err, http.StatusUnauthorized, alumnetsdk.ErrorCodeInvalidToken)
	})
}
