package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/store"
	"github.com/aussiebroadwan/alumnet/pkg/cryptox"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/idx"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
)

var (
	ErrInvalidInstitution = errors.New("invalid institution")
	ErrInstitutionCode    = errors.New("institution code already exists")
	ErrAdminEmailTaken    = errors.New("admin email already exists")
	ErrAdminNotFound      = errors.New("institution admin not found")
	ErrInvalidUserFilter  = errors.New("invalid user filter")
)

const (
	defaultUserListLimit = 50
	maxUserListLimit     = 500
)

// UserQuery filters the users of one institution. Empty fields match all.
type UserQuery struct {
	Role   string
	Status string
	Search string
	Limit  int
	Offset int
}

type CreateInstitutionRequest struct {
	Name           string
	Code           string
	EmailDomain    string
	AdminEmail     string
	Address        string
	Phone          string
	Website        string
	MaxUsers       int
	AdminFirstName string
	AdminLastName  string
}

// UpdateInstitutionRequest carries only the fields to change. Institution
// admins may change contact details; EmailDomain, AdminEmail and MaxUsers
// are reserved for super admins.
type UpdateInstitutionRequest struct {
	Name        *string
	Address     *string
	Phone       *string
	Website     *string
	EmailDomain *string
	AdminEmail  *string
	MaxUsers    *int
}

// CreatedInstitution is a new institution and its first admin account.
type CreatedInstitution struct {
	Institution domain.Institution
	Admin       domain.User
}

type InstitutionService struct {
	Store store.Store
	Mail  *MailService // nil skips the credentials mail
}

// Create registers an institution together with its admin account. The admin
// gets a generated password, must change it on first login and is mailed the
// credentials through the outbox.
func (s *InstitutionService) Create(ctx context.Context, p httpx.Principal, req CreateInstitutionRequest) (CreatedInstitution, error) {
	log := slogx.FromContext(ctx)

	if domain.Role(p.Role) != domain.RoleSuperAdmin {
		return CreatedInstitution{}, ErrForbidden
	}

	// 1. Required fields.
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	req.AdminEmail = strings.ToLower(strings.TrimSpace(req.AdminEmail))
	for _, f := range []struct{ name, value string }{
		{"name", req.Name},
		{"code", req.Code},
		{"email_domain", req.EmailDomain},
		{"admin_email", req.AdminEmail},
	} {
		if strings.TrimSpace(f.value) == "" {
			return CreatedInstitution{}, fmt.Errorf("%w: %s is required", ErrInvalidInstitution, f.name)
		}
	}
	if !strings.Contains(req.AdminEmail, "@") {
		return CreatedInstitution{}, fmt.Errorf("%w: invalid admin_email", ErrInvalidInstitution)
	}
	if req.MaxUsers < 0 {
		return CreatedInstitution{}, fmt.Errorf("%w: max_users must not be negative", ErrInvalidInstitution)
	}
	if req.MaxUsers == 0 {
		req.MaxUsers = domain.DefaultMaxUsers
	}

	// 2. Temporary admin password.
	password, err := cryptox.GeneratePassword()
	if err != nil {
		return CreatedInstitution{}, err
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return CreatedInstitution{}, fmt.Errorf("hash admin password: %w", err)
	}

	inst := domain.Institution{
		ID:          idx.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Code:        req.Code,
		EmailDomain: strings.ToLower(strings.TrimSpace(req.EmailDomain)),
		Address:     strings.TrimSpace(req.Address),
		Phone:       strings.TrimSpace(req.Phone),
		Website:     strings.TrimSpace(req.Website),
		AdminEmail:  req.AdminEmail,
		IsActive:    true,
		MaxUsers:    req.MaxUsers,
	}
	admin := domain.User{
		ID:                 idx.New().String(),
		Email:              req.AdminEmail,
		PasswordHash:       hash,
		Role:               domain.RoleInstitutionAdmin,
		Status:             domain.UserStatusActive,
		FirstName:          firstNonEmpty(strings.TrimSpace(req.AdminFirstName), "Admin"),
		LastName:           firstNonEmpty(strings.TrimSpace(req.AdminLastName), "User"),
		InstitutionID:      inst.ID,
		InvitedBy:          p.UserID,
		MustChangePassword: true,
	}

	// 3. Institution, admin and credentials mail in one transaction.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Institutions().GetInstitutionByCode(ctx, inst.Code); err == nil {
			return ErrInstitutionCode
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		taken, err := tx.Users().EmailExists(ctx, admin.Email)
		if err != nil {
			return err
		}
		if taken {
			return ErrAdminEmailTaken
		}

		if err := tx.Institutions().CreateInstitution(ctx, inst); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrInstitutionCode
			}
			return fmt.Errorf("create institution: %w", err)
		}

		username, err := uniqueUsername(ctx, tx, "admin_"+strings.ToLower(inst.Code))
		if err != nil {
			return err
		}
		admin.Username = username
		if err := tx.Users().CreateUser(ctx, admin); err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}

		if s.Mail == nil {
			return nil
		}
		return s.Mail.EnqueueAdminCredentials(ctx, tx, admin, password, inst.Name, false)
	})
	if err != nil {
		return CreatedInstitution{}, err
	}

	if s.Mail != nil {
		s.Mail.Kick()
	} else {
		log.Warn("no mailer configured, admin credentials were not sent",
			slog.String("institution_id", inst.ID),
			slog.String("admin_username", admin.Username),
		)
	}
	log.Info("institution created",
		slog.String("institution_id", inst.ID),
		slog.String("code", inst.Code),
		slog.String("admin_user_id", admin.ID),
	)

	admin.PasswordHash = ""
	return CreatedInstitution{Institution: inst, Admin: admin}, nil
}

// List returns every institution for super admins and only their own for
// institution admins.
func (s *InstitutionService) List(ctx context.Context, p httpx.Principal) ([]domain.Institution, error) {
	switch domain.Role(p.Role) {
	case domain.RoleSuperAdmin:
		return s.Store.Institutions().ListInstitutions(ctx)
	case domain.RoleInstitutionAdmin:
		inst, err := s.Get(ctx, p, p.InstitutionID)
		if err != nil {
			return nil, err
		}
		return []domain.Institution{inst}, nil
	}
	return nil, ErrForbidden
}

func (s *InstitutionService) Get(ctx context.Context, p httpx.Principal, id string) (domain.Institution, error) {
	if !canAccess(p, id) {
		return domain.Institution{}, ErrForbidden
	}
	inst, err := s.Store.Institutions().GetInstitutionByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Institution{}, ErrInstitutionNotFound
		}
		return domain.Institution{}, err
	}
	return inst, nil
}

func (s *InstitutionService) Update(
	ctx context.Context,
	p httpx.Principal,
	id string,
	req UpdateInstitutionRequest,
) (domain.Institution, error) {
	inst, err := s.Get(ctx, p, id)
	if err != nil {
		return domain.Institution{}, err
	}

	super := domain.Role(p.Role) == domain.RoleSuperAdmin
	if !super && (req.EmailDomain != nil || req.AdminEmail != nil || req.MaxUsers != nil) {
		return domain.Institution{}, ErrForbidden
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return domain.Institution{}, fmt.Errorf("%w: name is required", ErrInvalidInstitution)
		}
		inst.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		inst.Address = strings.TrimSpace(*req.Address)
	}
	if req.Phone != nil {
		inst.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Website != nil {
		inst.Website = strings.TrimSpace(*req.Website)
	}
	if req.EmailDomain != nil {
		inst.EmailDomain = strings.ToLower(strings.TrimSpace(*req.EmailDomain))
	}
	if req.AdminEmail != nil {
		inst.AdminEmail = strings.ToLower(strings.TrimSpace(*req.AdminEmail))
	}
	if req.MaxUsers != nil {
		if *req.MaxUsers < 1 {
			return domain.Institution{}, fmt.Errorf("%w: max_users must be positive", ErrInvalidInstitution)
		}
		inst.MaxUsers = *req.MaxUsers
	}

	if err := s.Store.Institutions().UpdateInstitution(ctx, inst); err != nil {
		return domain.Institution{}, err
	}
	slogx.FromContext(ctx).Info("institution updated",
		slog.String("institution_id", inst.ID),
		slog.String("updated_by", p.UserID),
	)
	return s.Get(ctx, p, id)
}

// SetActive enables or disables an institution. Invites of a disabled
// institution cannot be redeemed and it cannot import.
func (s *InstitutionService) SetActive(ctx context.Context, p httpx.Principal, id string, active bool) error {
	if domain.Role(p.Role) != domain.RoleSuperAdmin {
		return ErrForbidden
	}
	if err := s.Store.Institutions().SetInstitutionActive(ctx, id, active); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInstitutionNotFound
		}
		return err
	}
	slogx.FromContext(ctx).Info("institution activation changed",
		slog.String("institution_id", id),
		slog.Bool("active", active),
	)
	return nil
}

// ListUsers returns the accounts of an institution, newest first.
func (s *InstitutionService) ListUsers(ctx context.Context, p httpx.Principal, id string, q UserQuery) ([]domain.User, error) {
	if _, err := s.Get(ctx, p, id); err != nil {
		return nil, err
	}

	f := store.UserFilter{
		InstitutionID: id,
		Search:        strings.TrimSpace(q.Search),
		Limit:         q.Limit,
		Offset:        q.Offset,
	}
	switch r := domain.Role(q.Role); r {
	case "", "all":
	case domain.RoleInstitutionAdmin, domain.RoleAlumni, domain.RoleStudent:
		f.Role = r
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidUserFilter, q.Role)
	}
	switch st := domain.UserStatus(q.Status); st {
	case "", "all":
	case domain.UserStatusActive, domain.UserStatusInactive, domain.UserStatusSuspended:
		f.Status = st
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidUserFilter, q.Status)
	}
	if f.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrInvalidUserFilter)
	}
	switch {
	case f.Limit <= 0:
		f.Limit = defaultUserListLimit
	case f.Limit > maxUserListLimit:
		f.Limit = maxUserListLimit
	}

	users, err := s.Store.Users().ListUsers(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
		users[i].MFASecret = ""
	}
	return users, nil
}

// ResetAdminPassword gives the institution's admin a new generated password,
// forces a change on next login and mails the credentials. The admin is the
// account matching the institution's admin_email, falling back to the oldest
// institution admin.
func (s *InstitutionService) ResetAdminPassword(ctx context.Context, p httpx.Principal, id string) (domain.User, error) {
	if domain.Role(p.Role) != domain.RoleSuperAdmin {
		return domain.User{}, ErrForbidden
	}
	inst, err := s.Get(ctx, p, id)
	if err != nil {
		return domain.User{}, err
	}

	password, err := cryptox.GeneratePassword()
	if err != nil {
		return domain.User{}, err
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash admin password: %w", err)
	}

	var admin domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		admins, err := tx.Users().ListUsers(ctx, store.UserFilter{
			InstitutionID: inst.ID,
			Role:          domain.RoleInstitutionAdmin,
		})
		if err != nil {
			return err
		}
		if len(admins) == 0 {
			return ErrAdminNotFound
		}
		admin = admins[len(admins)-1]
		for _, u := range admins {
			if strings.EqualFold(u.Email, inst.AdminEmail) {
				admin = u
				break
			}
		}

		if err := tx.Users().UpdatePasswordHash(ctx, admin.ID, hash, true); err != nil {
			return fmt.Errorf("update admin password: %w", err)
		}
		if s.Mail == nil {
			return nil
		}
		return s.Mail.EnqueueAdminCredentials(ctx, tx, admin, password, inst.Name, true)
	})
	if err != nil {
		return domain.User{}, err
	}

	if s.Mail != nil {
		s.Mail.Kick()
	}
	slogx.FromContext(ctx).Info("institution admin password reset",
		slog.String("institution_id", inst.ID),
		slog.String("admin_user_id", admin.ID),
		slog.String("reset_by", p.UserID),
	)

	admin.PasswordHash = ""
	admin.MFASecret = ""
	admin.MustChangePassword = true
	return admin, nil
}
