package alumnetsdk

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/alumnet/pkg/jwtx"
)

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	// Error is a short machine readable code (e.g., "invalid_request", "forbidden")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`

	// Errors lists rejected spreadsheet rows when an upload has no valid records
	Errors []RowError `json:"errors,omitempty"`
}

// ValidationErrorResponse is returned when request validation fails on
// several fields at once, typically from the bootstrap endpoint.
type ValidationErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Year
// ============================================================================

// Year is a graduation year sent either as a JSON number or a string. The
// server decides whether the text is a valid year.
type Year string

func (y *Year) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*y = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*y = Year(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*y = Year(n.String())
	return nil
}

// YearOf formats an integer year.
func YearOf(year int) Year { return Year(strconv.Itoa(year)) }

// ============================================================================
// Account Creation Types
// ============================================================================

type ValidateInviteRequest struct {
	Token string `json:"token" example:"mK3x..."`
}

// InviteInfo is what an invitee may learn about their invite before signing up.
type InviteInfo struct {
	Email           string    `json:"email"`
	UserType        string    `json:"user_type" example:"alumni"`
	GraduationYear  *int      `json:"graduation_year,omitempty"`
	Department      string    `json:"department,omitempty"`
	InstitutionName string    `json:"institution_name"`
	TokenExpires    time.Time `json:"token_expires"`
}

type ValidateInviteResponse struct {
	InviteInfo InviteInfo `json:"invite_info"`
}

type VerifyGraduationRequest struct {
	Token          string `json:"token"`
	GraduationYear Year   `json:"graduation_year" swaggertype:"string" example:"2019"`
}

type CreateAccountRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	GraduationYear  Year   `json:"graduation_year" swaggertype:"string" example:"2019"`
}

type CreateAccountResponse struct {
	User     UserResponse `json:"user"`
	UserType string       `json:"user_type"`
	Message  string       `json:"message"`
}

// ============================================================================
// User Types
// ============================================================================

// UserResponse is a platform account without credentials.
type UserResponse struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	Role               string     `json:"role" example:"alumni"`
	Status             string     `json:"status" example:"active"`
	FirstName          string     `json:"first_name,omitempty"`
	LastName           string     `json:"last_name,omitempty"`
	InstitutionID      string     `json:"institution_id,omitempty"`
	MustChangePassword bool       `json:"must_change_password"`
	MFAEnabled         bool       `json:"mfa_enabled"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// MeResponse is the signed-in user and, for alumni and students, their profile.
type MeResponse struct {
	User    UserResponse    `json:"user"`
	Profile json.RawMessage `json:"profile,omitempty" swaggertype:"object"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

// ============================================================================
// Profile Types
// ============================================================================

type ProfileResponse struct {
	UserType  string          `json:"user_type" example:"alumni"`
	Profile   json.RawMessage `json:"profile" swaggertype:"object"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// UpdateProfileRequest changes only the fields present. Names, email,
// department, years and identifiers come from the invite and cannot change.
type UpdateProfileRequest struct {
	Major  *string   `json:"major,omitempty"`
	Minor  *string   `json:"minor,omitempty"`
	Phone  *string   `json:"phone,omitempty"`
	Bio    *string   `json:"bio,omitempty"`
	Skills *[]string `json:"skills,omitempty"`

	// alumni only
	GraduationMonth *int    `json:"graduation_month,omitempty"`
	DegreeType      *string `json:"degree_type,omitempty"`
	CurrentPosition *string `json:"current_position,omitempty"`
	CurrentCompany  *string `json:"current_company,omitempty"`
	Location        *string `json:"location,omitempty"`
	LinkedInURL     *string `json:"linkedin_url,omitempty"`

	// students only
	CurrentYear     *int      `json:"current_year,omitempty"`
	CurrentSemester *string   `json:"current_semester,omitempty"`
	Address         *string   `json:"address,omitempty"`
	Interests       *[]string `json:"interests,omitempty"`
	CareerInterests *[]string `json:"career_interests,omitempty"`
}

// ============================================================================
// Authentication Types
// ============================================================================

type LoginRequest struct {
	// Login is a username or an email address
	Login    string `json:"login" example:"jane.doe"`
	Password string `json:"password"`
	OTPCode  string `json:"otp_code,omitempty" example:"123456"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type" example:"Bearer"`
	ExpiresIn   int          `json:"expires_in" example:"3600"`
	User        UserResponse `json:"user"`
}

type ChangePasswordRequest struct {
	Username        string `json:"username"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ============================================================================
// MFA Types
// ============================================================================

type TOTPEnrollResponse struct {
	Secret     string `json:"secret" example:"JBSWY3DPEHPK3PXP"`
	OTPAuthURL string `json:"otpauth_url"`
	Issuer     string `json:"issuer"`
	Account    string `json:"account"`
}

type TOTPCodeRequest struct {
	Code string `json:"code" example:"123456"`
}

// ============================================================================
// Bulk Import Types
// ============================================================================

// RowError is one spreadsheet row rejected by validation (header is row 1).
type RowError struct {
	RowNumber int      `json:"row_number"`
	Email     string   `json:"email,omitempty"`
	Errors    []string `json:"errors"`
}

// IssueError is a valid row for which no invite could be issued.
type IssueError struct {
	RowNumber int    `json:"row_number"`
	Email     string `json:"email"`
	Error     string `json:"error"`
}

type ErrorLog struct {
	DataValidationErrors []RowError   `json:"data_validation_errors"`
	InviteCreationErrors []IssueError `json:"invite_creation_errors"`
	Failure              string       `json:"failure,omitempty"`
}

type UploadSummary struct {
	TotalRecords         int `json:"total_records"`
	SuccessfulRecords    int `json:"successful_records"`
	FailedRecords        int `json:"failed_records"`
	InvitationEmailsSent int `json:"invitation_emails_sent"`
}

type UploadResponse struct {
	BatchID string        `json:"batch_id"`
	Status  string        `json:"status" example:"completed"`
	Summary UploadSummary `json:"summary"`
	Errors  []RowError    `json:"errors"`
	Message string        `json:"message"`
}

type MailStats struct {
	Queued int `json:"queued"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type BatchResponse struct {
	ID                string     `json:"id"`
	InstitutionID     string     `json:"institution_id"`
	UserType          string     `json:"batch_type" example:"alumni"`
	Filename          string     `json:"filename"`
	TotalRecords      int        `json:"total_records"`
	ProcessedRecords  int        `json:"processed_records"`
	SuccessfulRecords int        `json:"successful_records"`
	FailedRecords     int        `json:"failed_records"`
	Status            string     `json:"status" example:"completed"`
	ErrorLog          *ErrorLog  `json:"error_log,omitempty"`
	UploadedBy        string     `json:"uploaded_by"`
	UploadedAt        time.Time  `json:"uploaded_at"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty"`
	Mail              *MailStats `json:"mail,omitempty"`
}

type BatchStatusResponse struct {
	Batch BatchResponse `json:"batch"`
}

type BatchListResponse struct {
	Batches []BatchResponse `json:"batches"`
}

// ============================================================================
// Invite Types
// ============================================================================

type CreateInviteRequest struct {
	// InstitutionID is required for super admins and ignored for institution admins
	InstitutionID  string          `json:"institution_id,omitempty"`
	Email          string          `json:"email"`
	UserType       string          `json:"user_type" example:"alumni"`
	GraduationYear *int            `json:"graduation_year,omitempty"`
	Identifier     string          `json:"identifier,omitempty"`
	Department     string          `json:"department,omitempty"`
	Profile        json.RawMessage `json:"profile_data,omitempty" swaggertype:"object"`
}

type InviteResponse struct {
	ID             string     `json:"id"`
	InstitutionID  string     `json:"institution_id"`
	Email          string     `json:"email"`
	UserType       string     `json:"user_type"`
	GraduationYear *int       `json:"graduation_year,omitempty"`
	Identifier     string     `json:"identifier,omitempty"`
	Department     string     `json:"department,omitempty"`
	State          string     `json:"state" example:"active"`
	ExpiresAt      time.Time  `json:"expires_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UsedAt         *time.Time `json:"used_at,omitempty"`
	CreatedBy      string     `json:"created_by,omitempty"`
	UsedBy         string     `json:"used_by,omitempty"`
	BatchID        string     `json:"batch_id,omitempty"`
}

type InviteListResponse struct {
	Invites []InviteResponse `json:"invites"`
}

// ============================================================================
// Institution Types
// ============================================================================

type CreateInstitutionRequest struct {
	Name           string `json:"name"`
	Code           string `json:"code" example:"UNSW"`
	EmailDomain    string `json:"email_domain,omitempty"`
	AdminEmail     string `json:"admin_email"`
	AdminFirstName string `json:"admin_first_name,omitempty"`
	AdminLastName  string `json:"admin_last_name,omitempty"`
	Address        string `json:"address,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Website        string `json:"website,omitempty"`
	MaxUsers       int    `json:"max_users,omitempty" example:"10000"`
}

// UpdateInstitutionRequest changes only the fields that are present.
type UpdateInstitutionRequest struct {
	Name        *string `json:"name,omitempty"`
	Address     *string `json:"address,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Website     *string `json:"website,omitempty"`
	EmailDomain *string `json:"email_domain,omitempty"`
	AdminEmail  *string `json:"admin_email,omitempty"`
	MaxUsers    *int    `json:"max_users,omitempty"`
}

type InstitutionResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	EmailDomain string    `json:"email_domain,omitempty"`
	Address     string    `json:"address,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Website     string    `json:"website,omitempty"`
	AdminEmail  string    `json:"admin_email"`
	IsActive    bool      `json:"is_active"`
	MaxUsers    int       `json:"max_users"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateInstitutionResponse returns the new institution and its admin. The
// admin's temporary password is only ever sent by mail.
type CreateInstitutionResponse struct {
	Institution InstitutionResponse `json:"institution"`
	Admin       UserResponse        `json:"admin"`
}

type InstitutionListResponse struct {
	Institutions []InstitutionResponse `json:"institutions"`
}

// ============================================================================
// Bootstrap Types
// ============================================================================

type BootstrapRequest struct {
	Username  string `json:"username" example:"root"`
	Email     string `json:"email" example:"ops@alumnet.example"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type BootstrapResponse struct {
	AdminUserID string `json:"admin_user_id"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz (readyz adds Checks).
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database,omitempty"`
	Schema   string `json:"schema,omitempty" example:"v1"`
	Signer   string `json:"signer,omitempty"`

	// Workers maps each background worker (mail, housekeeping) to "ok" or
	// "stopped". Reported by /livez.
	Workers map[string]string `json:"workers,omitempty"`
}

// ============================================================================
// JWKS Types
// ============================================================================

// JWKSResponse holds the public keys that verify access tokens.
type JWKSResponse jwtx.JWKS
