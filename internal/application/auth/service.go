package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/infrastructure/resend"
	"github.com/storefront-api/internal/pkg/session"
	"github.com/storefront-api/internal/pkg/validate"
)

const (
	otpTTL     = 10 * time.Minute
	SessionTTL = 90 * 24 * time.Hour
)

// Verification failure reasons. These are the exact strings returned to the
// client, so changing one breaks login flows that match on them.
const (
	ReasonOTPMissing  = "OTP missing"
	ReasonOTPExpired  = "OTP expired"
	ReasonInvalidCode = "invalid code"
)

type RequestOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

type VerifyOTPRequest struct {
	Code string `json:"code" validate:"required"`
	Name string `json:"name"`
}

// OTPLimiter caps code issuance per address.
type OTPLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
}

type Service interface {
	// RequestOTP generates a one-time code, mails it, and returns the OTP
	// cookie value holding the code's keyed hash and expiry.
	RequestOTP(ctx context.Context, req RequestOTPRequest) (otpCookie string, err error)
	// VerifyOTP consumes the OTP cookie and, on success, returns the
	// long-lived session cookie value and the identity it asserts.
	VerifyOTP(ctx context.Context, rawOTPCookie string, req VerifyOTPRequest) (sidCookie string, user domain.SessionUser, err error)
	// Identify verifies a session cookie and resolves the user's role.
	Identify(rawSIDCookie string) (domain.SessionUser, bool)
	// IsAdmin is the admin authorization gate.
	IsAdmin(rawSIDCookie string) domain.AdminCheck
}

type ServiceDeps struct {
	Secret      string
	AdminEmails []string
	Mailer      resend.Mailer
	OTPLimiter  OTPLimiter
}

type service struct {
	secret string
	admins map[string]bool
	mailer resend.Mailer
	limit  OTPLimiter
}

func NewService(deps ServiceDeps) Service {
	admins := make(map[string]bool, len(deps.AdminEmails))
	for _, e := range deps.AdminEmails {
		admins[strings.ToLower(e)] = true
	}
	return &service{secret: deps.Secret, admins: admins, mailer: deps.Mailer, limit: deps.OTPLimiter}
}

func (s *service) RequestOTP(ctx context.Context, req RequestOTPRequest) (string, error) {
	if err := validate.Struct(req); err != nil {
		return "", fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}

	if s.limit != nil {
		ok, err := s.limit.Allow(ctx, req.Email)
		if err != nil {
			// The ledger being down must not lock everyone out of login.
			slog.Warn("otp limiter unavailable", "err", err)
		} else if !ok {
			return "", fmt.Errorf("too many codes requested for this address: %w", domain.ErrTooManyRequests)
		}
	}

	code, err := newCode()
	if err != nil {
		return "", err
	}

	cookie, err := session.Encode(s.secret, session.OTPClaims{
		Email:     req.Email,
		CodeHash:  session.Sign(s.secret, code),
		ExpiresAt: time.Now().Add(otpTTL).UnixMilli(),
	})
	if err != nil {
		return "", err
	}

	body := fmt.Sprintf("Your code is %s. It expires in %d minutes.", code, int(otpTTL.Minutes()))
	if err := s.mailer.SendEmail(ctx, req.Email, "Your sign-in code", body); err != nil {
		return "", err
	}
	return cookie, nil
}

func (s *service) VerifyOTP(ctx context.Context, rawOTPCookie string, req VerifyOTPRequest) (string, domain.SessionUser, error) {
	var user domain.SessionUser

	if rawOTPCookie == "" {
		return "", user, fmt.Errorf("%s: %w", ReasonOTPMissing, domain.ErrUnauthorized)
	}
	var claims session.OTPClaims
	if err := session.Decode(s.secret, rawOTPCookie, &claims); err != nil {
		// An unreadable cookie is treated the same as an absent one.
		return "", user, fmt.Errorf("%s: %w", ReasonOTPMissing, domain.ErrUnauthorized)
	}
	if time.Now().UnixMilli() > claims.ExpiresAt {
		return "", user, fmt.Errorf("%s: %w", ReasonOTPExpired, domain.ErrUnauthorized)
	}
	if session.Sign(s.secret, digitsOnly(req.Code)) != claims.CodeHash {
		return "", user, fmt.Errorf("%s: %w", ReasonInvalidCode, domain.ErrUnauthorized)
	}

	name := req.Name
	if name == "" {
		name = localPart(claims.Email)
	}
	sid, err := session.Encode(s.secret, session.Payload{
		Email:    claims.Email,
		Name:     name,
		IssuedAt: time.Now().UnixMilli(),
	})
	if err != nil {
		return "", user, err
	}

	user = domain.SessionUser{Email: claims.Email, Name: name, Role: s.role(claims.Email)}
	return sid, user, nil
}

func (s *service) Identify(rawSIDCookie string) (domain.SessionUser, bool) {
	if rawSIDCookie == "" {
		return domain.SessionUser{}, false
	}
	var p session.Payload
	if err := session.Decode(s.secret, rawSIDCookie, &p); err != nil {
		return domain.SessionUser{}, false
	}
	return domain.SessionUser{Email: p.Email, Name: p.Name, Role: s.role(p.Email)}, true
}

func (s *service) IsAdmin(rawSIDCookie string) domain.AdminCheck {
	if rawSIDCookie == "" {
		return domain.AdminCheck{Reason: "no session cookie"}
	}
	var p session.Payload
	if err := session.Decode(s.secret, rawSIDCookie, &p); err != nil {
		return domain.AdminCheck{Reason: "bad signature"}
	}
	email := strings.ToLower(p.Email)
	if !s.admins[email] {
		return domain.AdminCheck{Email: email, Reason: "not on the admin list"}
	}
	return domain.AdminCheck{OK: true, Email: email}
}

func (s *service) role(email string) string {
	if s.admins[strings.ToLower(email)] {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}

// newCode draws one uniform integer in [0, 1000000) and zero-pads it, so
// every 6-digit code is equally likely.
func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// digitsOnly strips whitespace and formatting the user may have pasted along
// with the code. Not a security boundary.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
