package auth

import (
	"context"
	"testing"
	"time"

	"github.com/storefront-api/internal/domain"
	"github.com/storefront-api/internal/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

type mockLimiter struct{ mock.Mock }

func (m *mockLimiter) Allow(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

const secret = "test-secret"

func newTestService(ml *mockMailer, lim *mockLimiter) Service {
	deps := ServiceDeps{Secret: secret, AdminEmails: []string{"a@x.com"}, Mailer: ml}
	if lim != nil {
		deps.OTPLimiter = lim
	}
	return NewService(deps)
}

// otpCookie builds a valid OTP cookie for the given code.
func otpCookie(t *testing.T, email, code string, expiresAt time.Time) string {
	t.Helper()
	val, err := session.Encode(secret, session.OTPClaims{
		Email:     email,
		CodeHash:  session.Sign(secret, code),
		ExpiresAt: expiresAt.UnixMilli(),
	})
	require.NoError(t, err)
	return val
}

// --- RequestOTP ---

func TestRequestOTP_SendsMailAndReturnsCookie(t *testing.T) {
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, "u@x.com", "Your sign-in code", mock.Anything).Return(nil)

	svc := newTestService(ml, nil)
	cookie, err := svc.RequestOTP(context.Background(), RequestOTPRequest{Email: "u@x.com"})

	require.NoError(t, err)
	var claims session.OTPClaims
	require.NoError(t, session.Decode(secret, cookie, &claims))
	assert.Equal(t, "u@x.com", claims.Email)
	assert.NotEmpty(t, claims.CodeHash)
	assert.Greater(t, claims.ExpiresAt, time.Now().UnixMilli())
	ml.AssertExpectations(t)
}

func TestRequestOTP_InvalidEmail(t *testing.T) {
	svc := newTestService(&mockMailer{}, nil)
	_, err := svc.RequestOTP(context.Background(), RequestOTPRequest{Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestRequestOTP_MissingEmail(t *testing.T) {
	svc := newTestService(&mockMailer{}, nil)
	_, err := svc.RequestOTP(context.Background(), RequestOTPRequest{})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestRequestOTP_LimiterDenies(t *testing.T) {
	lim := &mockLimiter{}
	lim.On("Allow", mock.Anything, "u@x.com").Return(false, nil)

	svc := newTestService(&mockMailer{}, lim)
	_, err := svc.RequestOTP(context.Background(), RequestOTPRequest{Email: "u@x.com"})

	assert.ErrorIs(t, err, domain.ErrTooManyRequests)
}

func TestRequestOTP_LimiterDownDoesNotBlockLogin(t *testing.T) {
	lim := &mockLimiter{}
	lim.On("Allow", mock.Anything, "u@x.com").Return(false, assert.AnError)
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, "u@x.com", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(ml, lim)
	_, err := svc.RequestOTP(context.Background(), RequestOTPRequest{Email: "u@x.com"})

	require.NoError(t, err)
}

func TestRequestOTP_MailerFailurePropagates(t *testing.T) {
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, "u@x.com", mock.Anything, mock.Anything).Return(assert.AnError)

	svc := newTestService(ml, nil)
	_, err := svc.RequestOTP(context.Background(), RequestOTPRequest{Email: "u@x.com"})

	assert.ErrorIs(t, err, assert.AnError)
}

// --- VerifyOTP ---

func TestVerifyOTP_Success(t *testing.T) {
	svc := newTestService(&mockMailer{}, nil)
	cookie := otpCookie(t, "u@x.com", "123456", time.Now().Add(5*time.Minute))

	sid, user, err := svc.VerifyOTP(context.Background(), cookie, VerifyOTPRequest{Code: "123456", Name: "U"})

	require.NoError(t, err)
	assert.Equal(t, domain.SessionUser{Email: "u@x.com", Name: "U", Role: domain.RoleUser}, user)

	var p session.Payload
	require.NoError(t, session.Decode(secret, sid, &p))
	assert.Equal(t, "u@x.com", p.Email)
	assert.Equal(t, "U", p.Name)
	assert.NotZero(t, p.IssuedAt)
}

func TestVerifyOTP_NameDefaultsToLocalPart(t *testing.T) {
	svc := newTestService(&mockMailer{}, nil)
	cookie := otpCookie(t, "someone@x.com", "123456", time.Now().Add(time.Minute))

	_, user, err := svc.VerifyOTP(context.Background(), cookie, VerifyOTPRequest{Code: "123456"})

	require.NoError(t, err)
	assert.Equal(t, "someone", user.Name)
}

func TestVerifyOTP_SanitizesSubmittedCode(t *testing.T) {
	svc := newTestService(&mockMailer{}, nil)
	cookie := otpCookie(t, "u@x.com", "123456", time.Now().Add(time.Minute))

	_, _, err := svc.VerifyOTP(context.Background(), cookie, VerifyOTPRequest{Code: " 123 456 "})

	require.NoError(t, err)
}

func TestVerifyOTP_MissingCookie(t *testing.T) {
	svc := newTestService(&mockMailer{}, nil)
	_, _, err := svc.VerifyOTP(context.Background(), "", VerifyOTPRequest{Code: "123456"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Contains(t, err.Error(), ReasonOTPMissing)
}

func TestVerifyOTP_TamperedCookie(t *testing.T) {
	svc := newTestService(&mockMailer{}, nil)
	cookie := otpCookie(t, "u@x.com", "123456", time.Now().Add(time.Minute))

	_, _, err := svc.VerifyOTP(context.Background(), cookie+"x", VerifyOTPRequest{Code: "123456"})

	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Contains(t, err.Error(), ReasonOTPMissing)
}

func TestVerifyOTP_Expired(t *testing.T) {
	svc := newTestService(&mockMailer{}, nil)
	cookie := otpCookie(t, "u@x.com", "123456", time.Now().Add(-time.Second))

	_, _, err := svc.VerifyOTP(context.Background(), cookie, VerifyOTPRequest{Code: "123456"})

	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Contains(t, err.Error(), ReasonOTPExpired)
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	svc := newTestService(&mockMailer{}, nil)
	cookie := otpCookie(t, "u@x.com", "123456", time.Now().Add(time.Minute))

	_, _, err := svc.VerifyOTP(context.Background(), cookie, VerifyOTPRequest{Code: "654321"})

	require.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Contains(t, err.Error(), ReasonInvalidCode)
}

// --- Identify / IsAdmin ---

func sidCookie(t *testing.T, email, name string) string {
	t.Helper()
	val, err := session.Encode(secret, session.Payload{Email: email, Name: name, IssuedAt: time.Now().UnixMilli()})
	require.NoError(t, err)
	return val
}

func TestIdentify_ValidSession(t *testing.T) {
	svc := newTestService(&mockMailer{}, nil)

	user, ok := svc.Identify(sidCookie(t, "a@x.com", "Admin"))

	require.True(t, ok)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.Equal(t, "a@x.com", user.Email)
}

func TestIdentify_BadCookie(t *testing.T) {
	svc := newTestService(&mockMailer{}, nil)
	_, ok := svc.Identify("garbage")
	assert.False(t, ok)

	_, ok = svc.Identify("")
	assert.False(t, ok)
}

func TestIsAdmin_CaseInsensitiveMatch(t *testing.T) {
	svc := newTestService(&mockMailer{}, nil)

	check := svc.IsAdmin(sidCookie(t, "A@X.com", ""))

	assert.True(t, check.OK)
	assert.Equal(t, "a@x.com", check.Email)
}

func TestIsAdmin_RejectsNonMember(t *testing.T) {
	svc := newTestService(&mockMailer{}, nil)

	check := svc.IsAdmin(sidCookie(t, "B@X.com", ""))

	assert.False(t, check.OK)
	assert.NotEmpty(t, check.Reason)
}

func TestIsAdmin_RejectsMissingAndForged(t *testing.T) {
	svc := newTestService(&mockMailer{}, nil)

	assert.False(t, svc.IsAdmin("").OK)
	assert.False(t, svc.IsAdmin(sidCookie(t, "a@x.com", "")+"0").OK)
}
