package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopizen/internal/config"
	"github.com/shopizen/internal/constants"
	"github.com/shopizen/internal/kvstore"
)

func newAccountService() *AccountService {
	return NewAccountService(kvstore.NewMemoryStore(), AccountOptions{
		PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8, RequireNumber: true},
		EmailPolicy:    SessionPolicy{IdleMinutes: 20, AbsoluteHours: 8},
		MobilePolicy:   SessionPolicy{IdleMinutes: 15, AbsoluteHours: 8},
	})
}

func TestRegisterAndAuthenticateEmail(t *testing.T) {
	svc := newAccountService()
	account, err := svc.Register(RegisterInput{Name: "Asha", Email: " Asha@Example.com ", Password: "secret123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if account.Email != "asha@example.com" || account.PasswordHash != "" || account.Role != constants.RoleUser {
		t.Fatalf("unexpected account: %+v", account)
	}
	if _, err := svc.Register(RegisterInput{Name: "Other", Email: "asha@example.com", Password: "secret123"}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected duplicate email, got %v", err)
	}

	identity, policy, err := svc.AuthenticateEmail("ASHA@example.com", "secret123")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if identity.ID != account.ID || policy.IdleMinutes != 20 {
		t.Fatalf("unexpected identity=%+v policy=%+v", identity, policy)
	}
	if _, _, err := svc.AuthenticateEmail("asha@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newAccountService()
	if _, err := svc.Register(RegisterInput{Email: "a@example.com", Password: "secret123"}); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected name required, got %v", err)
	}
	if _, err := svc.Register(RegisterInput{Name: "A", Email: "not-an-email", Password: "secret123"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected invalid email, got %v", err)
	}
	_, err := svc.Register(RegisterInput{Name: "A", Email: "a@example.com", Password: "short"})
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected weak password, got %v", err)
	}
	var policyErr interface{ Key() string }
	if !errors.As(err, &policyErr) || policyErr.Key() != "error.password_min_length" {
		t.Fatalf("expected min length key, got %v", err)
	}
}

func TestAuthenticateMobileFindsOrCreates(t *testing.T) {
	svc := newAccountService()
	first, _, err := svc.AuthenticateMobile("9876543210")
	if err != nil {
		t.Fatalf("mobile login failed: %v", err)
	}
	second, _, _ := svc.AuthenticateMobile(" 9876543210 ")
	if first.ID == "" || first.ID != second.ID {
		t.Fatalf("expected the same account, got %s and %s", first.ID, second.ID)
	}
	if _, _, err := svc.AuthenticateMobile("12ab"); !errors.Is(err, ErrInvalidMobile) {
		t.Fatalf("expected invalid mobile, got %v", err)
	}
	accounts, _ := svc.List()
	if len(accounts) != 1 {
		t.Fatalf("expected one account, got %d", len(accounts))
	}
}

func TestEnsureDefaultAdminIsIdempotent(t *testing.T) {
	svc := newAccountService()
	cfg := config.AdminConfig{Email: "admin@example.com", Password: "admin123"}
	for i := 0; i < 2; i++ {
		if err := svc.EnsureDefaultAdmin(cfg); err != nil {
			t.Fatalf("ensure admin failed: %v", err)
		}
	}
	accounts, _ := svc.List()
	if len(accounts) != 1 || accounts[0].Role != constants.RoleAdmin {
		t.Fatalf("expected a single admin, got %+v", accounts)
	}
	identity, _, err := svc.AuthenticateEmail("admin@example.com", "admin123")
	if err != nil || !identity.IsAdmin() {
		t.Fatalf("expected admin identity, got %+v err=%v", identity, err)
	}
}

func TestClientTokenRoundTrip(t *testing.T) {
	clock := newFakeClock()
	svc := NewClientTokenService(config.ClientTokenConfig{SecretKey: "test-secret", ExpireHours: 1}, clock.Now)
	token, clientID, expiresAt, err := svc.Issue("")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if clientID == "" || !expiresAt.Equal(clock.Now().Add(time.Hour)) {
		t.Fatalf("unexpected issue result: %s %v", clientID, expiresAt)
	}
	parsed, err := svc.Parse(token)
	if err != nil || parsed != clientID {
		t.Fatalf("parse failed: %s err=%v", parsed, err)
	}

	other := NewClientTokenService(config.ClientTokenConfig{SecretKey: "other"}, clock.Now)
	if _, err := other.Parse(token); !errors.Is(err, ErrClientTokenInvalid) {
		t.Fatalf("expected signature failure, got %v", err)
	}
	clock.Advance(2 * time.Hour)
	if _, err := svc.Parse(token); !errors.Is(err, ErrClientTokenInvalid) {
		t.Fatalf("expected expiry failure, got %v", err)
	}
	if _, err := svc.Parse("  "); !errors.Is(err, ErrClientTokenInvalid) {
		t.Fatalf("expected empty token failure, got %v", err)
	}
}

func TestCaptchaVerify(t *testing.T) {
	disabled := NewCaptchaService(config.CaptchaConfig{Enabled: false})
	if err := disabled.Verify("", ""); err != nil {
		t.Fatalf("disabled captcha should pass, got %v", err)
	}

	svc := NewCaptchaService(config.CaptchaConfig{Enabled: true, Length: 4})
	challenge, err := svc.Generate()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if challenge.CaptchaID == "" || !strings.Contains(challenge.ImageBase64, "base64") {
		t.Fatalf("unexpected challenge: %+v", challenge.CaptchaID)
	}
	if err := svc.Verify(challenge.CaptchaID, ""); !errors.Is(err, ErrCaptchaRequired) {
		t.Fatalf("expected captcha required, got %v", err)
	}
	answer := svc.store.Get(challenge.CaptchaID, false)
	if err := svc.Verify(challenge.CaptchaID, answer); err != nil {
		t.Fatalf("expected valid captcha, got %v", err)
	}
	if err := svc.Verify(challenge.CaptchaID, answer); !errors.Is(err, ErrCaptchaInvalid) {
		t.Fatalf("captcha must be single use, got %v", err)
	}
}
