package service

import (
	"unicode"

	"github.com/shopizen/internal/config"
)

// passwordPolicyError 携带 i18n key 的密码策略错误
type passwordPolicyError struct {
	key  string
	args []interface{}
}

func (e passwordPolicyError) Error() string {
	return e.key
}

func (e passwordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

func (e passwordPolicyError) Key() string {
	return e.key
}

func (e passwordPolicyError) Args() []interface{} {
	return e.args
}

type passwordTraits struct {
	upper, lower, number, special bool
	length                        int
}

func inspectPassword(password string) passwordTraits {
	traits := passwordTraits{length: len([]rune(password))}
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			traits.upper = true
		case unicode.IsLower(r):
			traits.lower = true
		case unicode.IsDigit(r):
			traits.number = true
		case !unicode.IsSpace(r):
			traits.special = true
		}
	}
	return traits
}

// validatePassword 按配置顺序返回第一个不满足的规则
func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	traits := inspectPassword(password)
	if policy.MinLength > 0 && traits.length < policy.MinLength {
		return passwordPolicyError{key: "error.password_min_length", args: []interface{}{policy.MinLength}}
	}
	checks := []struct {
		required bool
		ok       bool
		key      string
	}{
		{policy.RequireUpper, traits.upper, "error.password_require_upper"},
		{policy.RequireLower, traits.lower, "error.password_require_lower"},
		{policy.RequireNumber, traits.number, "error.password_require_number"},
		{policy.RequireSpecial, traits.special, "error.password_require_special"},
	}
	for _, check := range checks {
		if check.required && !check.ok {
			return passwordPolicyError{key: check.key}
		}
	}
	return nil
}
