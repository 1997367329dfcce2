package models

import (
	"strings"

	"github.com/shopizen/internal/constants"
)

// Identity 已登录用户身份（游客用 nil 表示）
type Identity struct {
	ID       string `json:"id,omitempty"`       // 账号ID
	Name     string `json:"name,omitempty"`     // 显示名称
	Email    string `json:"email,omitempty"`    // 邮箱
	Mobile   string `json:"mobile,omitempty"`   // 手机号
	Username string `json:"username,omitempty"` // 用户名
	Role     string `json:"role,omitempty"`     // 角色 user/admin
}

// HasLoginHandle 是否携带至少一个登录标识
func (i *Identity) HasLoginHandle() bool {
	if i == nil {
		return false
	}
	return strings.TrimSpace(i.Email) != "" ||
		strings.TrimSpace(i.Mobile) != "" ||
		strings.TrimSpace(i.Username) != ""
}

// IsAdmin 是否管理员
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == constants.RoleAdmin
}

// DisplayName 欢迎语使用的名称，依次取名称、邮箱、用户名、手机号
func (i *Identity) DisplayName() string {
	if i == nil {
		return ""
	}
	for _, candidate := range []string{i.Name, i.Email, i.Username, i.Mobile} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// IdentityKey 解析身份对应的存储命名空间
// 优先级 id > email > mobile > username，游客固定为 guest
func IdentityKey(identity *Identity) string {
	if identity == nil {
		return constants.GuestIdentityKey
	}
	for _, candidate := range []string{identity.ID, identity.Email, identity.Mobile, identity.Username} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return constants.GuestIdentityKey
}

// SameIdentity 判断两个身份是否指向同一命名空间
func SameIdentity(a, b *Identity) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return IdentityKey(a) == IdentityKey(b)
}
