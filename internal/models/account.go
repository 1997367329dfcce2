package models

import "time"

// Account 本地注册账号
type Account struct {
	ID           string    `json:"id"`                 // 账号ID
	Name         string    `json:"name"`               // 显示名称
	Email        string    `json:"email,omitempty"`    // 邮箱
	Mobile       string    `json:"mobile,omitempty"`   // 手机号
	Username     string    `json:"username,omitempty"` // 用户名
	Role         string    `json:"role"`               // 角色
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity 转换为会话身份
func (a Account) Identity() Identity {
	return Identity{
		ID:       a.ID,
		Name:     a.Name,
		Email:    a.Email,
		Mobile:   a.Mobile,
		Username: a.Username,
		Role:     a.Role,
	}
}
