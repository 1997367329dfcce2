package models

import "time"

// SessionMeta 会话过期信息（毫秒时间戳）
type SessionMeta struct {
	IdleExpiresAt     int64 `json:"idleExpiresAt"`
	AbsoluteExpiresAt int64 `json:"absoluteExpiresAt"`
	IdleMinutes       int   `json:"idleMinutes,omitempty"` // 续期使用的空闲时长
}

// Expired 当前时间达到任一过期点即视为过期
func (m SessionMeta) Expired(now time.Time) bool {
	ms := now.UnixMilli()
	return ms >= m.IdleExpiresAt || ms >= m.AbsoluteExpiresAt
}

// StoredSession 持久化的会话记录
type StoredSession struct {
	User *Identity   `json:"user"`
	Meta SessionMeta `json:"meta"`
}

// Valid 记录结构是否完整
func (s StoredSession) Valid() bool {
	return s.User != nil && s.Meta.IdleExpiresAt > 0 && s.Meta.AbsoluteExpiresAt > 0
}
