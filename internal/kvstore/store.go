// Package kvstore 提供持久化键值存储抽象，所有状态服务通过它读写整份快照。
package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrCorruptValue 存储值无法解码
var ErrCorruptValue = errors.New("kvstore: corrupt value")

// Store 同步键值存储
// 值均为字符串（通常为 JSON），写入为整值覆盖
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Keys() ([]string, error)
}

// GetJSON 读取并解码 JSON 值
// 键不存在返回 (false, nil)；值无法解码返回 (false, ErrCorruptValue)
func GetJSON(store Store, key string, dest interface{}) (bool, error) {
	raw, ok, err := store.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if strings.TrimSpace(raw) == "" {
		return false, fmt.Errorf("%w: %s is empty", ErrCorruptValue, key)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorruptValue, key, err)
	}
	return true, nil
}

// SetJSON 编码并整值写入
func SetJSON(store Store, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s failed: %w", key, err)
	}
	return store.Set(key, string(payload))
}

// KeysWithPrefix 列出带指定前缀的键（升序）
func KeysWithPrefix(store Store, prefix string) ([]string, error) {
	keys, err := store.Keys()
	if err != nil {
		return nil, err
	}
	matched := make([]string, 0, len(keys))
	for _, key := range keys {
		if strings.HasPrefix(key, prefix) {
			matched = append(matched, key)
		}
	}
	sort.Strings(matched)
	return matched, nil
}
