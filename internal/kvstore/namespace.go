package kvstore

import (
	"fmt"
	"strings"

	"github.com/shopizen/internal/constants"
)

// prefixLister 支持服务端前缀过滤的后端
type prefixLister interface {
	KeysWithPrefix(prefix string) ([]string, error)
}

// NamespacedStore 为单个客户端隔离键空间
type NamespacedStore struct {
	base   Store
	prefix string
}

// Namespace 按客户端 ID 包装存储，键统一加 client:<id>: 前缀
func Namespace(base Store, clientID string) *NamespacedStore {
	return &NamespacedStore{base: base, prefix: fmt.Sprintf(constants.ClientNamespaceFmt, clientID)}
}

// Prefix 返回命名空间前缀
func (s *NamespacedStore) Prefix() string {
	return s.prefix
}

func (s *NamespacedStore) Get(key string) (string, bool, error) {
	return s.base.Get(s.prefix + key)
}

func (s *NamespacedStore) Set(key, value string) error {
	return s.base.Set(s.prefix+key, value)
}

func (s *NamespacedStore) Remove(key string) error {
	return s.base.Remove(s.prefix + key)
}

// Keys 仅返回本命名空间下的键（已去除前缀）
func (s *NamespacedStore) Keys() ([]string, error) {
	var (
		keys []string
		err  error
	)
	if lister, ok := s.base.(prefixLister); ok {
		keys, err = lister.KeysWithPrefix(s.prefix)
	} else {
		keys, err = KeysWithPrefix(s.base, s.prefix)
	}
	if err != nil {
		return nil, err
	}
	result := make([]string, 0, len(keys))
	for _, key := range keys {
		if strings.HasPrefix(key, s.prefix) {
			result = append(result, strings.TrimPrefix(key, s.prefix))
		}
	}
	return result, nil
}
