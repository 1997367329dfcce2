package kvstore

import (
	"fmt"

	"github.com/shopizen/internal/repository"
)

// DatabaseStore 基于 kv_entries 表的存储
type DatabaseStore struct {
	repo repository.KVRepository
}

// NewDatabaseStore 创建数据库存储
func NewDatabaseStore(repo repository.KVRepository) *DatabaseStore {
	return &DatabaseStore{repo: repo}
}

func (s *DatabaseStore) Get(key string) (string, bool, error) {
	entry, err := s.repo.Get(key)
	if err != nil {
		return "", false, fmt.Errorf("load %s failed: %w", key, err)
	}
	if entry == nil {
		return "", false, nil
	}
	return entry.Value, true, nil
}

func (s *DatabaseStore) Set(key, value string) error {
	if err := s.repo.Upsert(key, value); err != nil {
		return fmt.Errorf("save %s failed: %w", key, err)
	}
	return nil
}

func (s *DatabaseStore) Remove(key string) error {
	if err := s.repo.Delete(key); err != nil {
		return fmt.Errorf("remove %s failed: %w", key, err)
	}
	return nil
}

func (s *DatabaseStore) Keys() ([]string, error) {
	return s.repo.ListKeys("")
}

// KeysWithPrefix 由数据库完成前缀过滤
func (s *DatabaseStore) KeysWithPrefix(prefix string) ([]string, error) {
	return s.repo.ListKeys(prefix)
}

// Purge 删除某个前缀下的全部键
func (s *DatabaseStore) Purge(prefix string) error {
	_, err := s.repo.DeleteByPrefix(prefix)
	return err
}
