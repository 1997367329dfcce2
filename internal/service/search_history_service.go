package service

import (
	"strings"
	"sync"

	"github.com/shopizen/internal/constants"
	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/models"
)

const defaultSearchHistoryMax = 10

// SearchHistoryService 搜索历史：最近在前，按词频计数
type SearchHistoryService struct {
	store    kvstore.Store
	maxItems int

	mu sync.Mutex
}

// NewSearchHistoryService 创建搜索历史服务
func NewSearchHistoryService(store kvstore.Store, maxItems int) *SearchHistoryService {
	if maxItems <= 0 {
		maxItems = defaultSearchHistoryMax
	}
	return &SearchHistoryService{store: store, maxItems: maxItems}
}

// List 搜索历史
func (s *SearchHistoryService) List() ([]models.SearchTerm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadList[models.SearchTerm](s.store, constants.SearchHistoryKey, "search_history_decode_failed")
}

// Record 记录一次搜索：忽略大小写去重，移到最前并累加次数
func (s *SearchHistoryService) Record(term string) ([]models.SearchTerm, error) {
	term = strings.Join(strings.Fields(term), " ")
	if term == "" {
		return s.List()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := loadList[models.SearchTerm](s.store, constants.SearchHistoryKey, "search_history_decode_failed")
	if err != nil {
		return nil, err
	}
	entry := models.SearchTerm{Term: term, Count: 1}
	next := make([]models.SearchTerm, 0, len(items)+1)
	for _, item := range items {
		if strings.EqualFold(item.Term, term) {
			entry.Count = item.Count + 1
			continue
		}
		next = append(next, item)
	}
	next = append([]models.SearchTerm{entry}, next...)
	if len(next) > s.maxItems {
		next = next[:s.maxItems]
	}
	if err := saveList(s.store, constants.SearchHistoryKey, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Remove 删除一条搜索记录
func (s *SearchHistoryService) Remove(term string) ([]models.SearchTerm, error) {
	term = strings.TrimSpace(term)
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := loadList[models.SearchTerm](s.store, constants.SearchHistoryKey, "search_history_decode_failed")
	if err != nil {
		return nil, err
	}
	next := items[:0]
	for _, item := range items {
		if !strings.EqualFold(item.Term, term) {
			next = append(next, item)
		}
	}
	if err := saveList(s.store, constants.SearchHistoryKey, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Clear 清空搜索历史
func (s *SearchHistoryService) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveList(s.store, constants.SearchHistoryKey, []models.SearchTerm{})
}
