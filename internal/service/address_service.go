package service

import (
	"sync"

	"github.com/shopizen/internal/constants"
	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/logger"
	"github.com/shopizen/internal/models"
)

// AddressService 地址簿：保存最近一次下单填写的信息
type AddressService struct {
	store    kvstore.Store
	identity IdentitySource

	mu sync.Mutex
}

// NewAddressService 创建地址簿服务
func NewAddressService(store kvstore.Store, identity IdentitySource) *AddressService {
	return &AddressService{store: store, identity: identity}
}

func (s *AddressService) currentKey() string {
	if s.identity == nil {
		return constants.GuestIdentityKey
	}
	return models.IdentityKey(s.identity.Current())
}

// Get 当前身份最近使用的地址，不存在时返回 nil
func (s *AddressService) Get() (*models.CustomerInfo, error) {
	return s.GetFor(s.currentKey())
}

// GetFor 指定身份最近使用的地址
func (s *AddressService) GetFor(identityKey string) (*models.CustomerInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var info models.CustomerInfo
	ok, err := kvstore.GetJSON(s.store, constants.AddressKeyPrefix+identityKey, &info)
	if err != nil {
		if isCorrupt(err) {
			logger.Warnw("address_snapshot_decode_failed", "identity_key", identityKey, "error", err)
			return nil, nil
		}
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &info, nil
}

// Save 保存当前身份地址
func (s *AddressService) Save(info models.CustomerInfo) error {
	return s.SaveFor(s.currentKey(), info)
}

// SaveFor 保存指定身份地址
func (s *AddressService) SaveFor(identityKey string, info models.CustomerInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := kvstore.SetJSON(s.store, constants.AddressKeyPrefix+identityKey, info); err != nil {
		return wrapStorageErr(err)
	}
	return nil
}
