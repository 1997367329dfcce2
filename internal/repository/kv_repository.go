package repository

import (
	"errors"

	"github.com/shopizen/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVRepository 键值数据访问接口
type KVRepository interface {
	Get(key string) (*models.KVEntry, error)
	Upsert(key, value string) error
	Delete(key string) error
	ListKeys(prefix string) ([]string, error)
	DeleteByPrefix(prefix string) (int64, error)
}

// GormKVRepository GORM 实现
type GormKVRepository struct {
	db *gorm.DB
}

// NewKVRepository 创建键值仓库
func NewKVRepository(db *gorm.DB) *GormKVRepository {
	return &GormKVRepository{db: db}
}

// Get 根据键获取记录，不存在返回 nil
func (r *GormKVRepository) Get(key string) (*models.KVEntry, error) {
	var entry models.KVEntry
	if err := r.db.Where("key = ?", key).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// Upsert 写入整条记录，键冲突时覆盖值
func (r *GormKVRepository) Upsert(key, value string) error {
	entry := models.KVEntry{Key: key, Value: value}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

// Delete 删除记录，不存在时不报错
func (r *GormKVRepository) Delete(key string) error {
	return r.db.Where("key = ?", key).Delete(&models.KVEntry{}).Error
}

// ListKeys 按前缀列出键，前缀为空时列出全部
func (r *GormKVRepository) ListKeys(prefix string) ([]string, error) {
	query := r.db.Model(&models.KVEntry{})
	if prefix != "" {
		query = query.Where(prefixLikeCondition(r.db, "key"), prefixLikePattern(prefix))
	}
	var keys []string
	if err := query.Order("key asc").Pluck("key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// DeleteByPrefix 按前缀批量删除
func (r *GormKVRepository) DeleteByPrefix(prefix string) (int64, error) {
	if prefix == "" {
		return 0, errors.New("prefix is required")
	}
	result := r.db.Where(prefixLikeCondition(r.db, "key"), prefixLikePattern(prefix)).Delete(&models.KVEntry{})
	return result.RowsAffected, result.Error
}
