// Package catalog 提供只读商品目录。
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopizen/internal/models"
)

//go:embed fixtures/products.json
var defaultFixture []byte

// ErrProductNotFound 商品不存在
var ErrProductNotFound = errors.New("product not found")

// Query 商品列表筛选条件
type Query struct {
	Category string
	Brand    string
	Keyword  string
}

// Provider 商品目录接口
type Provider interface {
	List(query Query) []models.Product
	Get(id uint) (models.Product, error)
}

// StaticCatalog 基于 JSON 夹具的商品目录，加载后只读
type StaticCatalog struct {
	products []models.Product
	byID     map[uint]int
}

// Load 从文件加载商品目录，路径为空时使用内置数据
func Load(fixturePath string) (*StaticCatalog, error) {
	raw := defaultFixture
	if path := strings.TrimSpace(fixturePath); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog fixture failed: %w", err)
		}
		raw = content
	}
	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("decode catalog fixture failed: %w", err)
	}
	return New(products), nil
}

// New 使用给定商品构造目录
func New(products []models.Product) *StaticCatalog {
	sorted := make([]models.Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	byID := make(map[uint]int, len(sorted))
	for idx, product := range sorted {
		byID[product.ID] = idx
	}
	return &StaticCatalog{products: sorted, byID: byID}
}

// List 按条件筛选商品
func (c *StaticCatalog) List(query Query) []models.Product {
	category := strings.ToLower(strings.TrimSpace(query.Category))
	brand := strings.ToLower(strings.TrimSpace(query.Brand))
	keyword := strings.ToLower(strings.TrimSpace(query.Keyword))

	result := make([]models.Product, 0, len(c.products))
	for _, product := range c.products {
		if category != "" && strings.ToLower(product.Category) != category {
			continue
		}
		if brand != "" && strings.ToLower(product.Brand) != brand {
			continue
		}
		if keyword != "" && !matchesKeyword(product, keyword) {
			continue
		}
		result = append(result, product)
	}
	return result
}

// Get 按 ID 获取商品
func (c *StaticCatalog) Get(id uint) (models.Product, error) {
	idx, ok := c.byID[id]
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	return c.products[idx], nil
}

func matchesKeyword(product models.Product, keyword string) bool {
	for _, field := range []string{product.Name, product.Brand, product.Category, product.Description} {
		if strings.Contains(strings.ToLower(field), keyword) {
			return true
		}
	}
	return false
}
