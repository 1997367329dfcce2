package models

// Product 商品快照（来自静态商品目录）
type Product struct {
	ID          uint     `json:"id"`                    // 商品ID
	Name        string   `json:"name"`                  // 名称
	Brand       string   `json:"brand,omitempty"`       // 品牌
	Category    string   `json:"category,omitempty"`    // 分类
	Description string   `json:"description,omitempty"` // 描述
	Price       Money    `json:"price"`                 // 售价
	MRP         Money    `json:"mrp"`                   // 划线价
	Images      []string `json:"images,omitempty"`      // 图片
	Sizes       []string `json:"sizes,omitempty"`       // 可选尺码
	Colors      []string `json:"colors,omitempty"`      // 可选颜色
	Rating      float64  `json:"rating,omitempty"`      // 评分
	Stock       int      `json:"stock"`                 // 库存
}
