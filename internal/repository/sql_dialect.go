package repository

import (
	"strings"

	"gorm.io/gorm"
)

const likeEscapeChar = `\`

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	name := strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	if name == "" {
		return "sqlite"
	}
	return name
}

// prefixLikeCondition 构建前缀匹配条件，兼容 sqlite 与 postgres。
// postgres 默认转义符即为反斜杠，sqlite 需要显式声明 ESCAPE。
func prefixLikeCondition(db *gorm.DB, column string) string {
	return prefixLikeConditionByDialect(dbDialectName(db), column)
}

func prefixLikeConditionByDialect(dialect, column string) string {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return column + " LIKE ?"
	default:
		return column + ` LIKE ? ESCAPE '\'`
	}
}

// prefixLikePattern 转义通配符并追加 %。
func prefixLikePattern(prefix string) string {
	replacer := strings.NewReplacer(
		likeEscapeChar, likeEscapeChar+likeEscapeChar,
		"%", likeEscapeChar+"%",
		"_", likeEscapeChar+"_",
	)
	return replacer.Replace(prefix) + "%"
}
