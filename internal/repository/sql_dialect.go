package repository

import (
	"fmt"
	"strings"

	"github.com/storefront-next/internal/constants"

	"gorm.io/gorm"
)

// dialect 区分 sqlite 与 postgres 的 SQL 片段，未知方言按 sqlite 处理
type dialect string

const (
	dialectSQLite   dialect = "sqlite"
	dialectPostgres dialect = "postgres"
)

func dialectOf(db *gorm.DB) dialect {
	if db == nil || db.Dialector == nil {
		return dialectSQLite
	}
	return parseDialect(db.Dialector.Name())
}

func parseDialect(name string) dialect {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pgx":
		return dialectPostgres
	default:
		return dialectSQLite
	}
}

// jsonText 取 JSON 对象中某个键的文本；locale 键含 "-"，sqlite 路径需加引号
func (d dialect) jsonText(column, key string) string {
	if d == dialectPostgres {
		return fmt.Sprintf("(%s::jsonb ->> '%s')", column, key)
	}
	return fmt.Sprintf(`json_extract(%s, '$."%s"')`, column, key)
}

// dayBucket 时间列按天截断为 YYYY-MM-DD 文本
func (d dialect) dayBucket(column string) string {
	if d == dialectPostgres {
		return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", column)
	}
	return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", column)
}

// like postgres 用 ILIKE 保持与 sqlite LIKE 一样大小写不敏感
func (d dialect) like() string {
	if d == dialectPostgres {
		return "ILIKE"
	}
	return "LIKE"
}

// localizedSearch 对普通列与多语言 JSON 列（每个受支持语言各一项）做模糊匹配，返回条件与参数
func (d dialect) localizedSearch(keyword string, plainColumns, jsonColumns []string) (string, []interface{}) {
	exprs := append([]string(nil), plainColumns...)
	for _, column := range jsonColumns {
		for _, locale := range constants.SupportedLocales {
			exprs = append(exprs, d.jsonText(column, locale))
		}
	}

	pattern := likePattern(keyword)
	parts := make([]string, len(exprs))
	args := make([]interface{}, len(exprs))
	for i, expr := range exprs {
		parts[i] = expr + " " + d.like() + " ?"
		args[i] = pattern
	}
	return strings.Join(parts, " OR "), args
}

// jsonArrayContains JSON 整数数组列包含 id 的条件与参数
func (d dialect) jsonArrayContains(column string, id uint) (string, interface{}) {
	if d == dialectPostgres {
		return column + "::jsonb @> ?::jsonb", fmt.Sprintf("[%d]", id)
	}
	return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s) WHERE json_each.value = ?)", column), id
}
