package repository

import "gorm.io/gorm"

// maxPageSize 单页上限，超出时截断
const maxPageSize = 200

// normalized 补齐页码并截断页长
func (p Paging) normalized() Paging {
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

func (p Paging) apply(query *gorm.DB) *gorm.DB {
	if query == nil || p.PageSize <= 0 {
		return query
	}
	p = p.normalized()
	return query.Limit(p.PageSize).Offset((p.Page - 1) * p.PageSize)
}

// findPage 先统计总数再按 order 排序取当前页；preloads 只作用于取数
func findPage[T any](query *gorm.DB, paging Paging, order string, preloads ...string) ([]T, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	items := make([]T, 0)
	if total == 0 {
		return items, 0, nil
	}
	if order != "" {
		query = query.Order(order)
	}
	for _, name := range preloads {
		query = query.Preload(name)
	}
	if err := paging.apply(query).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
