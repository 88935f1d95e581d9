package repository

import (
	"errors"

	"gorm.io/gorm"
)

// firstOrNil 取首条记录，不存在时返回 (nil, nil)
func firstOrNil[T any](query *gorm.DB, conds ...interface{}) (*T, error) {
	var item T
	err := query.First(&item, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func likePattern(keyword string) string {
	return "%" + keyword + "%"
}
