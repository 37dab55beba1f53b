package repository

import (
	"errors"

	"gorm.io/gorm"
)

// firstOrNil 取第一条记录，未找到时返回 nil, nil
func firstOrNil[T any](query *gorm.DB, conds ...interface{}) (*T, error) {
	var row T
	if err := query.First(&row, conds...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// findByID 主键为 0 时直接视为不存在
func findByID[T any](db *gorm.DB, id uint) (*T, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[T](db, id)
}
