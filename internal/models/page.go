package models

import (
	"gorm.io/gorm"

	"github.com/banban-dev/banban/internal/pagination"
)

// Cursor identifies the models that can be listed page by page
type Cursor interface {
	Cursor() int64
}

// Cursor returns the value list endpoints page on
func (m SeqModel) Cursor() int64 {
	return m.ID
}

// Page loads one page of query results, newest first. It reads one row past
// the page size to learn whether another page exists.
func Page[T Cursor](query *gorm.DB, req pagination.Request) (pagination.Page[T], error) {
	size := pagination.NormalizeSize(req.Size)

	if req.Cursor != nil {
		query = query.Where("id < ?", *req.Cursor)
	}

	var rows []T
	if err := query.Order("id DESC").Limit(size + 1).Find(&rows).Error; err != nil {
		return pagination.Page[T]{}, err
	}

	hasNext := len(rows) > size
	if hasNext {
		rows = rows[:size]
	}
	return pagination.Page[T]{Items: rows, HasNext: hasNext}, nil
}
