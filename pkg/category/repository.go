// Package category stores the categories events are grouped by.
package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/dhis2-sre/im-calendar/internal/errdef"
	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db: db}
}

type repository struct {
	db *gorm.DB
}

func (r repository) Create(ctx context.Context, category *model.Category) error {
	ctx = context.WithoutCancel(ctx)
	err := r.db.WithContext(ctx).Create(category).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errdef.NewDuplicated("category %q has duplicate participants", category.Title)
	}
	if err != nil {
		return fmt.Errorf("failed to create category: %v", err)
	}
	return nil
}

// Find returns the category including its participants.
func (r repository) Find(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var category *model.Category
	err := r.db.
		WithContext(ctx).
		Preload("Participants").
		First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("category not found by id: %q", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find category %q: %v", id, err)
	}
	return category, nil
}
