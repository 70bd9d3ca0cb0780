package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumora-health/visionflow/internal/domain/resource"
)

type ResourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

func (r *ResourceRepository) GetProviderByID(ctx context.Context, id uuid.UUID) (*resource.Provider, error) {
	var p resource.Provider
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, resource.ErrProviderNotFound
		}
		return nil, fmt.Errorf("fetching provider: %w", err)
	}
	return &p, nil
}

func (r *ResourceRepository) GetRoomByID(ctx context.Context, id uuid.UUID) (*resource.Room, error) {
	var room resource.Room
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, resource.ErrRoomNotFound
		}
		return nil, fmt.Errorf("fetching room: %w", err)
	}
	return &room, nil
}

func (r *ResourceRepository) GetEquipmentByIDs(ctx context.Context, ids []uuid.UUID) ([]*resource.Equipment, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var items []*resource.Equipment
	err := r.db.WithContext(ctx).
		Where("id IN ? AND deleted_at IS NULL", ids).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("fetching equipment: %w", err)
	}
	if len(items) != len(ids) {
		return nil, resource.ErrEquipmentNotFound
	}
	return items, nil
}

func (r *ResourceRepository) ListProviders(ctx context.Context, activeOnly bool) ([]*resource.Provider, error) {
	var items []*resource.Provider
	q := r.db.WithContext(ctx).Where("deleted_at IS NULL")
	if activeOnly {
		q = q.Where("is_active")
	}
	if err := q.Order("last_name ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("listing providers: %w", err)
	}
	return items, nil
}

func (r *ResourceRepository) ListRooms(ctx context.Context, activeOnly bool) ([]*resource.Room, error) {
	var items []*resource.Room
	q := r.db.WithContext(ctx).Where("deleted_at IS NULL")
	if activeOnly {
		q = q.Where("is_active")
	}
	if err := q.Order("name ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	return items, nil
}

func (r *ResourceRepository) ListEquipment(ctx context.Context, activeOnly bool) ([]*resource.Equipment, error) {
	var items []*resource.Equipment
	q := r.db.WithContext(ctx).Where("deleted_at IS NULL")
	if activeOnly {
		q = q.Where("is_active")
	}
	if err := q.Order("name ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("listing equipment: %w", err)
	}
	return items, nil
}
