package resource

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetProviderByID(ctx context.Context, id uuid.UUID) (*Provider, error)
	GetRoomByID(ctx context.Context, id uuid.UUID) (*Room, error)

	// GetEquipmentByIDs returns ErrEquipmentNotFound if any id is unknown.
	GetEquipmentByIDs(ctx context.Context, ids []uuid.UUID) ([]*Equipment, error)

	ListProviders(ctx context.Context, activeOnly bool) ([]*Provider, error)
	ListRooms(ctx context.Context, activeOnly bool) ([]*Room, error)
	ListEquipment(ctx context.Context, activeOnly bool) ([]*Equipment, error)
}
