package resource

import "errors"

var (
	ErrProviderNotFound  = errors.New("provider not found")
	ErrProviderInactive  = errors.New("provider is not active")
	ErrRoomNotFound      = errors.New("room not found")
	ErrEquipmentNotFound = errors.New("equipment not found")
)
