package resource

import (
	"time"

	"github.com/google/uuid"
)

// A booking occupies up to three resource dimensions: the provider, optionally
// a room, and any number of equipment items. This package is the registry for
// all three.

type Provider struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	FirstName string `gorm:"column:first_name;type:varchar(100);not null"`
	LastName  string `gorm:"column:last_name;type:varchar(100);not null"`
	Specialty string `gorm:"column:specialty;type:varchar(100)"`
	IsActive  bool   `gorm:"column:is_active;default:true;index"`
}

func (Provider) TableName() string {
	return "clinical.providers"
}

func (p *Provider) DisplayName() string {
	return "Dr. " + p.FirstName + " " + p.LastName
}

type Room struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	Name     string `gorm:"column:name;type:varchar(100);not null;uniqueIndex"`
	IsActive bool   `gorm:"column:is_active;default:true;index"`
}

func (Room) TableName() string {
	return "clinical.rooms"
}

type EquipmentKind string

const (
	EquipmentOCT          EquipmentKind = "oct"
	EquipmentVisualField  EquipmentKind = "visual_field"
	EquipmentFundusCamera EquipmentKind = "fundus_camera"
	EquipmentLaser        EquipmentKind = "laser"
	EquipmentSlitLamp     EquipmentKind = "slit_lamp"
	EquipmentOther        EquipmentKind = "other"
)

type Equipment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	Name     string        `gorm:"column:name;type:varchar(100);not null;uniqueIndex"`
	Kind     EquipmentKind `gorm:"column:kind;type:varchar(50);not null;index"`
	IsActive bool          `gorm:"column:is_active;default:true;index"`
}

func (Equipment) TableName() string {
	return "clinical.equipment"
}
