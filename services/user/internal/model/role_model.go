package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleModel struct {
	ID        string `gorm:"type:uuid;primary_key" json:"id"`
	Name      string `gorm:"type:varchar(128);uniqueIndex;not null" json:"name"`
	IsDefault bool   `gorm:"default:false" json:"is_default"`
	IsSystem  bool   `gorm:"default:false" json:"is_system"`
}

func (RoleModel) TableName() string {
	return "roles"
}

func (r *RoleModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// UserRoleModel is the user/role join row. User and Role exist only so that
// AutoMigrate emits the foreign keys; they are never preloaded.
type UserRoleModel struct {
	UserID string     `gorm:"type:uuid;primaryKey" json:"user_id"`
	RoleID string     `gorm:"type:uuid;primaryKey;index" json:"role_id"`
	User   *UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Role   *RoleModel `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"-"`
}

func (UserRoleModel) TableName() string {
	return "user_roles"
}

// All lists the models in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{&RoleModel{}, &UserModel{}, &UserRoleModel{}}
}
