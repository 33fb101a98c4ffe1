package persistent

import (
	"context"

	"user-admin/services/user/internal/entity"
	"user-admin/services/user/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	List(ctx context.Context) ([]*entity.Role, error)
	GetDefaultIDs(ctx context.Context) ([]string, error)
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) List(ctx context.Context) ([]*entity.Role, error) {
	var roleModels []model.RoleModel
	if err := r.db.WithContext(ctx).Order("name").Find(&roleModels).Error; err != nil {
		return nil, err
	}

	roles := make([]*entity.Role, len(roleModels))
	for i := range roleModels {
		roles[i] = ToRoleEntity(&roleModels[i])
	}
	return roles, nil
}

func (r *roleRepository) GetDefaultIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&model.RoleModel{}).
		Where("is_default = ?", true).
		Order("name").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
