package persistent

import (
	"user-admin/services/user/internal/entity"
	"user-admin/services/user/internal/model"
)

func ToUserEntity(m *model.UserModel) *entity.User {
	if m == nil {
		return nil
	}

	return &entity.User{
		ID:        m.ID,
		UserName:  m.Username,
		Email:     m.Email,
		Password:  m.Password,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToUserModel(e *entity.User) *model.UserModel {
	if e == nil {
		return nil
	}

	return &model.UserModel{
		ID:        e.ID,
		Username:  e.UserName,
		Email:     e.Email,
		Password:  e.Password,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func ToRoleEntity(m *model.RoleModel) *entity.Role {
	if m == nil {
		return nil
	}

	return &entity.Role{
		ID:        m.ID,
		Name:      m.Name,
		IsDefault: m.IsDefault,
		IsSystem:  m.IsSystem,
	}
}

func ToRoleModel(e *entity.Role) *model.RoleModel {
	if e == nil {
		return nil
	}

	return &model.RoleModel{
		ID:        e.ID,
		Name:      e.Name,
		IsDefault: e.IsDefault,
		IsSystem:  e.IsSystem,
	}
}
