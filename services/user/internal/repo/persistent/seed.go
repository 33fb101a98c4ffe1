package persistent

import (
	"context"

	"user-admin/services/user/internal/entity"
	"user-admin/services/user/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var systemRoles = []*entity.Role{
	{ID: entity.RoleAdminID, Name: entity.RoleAdminName, IsSystem: true},
	{ID: entity.RoleMemberID, Name: entity.RoleMemberName, IsDefault: true, IsSystem: true},
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}

// Seed inserts the system roles and the default admin and member accounts.
// Rows that already exist are left untouched, so it is safe to run repeatedly.
func Seed(ctx context.Context, db *gorm.DB, adminPassword, memberPassword string) error {
	adminHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	memberHash, err := bcrypt.GenerateFromPassword([]byte(memberPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	roles := make([]model.RoleModel, 0, len(systemRoles))
	for _, role := range systemRoles {
		roles = append(roles, *ToRoleModel(role))
	}
	users := []model.UserModel{
		{ID: entity.UserAdminID, Username: "admin", Email: "admin@example.com", Password: string(adminHash)},
		{ID: entity.UserMemberID, Username: "member", Email: "member@example.com", Password: string(memberHash)},
	}
	userRoles := []model.UserRoleModel{
		{UserID: entity.UserAdminID, RoleID: entity.RoleAdminID},
		{UserID: entity.UserAdminID, RoleID: entity.RoleMemberID},
		{UserID: entity.UserMemberID, RoleID: entity.RoleMemberID},
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&users).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&userRoles).Error
	})
}
