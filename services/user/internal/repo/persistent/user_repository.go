package persistent

import (
	"context"
	"errors"
	"strings"
	"time"

	"user-admin/services/user/internal/entity"
	"user-admin/services/user/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetRoleIDs(ctx context.Context, userID string) ([]string, error)
	Create(ctx context.Context, user *entity.User, roleIDs []string) error
	Update(ctx context.Context, user *entity.User, roleIDs []string, updatePassword bool) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query entity.ListQuery) (*entity.PagedResult[*entity.User], error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var userModel model.UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&userModel).Error; err != nil {
		return nil, notFound(err)
	}
	return ToUserEntity(&userModel), nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	var userModel model.UserModel
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&userModel).Error; err != nil {
		return nil, notFound(err)
	}
	return ToUserEntity(&userModel), nil
}

func (r *userRepository) GetRoleIDs(ctx context.Context, userID string) ([]string, error) {
	roleIDs := []string{}
	err := r.db.WithContext(ctx).
		Model(&model.UserRoleModel{}).
		Where("user_id = ?", userID).
		Order("role_id").
		Pluck("role_id", &roleIDs).Error
	if err != nil {
		return nil, err
	}
	return roleIDs, nil
}

func (r *userRepository) Create(ctx context.Context, user *entity.User, roleIDs []string) error {
	roleIDs = uniqueIDs(roleIDs)
	userModel := ToUserModel(user)
	if userModel.ID == "" {
		userModel.ID = uuid.New().String()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUsernameFree(tx, userModel.Username, ""); err != nil {
			return err
		}
		if err := ensureRolesExist(tx, roleIDs); err != nil {
			return err
		}

		if err := tx.Create(userModel).Error; err != nil {
			if isUniqueViolation(err) {
				return entity.ErrDuplicateUsername
			}
			return err
		}

		if err := insertUserRoles(tx, userModel.ID, roleIDs); err != nil {
			return err
		}

		*user = *ToUserEntity(userModel)
		return nil
	})
}

// Update overwrites the user's columns and replaces its whole role set.
func (r *userRepository) Update(ctx context.Context, user *entity.User, roleIDs []string, updatePassword bool) error {
	roleIDs = uniqueIDs(roleIDs)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.UserModel
		if err := tx.Where("id = ?", user.ID).First(&existing).Error; err != nil {
			return notFound(err)
		}

		if err := ensureUsernameFree(tx, user.UserName, existing.ID); err != nil {
			return err
		}
		if err := ensureRolesExist(tx, roleIDs); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"username":   user.UserName,
			"email":      user.Email,
			"updated_at": time.Now(),
		}
		if updatePassword {
			updates["password"] = user.Password
		}

		if err := tx.Model(&model.UserModel{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return entity.ErrDuplicateUsername
			}
			return err
		}

		if err := tx.Where("user_id = ?", existing.ID).Delete(&model.UserRoleModel{}).Error; err != nil {
			return err
		}
		if err := insertUserRoles(tx, existing.ID, roleIDs); err != nil {
			return err
		}

		var updated model.UserModel
		if err := tx.Where("id = ?", existing.ID).First(&updated).Error; err != nil {
			return err
		}
		*user = *ToUserEntity(&updated)
		return nil
	})
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.UserRoleModel{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&model.UserModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entity.ErrUserNotFound
		}
		return nil
	})
}

func (r *userRepository) List(ctx context.Context, query entity.ListQuery) (*entity.PagedResult[*entity.User], error) {
	query = query.Normalize()

	filtered := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.UserModel{})
		if filter := strings.TrimSpace(query.Filter); filter != "" {
			like := "%" + likeEscaper.Replace(strings.ToLower(filter)) + "%"
			q = q.Where(`LOWER(username) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, like, like)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, err
	}

	var userModels []model.UserModel
	err := filtered().
		Order(sortColumn(query.Sorting)).
		Order("id").
		Offset(query.Offset()).
		Limit(query.PageSize).
		Find(&userModels).Error
	if err != nil {
		return nil, err
	}

	users := make([]*entity.User, len(userModels))
	for i := range userModels {
		users[i] = ToUserEntity(&userModels[i])
	}

	return &entity.PagedResult[*entity.User]{TotalCount: total, Items: users}, nil
}

// likeEscaper makes the filter match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

var sortableColumns = map[string]string{
	"username":     "username",
	"email":        "email",
	"createdat":    "created_at",
	"creationtime": "created_at",
}

// sortColumn parses "field" or "field desc"; unknown fields fall back to created_at.
func sortColumn(sorting string) clause.OrderByColumn {
	fields := strings.Fields(strings.ToLower(sorting))
	column := "created_at"
	desc := false

	if len(fields) > 0 {
		if c, ok := sortableColumns[fields[0]]; ok {
			column = c
			desc = len(fields) > 1 && fields[1] == "desc"
		}
	}

	return clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}
}

func ensureUsernameFree(tx *gorm.DB, username, exceptID string) error {
	q := tx.Model(&model.UserModel{}).Where("username = ?", username)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return entity.ErrDuplicateUsername
	}
	return nil
}

func ensureRolesExist(tx *gorm.DB, roleIDs []string) error {
	if len(roleIDs) == 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&model.RoleModel{}).Where("id IN ?", roleIDs).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(roleIDs)) {
		return entity.ErrUnknownRole
	}
	return nil
}

func insertUserRoles(tx *gorm.DB, userID string, roleIDs []string) error {
	if len(roleIDs) == 0 {
		return nil
	}

	rows := make([]model.UserRoleModel, len(roleIDs))
	for i, roleID := range roleIDs {
		rows[i] = model.UserRoleModel{UserID: userID, RoleID: roleID}
	}
	return tx.Create(&rows).Error
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.ErrUserNotFound
	}
	return err
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
