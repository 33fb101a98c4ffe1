package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"user-admin/pkg/logger"
	"user-admin/services/user/internal/entity"
	"user-admin/services/user/internal/repo/persistent"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// EventPublisher delivers user lifecycle events; the RabbitMQ client implements it.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

type UserEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name,omitempty"`
	RoleIDs    []string  `json:"role_ids,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type UserUseCase interface {
	GetForCreate(ctx context.Context) (*entity.UserForCreateOrUpdate, error)
	GetForUpdate(ctx context.Context, id string) (*entity.UserForCreateOrUpdate, error)
	Create(ctx context.Context, input *entity.CreateOrUpdateUserInput) (string, error)
	Update(ctx context.Context, input *entity.CreateOrUpdateUserInput) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query entity.ListQuery) (*entity.PagedResult[*entity.UserSummary], error)
}

type userUseCase struct {
	userRepo  persistent.UserRepository
	roleRepo  persistent.RoleRepository
	publisher EventPublisher
	logger    *logger.Logger
	hashCost  int
}

// NewUserUseCase accepts a nil publisher when no broker is configured.
func NewUserUseCase(
	userRepo persistent.UserRepository,
	roleRepo persistent.RoleRepository,
	publisher EventPublisher,
	logger *logger.Logger,
) UserUseCase {
	return &userUseCase{
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		publisher: publisher,
		logger:    logger,
		hashCost:  bcrypt.DefaultCost,
	}
}

func (uc *userUseCase) GetForCreate(ctx context.Context) (*entity.UserForCreateOrUpdate, error) {
	roles, err := uc.roleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	granted, err := uc.roleRepo.GetDefaultIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list default roles: %w", err)
	}

	return &entity.UserForCreateOrUpdate{
		User:           entity.UserOutput{},
		Roles:          roles,
		GrantedRoleIDs: granted,
	}, nil
}

// GetForUpdate treats the nil UUID as a request for the blank create template.
func (uc *userUseCase) GetForUpdate(ctx context.Context, id string) (*entity.UserForCreateOrUpdate, error) {
	if isNilID(id) {
		return uc.GetForCreate(ctx)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, entity.NewValidationError("id", "Invalid identifier", "uuid")
	}
	id = parsed.String()

	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	roles, err := uc.roleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}

	granted, err := uc.userRepo.GetRoleIDs(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list user roles: %w", err)
	}

	return &entity.UserForCreateOrUpdate{
		User: entity.UserOutput{
			ID:       user.ID,
			UserName: user.UserName,
			Email:    user.Email,
		},
		Roles:          roles,
		GrantedRoleIDs: granted,
	}, nil
}

func (uc *userUseCase) Create(ctx context.Context, input *entity.CreateOrUpdateUserInput) (string, error) {
	normalizeInput(input)
	if verr := validateInput(input); verr != nil {
		return "", verr
	}
	if input.User.Password == "" {
		return "", entity.NewValidationError("user.password", "This field is required", "required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.User.Password), uc.hashCost)
	if err != nil {
		uc.logger.Error("Failed to hash password: %v", err)
		return "", fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		UserName: input.User.UserName,
		Email:    input.User.Email,
		Password: string(hash),
	}

	if err := uc.userRepo.Create(ctx, user, input.GrantedRoleIDs); err != nil {
		return "", roleError(err)
	}

	uc.logger.Info("User created: id=%s username=%s", user.ID, user.UserName)
	uc.publish(ctx, EventUserCreated, user, input.GrantedRoleIDs)
	return user.ID, nil
}

func (uc *userUseCase) Update(ctx context.Context, input *entity.CreateOrUpdateUserInput) error {
	normalizeInput(input)
	if verr := validateInput(input); verr != nil {
		return verr
	}
	if isNilID(input.User.ID) {
		return entity.NewValidationError("user.id", "This field is required", "required")
	}

	user := &entity.User{
		ID:       input.User.ID,
		UserName: input.User.UserName,
		Email:    input.User.Email,
	}

	updatePassword := input.User.Password != ""
	if updatePassword {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.User.Password), uc.hashCost)
		if err != nil {
			uc.logger.Error("Failed to hash password: %v", err)
			return fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hash)
	}

	if err := uc.userRepo.Update(ctx, user, input.GrantedRoleIDs, updatePassword); err != nil {
		return roleError(err)
	}

	uc.logger.Info("User updated: id=%s username=%s", user.ID, user.UserName)
	uc.publish(ctx, EventUserUpdated, user, input.GrantedRoleIDs)
	return nil
}

func (uc *userUseCase) Delete(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return entity.NewValidationError("id", "Invalid identifier", "uuid")
	}
	id = parsed.String()

	if err := uc.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	uc.logger.Info("User deleted: id=%s", id)
	uc.publish(ctx, EventUserDeleted, &entity.User{ID: id}, nil)
	return nil
}

func (uc *userUseCase) List(ctx context.Context, query entity.ListQuery) (*entity.PagedResult[*entity.UserSummary], error) {
	page, err := uc.userRepo.List(ctx, query.Normalize())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	items := make([]*entity.UserSummary, len(page.Items))
	for i, u := range page.Items {
		items[i] = u.Summary()
	}

	return &entity.PagedResult[*entity.UserSummary]{TotalCount: page.TotalCount, Items: items}, nil
}

func (uc *userUseCase) publish(ctx context.Context, eventType string, user *entity.User, roleIDs []string) {
	if uc.publisher == nil {
		return
	}

	event := UserEvent{
		Type:       eventType,
		UserID:     user.ID,
		UserName:   user.UserName,
		RoleIDs:    roleIDs,
		OccurredAt: time.Now().UTC(),
	}
	if err := uc.publisher.Publish(ctx, eventType, event); err != nil {
		uc.logger.Error("Failed to publish %s for user %s: %v", eventType, user.ID, err)
	}
}

func normalizeInput(input *entity.CreateOrUpdateUserInput) {
	input.User.ID = strings.ToLower(strings.TrimSpace(input.User.ID))
	input.User.UserName = strings.TrimSpace(input.User.UserName)
	input.User.Email = strings.TrimSpace(input.User.Email)
	input.GrantedRoleIDs = dedupe(input.GrantedRoleIDs)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.ToLower(strings.TrimSpace(id))
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func isNilID(id string) bool {
	if id == "" {
		return true
	}
	parsed, err := uuid.Parse(id)
	return err == nil && parsed == uuid.Nil
}

func roleError(err error) error {
	if errors.Is(err, entity.ErrUnknownRole) {
		return entity.NewValidationError("grantedRoleIds", "One or more roles do not exist", "role")
	}
	return err
}
