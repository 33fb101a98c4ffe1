package entity

// UserInput is the user part of a create or update request. Password is
// required on create and optional on update.
type UserInput struct {
	ID       string `json:"id,omitempty" validate:"omitempty,uuid"`
	UserName string `json:"userName" validate:"required,min=3,max=256"`
	Email    string `json:"email" validate:"required,email,max=256"`
	Password string `json:"password,omitempty" validate:"omitempty,password"`
}

type CreateOrUpdateUserInput struct {
	User           UserInput `json:"user"`
	GrantedRoleIDs []string  `json:"grantedRoleIds" validate:"dive,uuid"`
}

// UserOutput is the editable view of a user returned for the create/update forms.
type UserOutput struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

type UserForCreateOrUpdate struct {
	User           UserOutput `json:"user"`
	Roles          []*Role    `json:"roles"`
	GrantedRoleIDs []string   `json:"grantedRoleIds"`
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type ListQuery struct {
	Page     int
	PageSize int
	Filter   string
	Sorting  string
}

// Normalize clamps paging to 1-based pages of at most MaxPageSize items.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

type PagedResult[T any] struct {
	TotalCount int64 `json:"totalCount"`
	Items      []T   `json:"items"`
}
