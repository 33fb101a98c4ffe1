package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"user-admin/pkg/jwt"
	"user-admin/pkg/logger"
	"user-admin/pkg/middleware"
	"user-admin/services/user/internal/entity"
	"user-admin/services/user/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserUseCase is a mock implementation of UserUseCase
type MockUserUseCase struct {
	mock.Mock
}

func (m *MockUserUseCase) GetForCreate(ctx context.Context) (*entity.UserForCreateOrUpdate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserForCreateOrUpdate), args.Error(1)
}

func (m *MockUserUseCase) GetForUpdate(ctx context.Context, id string) (*entity.UserForCreateOrUpdate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserForCreateOrUpdate), args.Error(1)
}

func (m *MockUserUseCase) Create(ctx context.Context, input *entity.CreateOrUpdateUserInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *MockUserUseCase) Update(ctx context.Context, input *entity.CreateOrUpdateUserInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockUserUseCase) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserUseCase) List(ctx context.Context, query entity.ListQuery) (*entity.PagedResult[*entity.UserSummary], error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PagedResult[*entity.UserSummary]), args.Error(1)
}

var _ usecase.UserUseCase = (*MockUserUseCase)(nil)

func setupTestRouter(uc usecase.UserUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewUserHandler(uc, logger.NewWithOptions("error", "text", io.Discard))
	handler.RegisterRoutes(router.Group("/api"))
	return router
}

func doRequest(router *gin.Engine, method, target string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, _ := json.Marshal(b)
			reader = bytes.NewReader(data)
		}
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestListUsers_Success(t *testing.T) {
	mockUseCase := new(MockUserUseCase)
	router := setupTestRouter(mockUseCase)

	page := &entity.PagedResult[*entity.UserSummary]{
		TotalCount: 1,
		Items:      []*entity.UserSummary{{ID: entity.UserAdminID, UserName: "admin", Email: "admin@example.com"}},
	}
	mockUseCase.On("List", mock.Anything, entity.ListQuery{Page: 2, PageSize: 5, Filter: "adm", Sorting: "email desc"}).Return(page, nil)

	w := doRequest(router, "GET", "/api/users?page=2&pageSize=5&filter=adm&sorting=email+desc", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var response struct {
		TotalCount int64 `json:"totalCount"`
		Items      []map[string]interface{}
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(1), response.TotalCount)
	require.Len(t, response.Items, 1)
	assert.Equal(t, "admin", response.Items[0]["userName"])
	assert.NotContains(t, response.Items[0], "password")
	mockUseCase.AssertExpectations(t)
}

func TestListUsers_BadPaging(t *testing.T) {
	mockUseCase := new(MockUserUseCase)
	router := setupTestRouter(mockUseCase)

	w := doRequest(router, "GET", "/api/users?pageSize=ten", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "pageSize", decodeError(t, w).Details[0].Field)
	mockUseCase.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestListUsers_InternalError(t *testing.T) {
	mockUseCase := new(MockUserUseCase)
	router := setupTestRouter(mockUseCase)

	mockUseCase.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	w := doRequest(router, "GET", "/api/users", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decodeError(t, w).Error)
}

func TestGetUser_ForCreate(t *testing.T) {
	mockUseCase := new(MockUserUseCase)
	router := setupTestRouter(mockUseCase)

	template := &entity.UserForCreateOrUpdate{GrantedRoleIDs: []string{entity.RoleMemberID}}
	mockUseCase.On("GetForUpdate", mock.Anything, uuid.Nil.String()).Return(template, nil)

	w := doRequest(router, "GET", "/api/users/"+uuid.Nil.String(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var out entity.UserForCreateOrUpdate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Empty(t, out.User.UserName)
	assert.Equal(t, []string{entity.RoleMemberID}, out.GrantedRoleIDs)
	mockUseCase.AssertExpectations(t)
}

func TestGetUser_ForUpdate(t *testing.T) {
	mockUseCase := new(MockUserUseCase)
	router := setupTestRouter(mockUseCase)

	existing := &entity.UserForCreateOrUpdate{
		User:           entity.UserOutput{ID: entity.UserMemberID, UserName: "member", Email: "member@example.com"},
		GrantedRoleIDs: []string{entity.RoleMemberID},
	}
	mockUseCase.On("GetForUpdate", mock.Anything, entity.UserMemberID).Return(existing, nil)

	w := doRequest(router, "GET", "/api/users/"+entity.UserMemberID, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var out entity.UserForCreateOrUpdate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "member", out.User.UserName)
	mockUseCase.AssertExpectations(t)
}

func TestGetUser_Errors(t *testing.T) {
	mockUseCase := new(MockUserUseCase)
	router := setupTestRouter(mockUseCase)

	missing := uuid.NewString()
	mockUseCase.On("GetForUpdate", mock.Anything, missing).Return(nil, entity.ErrUserNotFound)

	w := doRequest(router, "GET", "/api/users/"+missing, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "user not found", decodeError(t, w).Error)

	w = doRequest(router, "GET", "/api/users/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id", decodeError(t, w).Details[0].Field)

	mockUseCase.AssertExpectations(t)
}

func TestCreateUser_Success(t *testing.T) {
	mockUseCase := new(MockUserUseCase)
	router := setupTestRouter(mockUseCase)

	newID := uuid.NewString()
	mockUseCase.On("Create", mock.Anything, mock.MatchedBy(func(in *entity.CreateOrUpdateUserInput) bool {
		return in.User.UserName == "TestUserName" &&
			in.User.Password == "aA!121212" &&
			assert.ObjectsAreEqual([]string{entity.RoleMemberID}, in.GrantedRoleIDs)
	})).Return(newID, nil)

	body := `{"user":{"userName":"TestUserName","email":"test@example.com","password":"aA!121212"},"grantedRoleIds":["` + entity.RoleMemberID + `"]}`
	w := doRequest(router, "POST", "/api/users", body)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/users/"+newID, w.Header().Get("Location"))
	var resp CreateUserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, newID, resp.ID)
	mockUseCase.AssertExpectations(t)
}

func TestCreateUser_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "validation", err: entity.NewValidationError("user.email", "Invalid email format", "email"), status: http.StatusBadRequest},
		{name: "conflict", err: entity.ErrDuplicateUsername, status: http.StatusConflict},
		{name: "internal", err: errors.New("tx aborted"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUseCase := new(MockUserUseCase)
			router := setupTestRouter(mockUseCase)
			mockUseCase.On("Create", mock.Anything, mock.Anything).Return("", tt.err)

			w := doRequest(router, "POST", "/api/users", `{"user":{"userName":"dup"}}`)

			assert.Equal(t, tt.status, w.Code)
			mockUseCase.AssertExpectations(t)
		})
	}
}

func TestCreateUser_ValidationDetails(t *testing.T) {
	mockUseCase := new(MockUserUseCase)
	router := setupTestRouter(mockUseCase)
	mockUseCase.On("Create", mock.Anything, mock.Anything).
		Return("", entity.NewValidationError("user.email", "Invalid email format", "email"))

	w := doRequest(router, "POST", "/api/users", `{"user":{"userName":"someone","email":"nope"}}`)

	resp := decodeError(t, w)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, entity.FieldError{Field: "user.email", Message: "Invalid email format", Type: "email"}, resp.Details[0])
}

func TestCreateUser_MalformedBody(t *testing.T) {
	mockUseCase := new(MockUserUseCase)
	router := setupTestRouter(mockUseCase)

	w := doRequest(router, "POST", "/api/users", `{"user":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateUser(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "success", err: nil, status: http.StatusOK},
		{name: "not found", err: entity.ErrUserNotFound, status: http.StatusNotFound},
		{name: "conflict", err: entity.ErrDuplicateUsername, status: http.StatusConflict},
		{name: "validation", err: entity.NewValidationError("user.id", "This field is required", "required"), status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUseCase := new(MockUserUseCase)
			router := setupTestRouter(mockUseCase)
			mockUseCase.On("Update", mock.Anything, mock.MatchedBy(func(in *entity.CreateOrUpdateUserInput) bool {
				return in.User.ID == entity.UserMemberID && in.User.Password == ""
			})).Return(tt.err)

			body := map[string]interface{}{
				"user":           map[string]string{"id": entity.UserMemberID, "userName": "member_edited", "email": "member@example.com"},
				"grantedRoleIds": []string{entity.RoleMemberID},
			}
			w := doRequest(router, "PUT", "/api/users", body)

			assert.Equal(t, tt.status, w.Code)
			mockUseCase.AssertExpectations(t)
		})
	}
}

func TestDeleteUser(t *testing.T) {
	mockUseCase := new(MockUserUseCase)
	router := setupTestRouter(mockUseCase)

	missing := uuid.NewString()
	mockUseCase.On("Delete", mock.Anything, entity.UserMemberID).Return(nil)
	mockUseCase.On("Delete", mock.Anything, missing).Return(entity.ErrUserNotFound)

	w := doRequest(router, "DELETE", "/api/users?id="+entity.UserMemberID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = doRequest(router, "DELETE", "/api/users?id="+missing, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, "DELETE", "/api/users", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockUseCase.AssertExpectations(t)
}

func TestRoutes_RequireAdminToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtService := jwt.NewService("test-secret-key")
	mockUseCase := new(MockUserUseCase)
	mockUseCase.On("List", mock.Anything, mock.Anything).Return(&entity.PagedResult[*entity.UserSummary]{Items: []*entity.UserSummary{}}, nil)

	router := gin.New()
	api := router.Group("/api", middleware.AuthMiddleware(jwtService), middleware.RequireRole(entity.RoleAdminName))
	NewUserHandler(mockUseCase, logger.NewWithOptions("error", "text", io.Discard)).RegisterRoutes(api)

	adminToken, _ := jwtService.GenerateToken(entity.UserAdminID, entity.RoleAdminName)
	memberToken, _ := jwtService.GenerateToken(entity.UserMemberID, entity.RoleMemberName)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "no token", header: "", status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer garbage", status: http.StatusUnauthorized},
		{name: "member token", header: "Bearer " + memberToken, status: http.StatusForbidden},
		{name: "admin token", header: "Bearer " + adminToken, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/api/users", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
