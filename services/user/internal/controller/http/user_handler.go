package http

import (
	"errors"
	"net/http"
	"strconv"

	"user-admin/pkg/logger"
	"user-admin/services/user/internal/entity"
	"user-admin/services/user/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserHandler struct {
	userUseCase usecase.UserUseCase
	logger      *logger.Logger
}

func NewUserHandler(userUseCase usecase.UserUseCase, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

// RegisterRoutes mounts the users API on rg; callers attach auth middleware to rg.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.POST("", h.CreateUser)
		users.PUT("", h.UpdateUser)
		users.DELETE("", h.DeleteUser)
	}
}

type ErrorResponse struct {
	Error   string              `json:"error"`
	Details []entity.FieldError `json:"details,omitempty"`
}

type CreateUserResponse struct {
	ID string `json:"id"`
}

// ListUsers godoc
// @Summary      List users
// @Description  Paged list of users, optionally filtered by user name or email
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page      query  int     false  "1-based page number"
// @Param        pageSize  query  int     false  "Page size (max 100)"
// @Param        filter    query  string  false  "Case-insensitive user name or email fragment"
// @Param        sorting   query  string  false  "userName, email or createdAt, optionally followed by desc"
// @Success      200  {object}  entity.PagedResult[entity.UserSummary]
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	query := entity.ListQuery{
		Filter:  c.Query("filter"),
		Sorting: c.Query("sorting"),
	}

	var ok bool
	if query.Page, ok = intQuery(c, "page"); !ok {
		return
	}
	if query.PageSize, ok = intQuery(c, "pageSize"); !ok {
		return
	}

	users, err := h.userUseCase.List(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetUser godoc
// @Summary      Get user for create or update
// @Description  Returns the user with its granted roles; the nil UUID returns an empty template for creating a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  entity.UserForCreateOrUpdate
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, c.Param("id"))
	if !ok {
		return
	}

	out, err := h.userUseCase.GetForUpdate(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// CreateUser godoc
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body entity.CreateOrUpdateUserInput true "User and granted role ids"
// @Success      201  {object}  CreateUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var input entity.CreateOrUpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	id, err := h.userUseCase.Create(c.Request.Context(), &input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Location", "/api/users/"+id)
	c.JSON(http.StatusCreated, CreateUserResponse{ID: id})
}

// UpdateUser godoc
// @Summary      Update user
// @Description  Updates the user identified by user.id and replaces its roles; password is optional
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body entity.CreateOrUpdateUserInput true "User and granted role ids"
// @Success      200
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /users [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var input entity.CreateOrUpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.userUseCase.Update(c.Request.Context(), &input); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// DeleteUser godoc
// @Summary      Delete user
// @Tags         users
// @Security     BearerAuth
// @Param        id   query  string  true  "User ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, c.Query("id"))
	if !ok {
		return
	}

	if err := h.userUseCase.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) respondError(c *gin.Context, err error) {
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request data", Details: verr.Fields})
	case errors.Is(err, entity.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrDuplicateUsername):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

func parseID(c *gin.Context, raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: []entity.FieldError{{Field: "id", Message: "Invalid identifier", Type: "uuid"}},
		})
		return "", false
	}
	return id.String(), true
}

func intQuery(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: []entity.FieldError{{Field: key, Message: "Must be an integer", Type: "int"}},
		})
		return 0, false
	}
	return v, true
}
