package handlers

import (
	"blog/internal/middleware"
	"blog/internal/models"
	"blog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests on existing accounts.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the authenticated user routes.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/:id", h.HandleGetUserByID)
	userRoutes.Put("/:id", h.HandleUpdateUser)
	userRoutes.Delete("/:id", middleware.RequireRole(models.RoleAdmin), h.HandleDeleteUser)
}

// UpdateUserRequest is the body of PUT /users/:id.
type UpdateUserRequest struct {
	Name     string      `json:"name" validate:"max=255"`
	Username string      `json:"username" validate:"required,min=3,max=100"`
	Photo    string      `json:"photo" validate:"omitempty,max=500"`
	Password string      `json:"password" validate:"omitempty,min=6"`
	Role     models.Role `json:"role"`
}

// HandleGetUserByID retrieves a single user.
func (h *UserHandler) HandleGetUserByID(c *fiber.Ctx) error {
	user, err := h.service.GetUserByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve user")
	}
	return c.JSON(user)
}

// HandleUpdateUser updates a profile. Only the account itself or an admin may call it.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	user, err := h.service.UpdateUser(c.UserContext(), middleware.RequesterFrom(c), c.Params("id"), services.UserUpdate{
		Name:     req.Name,
		Username: req.Username,
		Photo:    req.Photo,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return respondError(c, err, "Could not update user")
	}
	return c.JSON(user)
}

// HandleDeleteUser removes an account.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	userID := c.Params("id")
	if err := h.service.DeleteUser(c.UserContext(), userID); err != nil {
		return respondError(c, err, "Could not delete user")
	}
	return c.JSON(fiber.Map{
		"message": "User " + userID + " deleted successfully",
	})
}
