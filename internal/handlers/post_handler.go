package handlers

import (
	"blog/internal/middleware"
	"blog/internal/models"
	"blog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PostHandler handles HTTP requests related to posts.
type PostHandler struct {
	service  *services.PostService
	validate *validator.Validate
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service *services.PostService) *PostHandler {
	return &PostHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the post routes. Creating a post requires the ADMIN role.
func (h *PostHandler) RegisterRoutes(router fiber.Router) {
	postRoutes := router.Group("/posts")
	postRoutes.Get("/", h.HandleGetPosts)
	postRoutes.Get("/:id", h.HandleGetPostByID)
	postRoutes.Post("/", middleware.RequireRole(models.RoleAdmin), h.HandleCreatePost)
	postRoutes.Put("/:id", h.HandleUpdatePost)
	postRoutes.Delete("/:id", h.HandleDeletePost)
}

// PostRequest is the body of POST and PUT /posts. Content limits are
// enforced again by the service; the tags give per-field messages.
type PostRequest struct {
	Title   string `json:"title" validate:"omitempty,max=100"`
	Body    string `json:"body" validate:"omitempty,max=1000"`
	TopicID string `json:"topic_id" validate:"required"`
	OwnerID string `json:"owner_id"`
}

// HandleGetPosts lists posts, optionally filtered by query parameters.
func (h *PostHandler) HandleGetPosts(c *fiber.Ctx) error {
	posts, err := h.service.ListPosts(c.UserContext(), services.PostQuery{
		Title:            c.Query("title"),
		TopicID:          c.Query("topic_id"),
		OwnerID:          c.Query("owner_id"),
		TopicDescription: c.Query("topic"),
		OwnerName:        c.Query("owner"),
	})
	if err != nil {
		return respondError(c, err, "Could not retrieve posts")
	}
	return c.JSON(posts)
}

// HandleGetPostByID retrieves a single post.
func (h *PostHandler) HandleGetPostByID(c *fiber.Ctx) error {
	post, err := h.service.GetPostByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve post")
	}
	return c.JSON(post)
}

// HandleCreatePost creates a post. The owner defaults to the caller.
func (h *PostHandler) HandleCreatePost(c *fiber.Ctx) error {
	var req PostRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	ownerID := req.OwnerID
	if ownerID == "" {
		if requester := middleware.RequesterFrom(c); requester != nil {
			ownerID = requester.ID
		}
	}

	post, err := h.service.CreatePost(c.UserContext(), services.PostInput{
		Title:   req.Title,
		Body:    req.Body,
		OwnerID: ownerID,
		TopicID: req.TopicID,
	})
	if err != nil {
		return respondError(c, err, "Could not create post")
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// HandleUpdatePost applies the update policy for the caller to post id.
func (h *PostHandler) HandleUpdatePost(c *fiber.Ctx) error {
	var req PostRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	post, err := h.service.UpdatePost(c.UserContext(), middleware.RequesterFrom(c), c.Params("id"), services.PostInput{
		Title:   req.Title,
		Body:    req.Body,
		OwnerID: req.OwnerID,
		TopicID: req.TopicID,
	})
	if err != nil {
		return respondError(c, err, "Could not update post")
	}
	return c.JSON(post)
}

// HandleDeletePost removes a post owned by the caller, or any post for an admin.
func (h *PostHandler) HandleDeletePost(c *fiber.Ctx) error {
	postID := c.Params("id")
	if err := h.service.DeletePost(c.UserContext(), middleware.RequesterFrom(c), postID); err != nil {
		return respondError(c, err, "Could not delete post")
	}
	return c.JSON(fiber.Map{
		"message": "Post " + postID + " deleted successfully",
	})
}
