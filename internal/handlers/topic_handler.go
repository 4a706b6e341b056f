package handlers

import (
	"blog/internal/models"
	"blog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TopicHandler handles HTTP requests related to topics.
type TopicHandler struct {
	service  *services.TopicService
	validate *validator.Validate
}

// NewTopicHandler creates a new TopicHandler.
func NewTopicHandler(service *services.TopicService) *TopicHandler {
	return &TopicHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the topic routes.
func (h *TopicHandler) RegisterRoutes(router fiber.Router) {
	topicRoutes := router.Group("/topics")
	topicRoutes.Get("/", h.HandleGetTopics)
	topicRoutes.Get("/search", h.HandleSearchTopics)
	topicRoutes.Get("/:id", h.HandleGetTopicByID)
	topicRoutes.Post("/", h.HandleCreateTopic)
	topicRoutes.Put("/:id", h.HandleUpdateTopic)
	topicRoutes.Delete("/:id", h.HandleDeleteTopic)
}

// TopicRequest is the body of POST and PUT /topics.
type TopicRequest struct {
	Description string `json:"description" validate:"required,max=255"`
}

func (h *TopicHandler) HandleGetTopics(c *fiber.Ctx) error {
	topics, err := h.service.GetAllTopics(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve topics")
	}
	return c.JSON(topics)
}

// HandleSearchTopics answers 204 when nothing matches.
func (h *TopicHandler) HandleSearchTopics(c *fiber.Ctx) error {
	topics, err := h.service.SearchTopics(c.UserContext(), c.Query("description"))
	if err != nil {
		return respondError(c, err, "Could not search topics")
	}
	if len(topics) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(topics)
}

func (h *TopicHandler) HandleGetTopicByID(c *fiber.Ctx) error {
	topic, err := h.service.GetTopicByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve topic")
	}
	return c.JSON(topic)
}

func (h *TopicHandler) HandleCreateTopic(c *fiber.Ctx) error {
	var req TopicRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	topic := &models.Topic{Description: req.Description}
	if err := h.service.CreateTopic(c.UserContext(), topic); err != nil {
		return respondError(c, err, "Could not create topic")
	}
	return c.Status(fiber.StatusCreated).JSON(topic)
}

func (h *TopicHandler) HandleUpdateTopic(c *fiber.Ctx) error {
	var req TopicRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	topic := &models.Topic{Description: req.Description}
	if err := h.service.UpdateTopic(c.UserContext(), c.Params("id"), topic); err != nil {
		return respondError(c, err, "Could not update topic")
	}
	return c.JSON(topic)
}

// HandleDeleteTopic refuses topics that still have posts.
func (h *TopicHandler) HandleDeleteTopic(c *fiber.Ctx) error {
	topicID := c.Params("id")
	if err := h.service.DeleteTopic(c.UserContext(), topicID); err != nil {
		return respondError(c, err, "Could not delete topic")
	}
	return c.JSON(fiber.Map{
		"message": "Topic " + topicID + " deleted successfully",
	})
}
