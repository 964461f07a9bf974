package controller

import (
	"bufio"
	"context"

	"construction-assist-be/internal/constant"
	"construction-assist-be/internal/dto"
	"construction-assist-be/internal/pkg/logger"
	"construction-assist-be/internal/pkg/serverutils"
	"construction-assist-be/internal/service"
	"construction-assist-be/pkg/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateConversation(ctx *fiber.Ctx) error
	GetAllConversations(ctx *fiber.Ctx) error
	GetChatHistory(ctx *fiber.Ctx) error
	SendChat(ctx *fiber.Ctx) error
	StreamChat(ctx *fiber.Ctx) error
	DeleteConversation(ctx *fiber.Ctx) error
}

type chatController struct {
	service   service.IChatService
	responder *stream.Responder
	logger    logger.ILogger
}

func NewChatController(service service.IChatService, responder *stream.Responder, logger logger.ILogger) IChatController {
	return &chatController{
		service:   service,
		responder: responder,
		logger:    logger,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("/conversation", c.CreateConversation)
	h.Get("/conversation", c.GetAllConversations)
	h.Delete("/conversation", c.DeleteConversation)
	h.Get("/history/:id", c.GetChatHistory)
	h.Post("/message", c.SendChat)
	h.Post("/message/stream", c.StreamChat)
}

func (c *chatController) CreateConversation(ctx *fiber.Ctx) error {
	var req dto.CreateConversationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateConversation(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create conversation", res))
}

func (c *chatController) GetAllConversations(ctx *fiber.Ctx) error {
	res, err := c.service.GetAllConversations(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all conversations", res))
}

func (c *chatController) GetChatHistory(ctx *fiber.Ctx) error {
	conversationId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid conversation id")
	}

	res, err := c.service.GetChatHistory(ctx.Context(), conversationId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func (c *chatController) SendChat(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendChat(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}

// StreamChat answers over Server-Sent Events. If generation cannot be
// started at all, the response is an ordinary JSON error status; once the
// stream writer is entered, failures are reported as an error frame.
func (c *chatController) StreamChat(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// The stream writer runs after this handler returns, so the session
	// gets its own context, canceled when the stream ends for any reason.
	streamCtx, cancelStream := context.WithCancel(context.Background())

	handle, err := c.service.OpenStream(streamCtx, &req)
	if err != nil {
		cancelStream()
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancelStream()

		result := c.responder.Stream(streamCtx, w, handle.Deltas, handle.Finish)
		if result.Canceled {
			c.logger.Info(constant.ModuleStream, "Stream canceled by client", map[string]interface{}{
				"conversation_id": req.ConversationId.String(),
			})
		}
	}))

	return nil
}

func (c *chatController) DeleteConversation(ctx *fiber.Ctx) error {
	var req dto.DeleteConversationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.DeleteConversation(ctx.Context(), &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete conversation", nil))
}
