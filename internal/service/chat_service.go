package service

import (
	"context"
	"encoding/json"
	"time"

	"construction-assist-be/internal/constant"
	"construction-assist-be/internal/dto"
	"construction-assist-be/internal/entity"
	"construction-assist-be/internal/pkg/logger"
	"construction-assist-be/internal/repository/specification"
	"construction-assist-be/internal/repository/unitofwork"
	"construction-assist-be/pkg/assemble"
	"construction-assist-be/pkg/citation"
	"construction-assist-be/pkg/llm"
	"construction-assist-be/pkg/tasks"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// IChatService defines the chat service interface
type IChatService interface {
	CreateConversation(ctx context.Context, request *dto.CreateConversationRequest) (*dto.CreateConversationResponse, error)
	GetAllConversations(ctx context.Context) ([]*dto.GetAllConversationsResponse, error)
	GetChatHistory(ctx context.Context, conversationId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	OpenStream(ctx context.Context, request *dto.SendChatRequest) (*StreamHandle, error)
	DeleteConversation(ctx context.Context, request *dto.DeleteConversationRequest) error
}

// StreamHandle is one in-flight streamed generation. Deltas carries the
// token increments; Finish persists the completed answer exactly once and
// returns the persisted message id for the terminal frame.
type StreamHandle struct {
	Deltas <-chan llm.Delta
	Finish func(answer string) string
}

type chatService struct {
	uowFactory  unitofwork.RepositoryFactory
	llmProvider llm.LLMProvider
	assembler   *assemble.Assembler
	extractor   *citation.Extractor
	publisher   IPublisherService

	// Optional task trackers, nil when no credential is configured.
	asanaProvider  tasks.Provider
	mondayProvider tasks.Provider

	logger logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	assembler *assemble.Assembler,
	extractor *citation.Extractor,
	publisher IPublisherService,
	asanaProvider tasks.Provider,
	mondayProvider tasks.Provider,
	logger logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		llmProvider:    llmProvider,
		assembler:      assembler,
		extractor:      extractor,
		publisher:      publisher,
		asanaProvider:  asanaProvider,
		mondayProvider: mondayProvider,
		logger:         logger,
	}
}

// CreateConversation creates a new conversation
func (cs *chatService) CreateConversation(ctx context.Context, request *dto.CreateConversationRequest) (*dto.CreateConversationResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation := entity.Conversation{
		Id:             uuid.New(),
		Name:           request.Name,
		SlackChannelId: request.SlackChannelId,
		AsanaProjectId: request.AsanaProjectId,
		MondayBoardId:  request.MondayBoardId,
		PromptTemplate: request.PromptTemplate,
		CreatedAt:      time.Now(),
	}

	if err := uow.ConversationRepository().Create(ctx, &conversation); err != nil {
		return nil, err
	}

	return &dto.CreateConversationResponse{Id: conversation.Id}, nil
}

// GetAllConversations retrieves all conversations
func (cs *chatService) GetAllConversations(ctx context.Context) ([]*dto.GetAllConversationsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllConversationsResponse, 0, len(conversations))
	for _, c := range conversations {
		response = append(response, &dto.GetAllConversationsResponse{
			Id:        c.Id,
			Name:      c.Name,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	return response, nil
}

// GetChatHistory retrieves chat history for a conversation
func (cs *chatService) GetChatHistory(ctx context.Context, conversationId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "conversation not found")
	}

	chatMessages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	messageIds := make([]uuid.UUID, len(chatMessages))
	for i, msg := range chatMessages {
		messageIds[i] = msg.Id
	}

	citations, err := uow.ChatCitationRepository().FindAllByMessageIds(ctx, messageIds)
	if err != nil {
		return nil, err
	}
	citationByMsgId := make(map[uuid.UUID]string)
	for _, c := range citations {
		citationByMsgId[c.ChatMessageId] = c.Source
	}

	response := make([]*dto.GetChatHistoryResponse, 0, len(chatMessages))
	for _, msg := range chatMessages {
		response = append(response, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Chat:      msg.Chat,
			CreatedAt: msg.CreatedAt,
			Citation:  citationByMsgId[msg.Id],
		})
	}
	return response, nil
}

// SendChat answers one question as a single blocking response.
func (cs *chatService) SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	conversation, assembled, err := cs.prepare(ctx, request)
	if err != nil {
		return nil, err
	}

	userMessage, err := cs.persistUserMessage(ctx, request)
	if err != nil {
		return nil, err
	}

	answer, err := cs.llmProvider.Chat(ctx, buildPromptMessages(assembled, request.Chat))
	if err != nil {
		cs.logger.Error(constant.ModuleChat, "Generation failed", map[string]interface{}{
			"conversation_id": conversation.Id.String(),
			"error":           err.Error(),
		})
		return &dto.SendChatResponse{
			ConversationId: conversation.Id,
			Sent:           toResponseChat(userMessage, ""),
			Reply: &dto.SendChatResponseChat{
				Id:        uuid.New(),
				Chat:      constant.GenerationFailedReply,
				Role:      constant.ChatMessageRoleModel,
				CreatedAt: time.Now(),
			},
		}, nil
	}

	modelMessage, extracted := cs.persistAnswer(ctx, conversation.Id, answer)

	return &dto.SendChatResponse{
		ConversationId: conversation.Id,
		Sent:           toResponseChat(userMessage, ""),
		Reply:          toResponseChat(modelMessage, extracted.Citation),
	}, nil
}

// OpenStream starts a streamed generation. An error return means no
// generation has begun and the caller should answer with a JSON error
// status; once a handle is returned, failures surface on the delta
// channel instead.
func (cs *chatService) OpenStream(ctx context.Context, request *dto.SendChatRequest) (*StreamHandle, error) {
	conversation, assembled, err := cs.prepare(ctx, request)
	if err != nil {
		return nil, err
	}

	if _, err := cs.persistUserMessage(ctx, request); err != nil {
		return nil, err
	}

	deltas, err := cs.llmProvider.ChatStream(ctx, buildPromptMessages(assembled, request.Chat))
	if err != nil {
		return nil, err
	}

	return &StreamHandle{
		Deltas: deltas,
		Finish: func(answer string) string {
			modelMessage, _ := cs.persistAnswer(ctx, conversation.Id, answer)
			return modelMessage.Id.String()
		},
	}, nil
}

// DeleteConversation removes a conversation with its messages, citations
// and document registrations.
func (cs *chatService) DeleteConversation(ctx context.Context, request *dto.DeleteConversationRequest) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: request.ConversationId})
	if err != nil {
		return err
	}
	if conversation == nil {
		return fiber.NewError(fiber.StatusNotFound, "conversation not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatCitationRepository().DeleteByConversationId(ctx, request.ConversationId); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().DeleteByConversationId(ctx, request.ConversationId); err != nil {
		return err
	}
	if err := uow.ConversationRepository().Delete(ctx, request.ConversationId); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	cs.announceChange(ctx, request.ConversationId)
	return nil
}

// prepare verifies the conversation and assembles its prompt context.
func (cs *chatService) prepare(ctx context.Context, request *dto.SendChatRequest) (*entity.Conversation, assemble.Result, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: request.ConversationId})
	if err != nil {
		return nil, assemble.Result{}, err
	}
	if conversation == nil {
		return nil, assemble.Result{}, fiber.NewError(fiber.StatusNotFound, "conversation not found")
	}

	assembled := cs.assembler.Assemble(ctx, assemble.Request{
		ConversationID:   conversation.Id,
		ConversationName: conversation.Name,
		ChannelID:        conversation.SlackChannelId,
		TaskSources:      cs.taskSources(conversation),
		TemplateOverride: conversation.PromptTemplate,
	})

	if assembled.DiagnosticChunks > 0 {
		cs.logger.Warn(constant.ModuleChat, "Some documents failed extraction", map[string]interface{}{
			"conversation_id": conversation.Id.String(),
			"failed_chunks":   assembled.DiagnosticChunks,
		})
	}

	return conversation, assembled, nil
}

func (cs *chatService) taskSources(conversation *entity.Conversation) []assemble.TaskSource {
	var sources []assemble.TaskSource
	if cs.asanaProvider != nil && conversation.AsanaProjectId != "" {
		sources = append(sources, assemble.TaskSource{
			Provider:  cs.asanaProvider,
			ProjectID: conversation.AsanaProjectId,
		})
	}
	if cs.mondayProvider != nil && conversation.MondayBoardId != "" {
		sources = append(sources, assemble.TaskSource{
			Provider:  cs.mondayProvider,
			ProjectID: conversation.MondayBoardId,
		})
	}
	return sources
}

func (cs *chatService) persistUserMessage(ctx context.Context, request *dto.SendChatRequest) (*entity.ChatMessage, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	userMessage := entity.ChatMessage{
		Id:             uuid.New(),
		Chat:           request.Chat,
		Role:           constant.ChatMessageRoleUser,
		ConversationId: request.ConversationId,
		CreatedAt:      time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}
	return &userMessage, nil
}

// persistAnswer extracts the citation and writes the model message plus
// its citation row. Persistence is best-effort: a failed write is logged
// and the answer still reaches the client.
func (cs *chatService) persistAnswer(ctx context.Context, conversationId uuid.UUID, answer string) (*entity.ChatMessage, citation.Result) {
	extracted := cs.extractor.Extract(answer)
	now := time.Now()

	modelMessage := &entity.ChatMessage{
		Id:             uuid.New(),
		Chat:           extracted.VisibleText,
		Role:           constant.ChatMessageRoleModel,
		ConversationId: conversationId,
		CreatedAt:      now,
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		cs.logger.Error(constant.ModuleChat, "Failed to persist answer", map[string]interface{}{"error": err.Error()})
		return modelMessage, extracted
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, modelMessage); err != nil {
		cs.logger.Error(constant.ModuleChat, "Failed to persist answer", map[string]interface{}{"error": err.Error()})
		return modelMessage, extracted
	}
	chatCitation := &entity.ChatCitation{
		Id:            uuid.New(),
		ChatMessageId: modelMessage.Id,
		Source:        extracted.Citation,
		CreatedAt:     now,
	}
	if err := uow.ChatCitationRepository().Create(ctx, chatCitation); err != nil {
		cs.logger.Error(constant.ModuleChat, "Failed to persist citation", map[string]interface{}{"error": err.Error()})
		return modelMessage, extracted
	}
	if err := uow.Commit(); err != nil {
		cs.logger.Error(constant.ModuleChat, "Failed to persist answer", map[string]interface{}{"error": err.Error()})
	}
	return modelMessage, extracted
}

func (cs *chatService) announceChange(ctx context.Context, conversationId uuid.UUID) {
	payload, err := json.Marshal(dto.DocumentChangedMessage{ConversationId: conversationId})
	if err != nil {
		return
	}
	if err := cs.publisher.Publish(ctx, payload); err != nil {
		cs.logger.Warn(constant.ModuleChat, "Failed to publish conversation event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func buildPromptMessages(assembled assemble.Result, question string) []llm.Message {
	system := assembled.SystemInstructions
	if assembled.PromptContext != "" {
		system += "\n\nCONTEXT:\n" + assembled.PromptContext
	}
	return []llm.Message{
		{Role: "system", Content: system},
		{Role: constant.ChatMessageRoleUser, Content: question},
	}
}

func toResponseChat(msg *entity.ChatMessage, source string) *dto.SendChatResponseChat {
	return &dto.SendChatResponseChat{
		Id:        msg.Id,
		Chat:      msg.Chat,
		Role:      msg.Role,
		CreatedAt: msg.CreatedAt,
		Citation:  source,
	}
}
