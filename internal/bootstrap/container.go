package bootstrap

import (
	"log"
	"os"
	"time"

	"construction-assist-be/internal/config"
	"construction-assist-be/internal/controller"
	"construction-assist-be/internal/pkg/logger"
	"construction-assist-be/internal/repository/unitofwork"
	"construction-assist-be/internal/service"
	"construction-assist-be/pkg/assemble"
	"construction-assist-be/pkg/channel"
	"construction-assist-be/pkg/channel/slack"
	"construction-assist-be/pkg/citation"
	"construction-assist-be/pkg/contextcache"
	"construction-assist-be/pkg/llm/factory"
	"construction-assist-be/pkg/normalize"
	"construction-assist-be/pkg/stream"
	"construction-assist-be/pkg/tasks"
	"construction-assist-be/pkg/tasks/asana"
	"construction-assist-be/pkg/tasks/monday"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	InvalidationService service.IInvalidationService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	pipelineLogger := log.New(os.Stdout, "", log.LstdFlags)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	publisherService := service.NewPublisherService(cfg.Pipeline.DocumentTopic, pubSub)

	// 3. Document pipeline
	documentService := service.NewDocumentService(
		uowFactory,
		publisherService,
		cfg.App.UploadDir,
		sysLogger,
	)

	normalizer := normalize.NewNormalizer(cfg.Pipeline.SectionLines, pipelineLogger)
	cache := contextcache.New(normalizer, documentService, pipelineLogger)

	invalidationService := service.NewInvalidationService(
		pubSub,
		cfg.Pipeline.DocumentTopic,
		cache,
		sysLogger,
	)

	// 4. External sources, each optional on its credential
	var history channel.HistoryProvider
	if cfg.Keys.Slack != "" {
		history = slack.NewSlackClient(cfg.Keys.Slack)
		log.Println("[INFO] Slack channel history enabled")
	}

	var asanaProvider, mondayProvider tasks.Provider
	if cfg.Keys.Asana != "" {
		asanaProvider = asana.NewAsanaClient(cfg.Keys.Asana)
		log.Println("[INFO] Asana task tracker enabled")
	}
	if cfg.Keys.Monday != "" {
		mondayProvider = monday.NewMondayClient(cfg.Keys.Monday)
		log.Println("[INFO] Monday task tracker enabled")
	}

	assembler := assemble.NewAssembler(
		cache,
		history,
		assemble.FormatOptions{
			MessagePrefix:    "Slack message",
			IncludeSpeaker:   cfg.Pipeline.IncludeSpeaker,
			IncludeTimestamp: cfg.Pipeline.IncludeTimestamp,
		},
		cfg.Pipeline.PromptTemplate,
		pipelineLogger,
	)

	// 5. Generation
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	extractor := citation.NewExtractor(cfg.Pipeline.MandatoryAttribution)

	responder := stream.NewResponder(
		cfg.Pipeline.SplitThreshold,
		cfg.Pipeline.GroupWords,
		time.Duration(cfg.Pipeline.PaceDelayMs)*time.Millisecond,
		pipelineLogger,
	)

	chatService := service.NewChatService(
		uowFactory,
		llmProvider,
		assembler,
		extractor,
		publisherService,
		asanaProvider,
		mondayProvider,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		ChatController:     controller.NewChatController(chatService, responder, sysLogger),
		DocumentController: controller.NewDocumentController(documentService),

		InvalidationService: invalidationService,
	}
}
