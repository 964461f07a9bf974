package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"construction-assist-be/internal/constant"
	"construction-assist-be/internal/dto"
	"construction-assist-be/internal/entity"
	"construction-assist-be/internal/pkg/logger"
	"construction-assist-be/internal/repository/specification"
	"construction-assist-be/internal/repository/unitofwork"
	"construction-assist-be/pkg/contextcache"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentService interface {
	Upload(ctx context.Context, conversationId uuid.UUID, file *multipart.FileHeader) (*dto.UploadDocumentResponse, error)
	GetAll(ctx context.Context, conversationId uuid.UUID) ([]*dto.GetDocumentsResponse, error)
	Delete(ctx context.Context, conversationId uuid.UUID, documentId uuid.UUID) error
	DeleteFromLibrary(ctx context.Context, documentId uuid.UUID) error

	// ListDocuments satisfies the context cache's document source.
	ListDocuments(ctx context.Context, conversationId uuid.UUID) ([]contextcache.DocumentRef, error)
}

type documentService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IPublisherService
	uploadDir  string
	logger     logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisher IPublisherService,
	uploadDir string,
	logger logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory: uowFactory,
		publisher:  publisher,
		uploadDir:  uploadDir,
		logger:     logger,
	}
}

// Upload persists the raw bytes and the client-declared media type, then
// registers the document and announces the change so cached context for
// the conversation is dropped.
func (ds *documentService) Upload(ctx context.Context, conversationId uuid.UUID, file *multipart.FileHeader) (*dto.UploadDocumentResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	conversation, err := uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: conversationId})
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "conversation not found")
	}

	documentId := uuid.New()
	destDir := filepath.Join(ds.uploadDir, conversationId.String())
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	destPath := filepath.Join(destDir, documentId.String()+"_"+filepath.Base(file.Filename))

	if err := saveUploadedFile(file, destPath); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	document := entity.Document{
		Id:             documentId,
		ConversationId: conversationId,
		FileName:       file.Filename,
		FilePath:       destPath,
		MediaType:      file.Header.Get("Content-Type"),
		SizeBytes:      file.Size,
	}
	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		os.Remove(destPath)
		return nil, err
	}

	ds.announceChange(ctx, conversationId, false)

	return &dto.UploadDocumentResponse{
		Id:        document.Id,
		FileName:  document.FileName,
		MediaType: document.MediaType,
		SizeBytes: document.SizeBytes,
		CreatedAt: document.CreatedAt,
	}, nil
}

func (ds *documentService) GetAll(ctx context.Context, conversationId uuid.UUID) ([]*dto.GetDocumentsResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetDocumentsResponse, 0, len(documents))
	for _, d := range documents {
		response = append(response, &dto.GetDocumentsResponse{
			Id:        d.Id,
			FileName:  d.FileName,
			MediaType: d.MediaType,
			SizeBytes: d.SizeBytes,
			CreatedAt: d.CreatedAt,
		})
	}
	return response, nil
}

// Delete removes a document through its conversation's surface.
func (ds *documentService) Delete(ctx context.Context, conversationId uuid.UUID, documentId uuid.UUID) error {
	if err := ds.remove(ctx, documentId, &conversationId); err != nil {
		return err
	}
	ds.announceChange(ctx, conversationId, false)
	return nil
}

// DeleteFromLibrary removes a document from the global library surface.
// The caller's view carries no conversation scope, so every cached
// context is flushed.
func (ds *documentService) DeleteFromLibrary(ctx context.Context, documentId uuid.UUID) error {
	if err := ds.remove(ctx, documentId, nil); err != nil {
		return err
	}
	ds.announceChange(ctx, uuid.Nil, true)
	return nil
}

func (ds *documentService) remove(ctx context.Context, documentId uuid.UUID, conversationId *uuid.UUID) error {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{specification.ByID{ID: documentId}}
	if conversationId != nil {
		specs = append(specs, specification.ByConversationID{ConversationID: *conversationId})
	}

	document, err := uow.DocumentRepository().FindOne(ctx, specs...)
	if err != nil {
		return err
	}
	if document == nil {
		return fiber.NewError(fiber.StatusNotFound, "document not found")
	}

	if err := uow.DocumentRepository().Delete(ctx, documentId); err != nil {
		return err
	}

	if err := os.Remove(document.FilePath); err != nil && !os.IsNotExist(err) {
		ds.logger.Warn(constant.ModuleDocument, "Failed to remove document file", map[string]interface{}{
			"path":  document.FilePath,
			"error": err.Error(),
		})
	}
	return nil
}

// ListDocuments implements the context cache's document source.
func (ds *documentService) ListDocuments(ctx context.Context, conversationId uuid.UUID) ([]contextcache.DocumentRef, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	refs := make([]contextcache.DocumentRef, 0, len(documents))
	for _, d := range documents {
		refs = append(refs, contextcache.DocumentRef{
			FilePath:  d.FilePath,
			MediaType: d.MediaType,
		})
	}
	return refs, nil
}

func (ds *documentService) announceChange(ctx context.Context, conversationId uuid.UUID, global bool) {
	payload, err := json.Marshal(dto.DocumentChangedMessage{
		ConversationId: conversationId,
		Global:         global,
	})
	if err != nil {
		return
	}
	if err := ds.publisher.Publish(ctx, payload); err != nil {
		ds.logger.Warn(constant.ModuleDocument, "Failed to publish document event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func saveUploadedFile(file *multipart.FileHeader, destPath string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
