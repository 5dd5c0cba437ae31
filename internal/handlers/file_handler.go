package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fileflow-backend/internal/models"
	"fileflow-backend/internal/queue"
)

type FileStore interface {
	Create(ctx context.Context, file *models.FileRecord) error
	GetByID(ctx context.Context, fileID string) (*models.FileRecord, error)
	List(ctx context.Context) ([]models.FileRecord, error)
	ListByProcessed(ctx context.Context, processed bool) ([]models.FileRecord, error)
}

type FailureLister interface {
	ListFailures(ctx context.Context, fileID string) ([]models.FileFailure, error)
}

type FileHandler struct {
	files     FileStore
	failures  FailureLister
	publisher queue.Publisher
	queueName string
	logger    *zap.Logger
}

func NewFileHandler(files FileStore, failures FailureLister, publisher queue.Publisher, queueName string, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		files:     files,
		failures:  failures,
		publisher: publisher,
		queueName: queueName,
		logger:    logger,
	}
}

// Upload records the file as pending and queues it for validation.
func (h *FileHandler) Upload(c *gin.Context) {
	fileID := strings.TrimSpace(c.PostForm("file_id"))
	userID := strings.TrimSpace(c.PostForm("userid"))
	username := strings.TrimSpace(c.PostForm("username"))
	role := strings.TrimSpace(c.PostForm("role"))

	if fileID == "" || userID == "" || username == "" || role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_id, userid, username and role are required"})
		return
	}
	if role != models.RoleAdmin && role != models.RoleUser {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be admin or user"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	if !utf8.Valid(content) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file must be UTF-8 encoded text"})
		return
	}
	// jsonb rejects \u0000.
	if bytes.IndexByte(content, 0) >= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file must not contain NUL bytes"})
		return
	}

	record := &models.FileRecord{
		FileID:   fileID,
		Filename: header.Filename,
		UserID:   userID,
		Username: username,
		Role:     role,
	}
	if err := h.files.Create(c.Request.Context(), record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "file_id already exists"})
			return
		}
		h.logger.Error("failed to save file record", zap.String("file_id", fileID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	msg := models.FileSubmitted{FileID: fileID, Filename: header.Filename, FileContent: string(content)}
	if err := queue.PublishJSON(c.Request.Context(), h.publisher, h.queueName, msg); err != nil {
		h.logger.Error("failed to queue file", zap.String("file_id", fileID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to queue file"})
		return
	}

	h.logger.Info("file queued",
		zap.String("file_id", fileID),
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
	)
	c.JSON(http.StatusOK, gin.H{
		"status":   "queued",
		"file_id":  fileID,
		"filename": header.Filename,
	})
}

func (h *FileHandler) ListFiles(c *gin.Context) {
	files, err := h.files.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if files == nil {
		files = []models.FileRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (h *FileHandler) GetFile(c *gin.Context) {
	file, err := h.files.GetByID(c.Request.Context(), c.Param("file_id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"file_id":      file.FileID,
		"filename":     file.Filename,
		"processed":    file.Processed,
		"processed_at": file.ProcessedAt,
		"status":       file.Status(),
	})
}

// ListProcessed takes true or false; an empty result is a 404.
func (h *FileHandler) ListProcessed(c *gin.Context) {
	processed, err := strconv.ParseBool(c.Param("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be true or false"})
		return
	}

	files, err := h.files.ListByProcessed(c.Request.Context(), processed)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(files) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	c.JSON(http.StatusOK, files)
}

func (h *FileHandler) ListFailures(c *gin.Context) {
	fileID := c.Param("file_id")
	if _, err := h.files.GetByID(c.Request.Context(), fileID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	failures, err := h.failures.ListFailures(c.Request.Context(), fileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if failures == nil {
		failures = []models.FileFailure{}
	}
	c.JSON(http.StatusOK, gin.H{"file_id": fileID, "failures": failures})
}
