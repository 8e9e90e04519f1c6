package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"porchlight/internal/models"
	"porchlight/internal/services"
	"porchlight/internal/utils/logger"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskHandler processes background tasks.
type TaskHandler struct {
	db      *gorm.DB
	chats   *services.ChatStore
	goformz *services.GoFormzClient
	storage *services.S3Service
	logger  *logger.Logger
}

// NewTaskHandler creates a new TaskHandler. storage may be nil when S3 is not
// configured; archive tasks then fail fast without retrying.
func NewTaskHandler(db *gorm.DB, chats *services.ChatStore, goformz *services.GoFormzClient, storage *services.S3Service) *TaskHandler {
	return &TaskHandler{
		db:      db,
		chats:   chats,
		goformz: goformz,
		storage: storage,
		logger:  logger.New("TASKS"),
	}
}

// HandleChatNotify writes a notification document for every recipient of a
// chat message. Partial failures are retried for the whole batch; notify
// writes are idempotent per message because the preview and ids repeat.
func (h *TaskHandler) HandleChatNotify(ctx context.Context, t *asynq.Task) error {
	var task ChatNotifyTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return fmt.Errorf("failed to unmarshal chat notify task: %w", asynq.SkipRetry)
	}

	h.logger.Info("processing chat notify task for chat %s (%d recipients)",
		task.ChatID, len(task.Recipients))

	notification := services.Notification{
		ChatID:    task.ChatID,
		From:      task.From,
		Preview:   task.Preview,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}

	for _, recipient := range task.Recipients {
		if err := h.chats.Notify(ctx, recipient, notification); err != nil {
			return fmt.Errorf("failed to notify %s: %w", recipient, err)
		}
	}

	h.logger.Success("chat notify task completed for chat %s", task.ChatID)
	return nil
}

// HandleFormArchive downloads the PDF of a completed GoFormz form and stores
// it in S3, updating the archive record as it goes.
func (h *TaskHandler) HandleFormArchive(ctx context.Context, t *asynq.Task) error {
	var task FormArchiveTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return fmt.Errorf("failed to unmarshal form archive task: %w", asynq.SkipRetry)
	}

	h.logger.Info("processing form archive task for form %s (attempt %d)",
		task.FormID, task.AttemptNum)

	var archive models.FormArchive
	if err := h.db.First(&archive, "id = ?", task.ArchiveID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("archive record %s not found: %w", task.ArchiveID, asynq.SkipRetry)
		}
		return fmt.Errorf("failed to load archive record: %w", err)
	}

	if h.storage == nil {
		h.markArchiveFailed(&archive, "archive storage not configured")
		return fmt.Errorf("archive storage not configured: %w", asynq.SkipRetry)
	}

	pdf, err := h.goformz.GetFormPDF(ctx, task.FormID)
	if err != nil {
		archive.AttemptNum++
		archive.Error = err.Error()
		h.db.Save(&archive)
		return fmt.Errorf("failed to download form pdf: %w", err)
	}

	key := fmt.Sprintf("form-archives/%s.pdf", task.FormID)
	objectURL, err := h.storage.UploadBytes(ctx, key, "application/pdf", pdf)
	if err != nil {
		archive.AttemptNum++
		archive.Error = err.Error()
		h.db.Save(&archive)
		return fmt.Errorf("failed to upload form pdf: %w", err)
	}

	archive.Status = models.ArchiveStatusCompleted
	archive.ObjectURL = objectURL
	archive.Error = ""
	archive.ArchivedAt = time.Now().UTC()
	if err := h.db.Save(&archive).Error; err != nil {
		return fmt.Errorf("failed to update archive record: %w", err)
	}

	h.logger.Success("archived form %s to %s", task.FormID, objectURL)
	return nil
}

// HandleFormSync refreshes the local GoFormz template cache.
func (h *TaskHandler) HandleFormSync(ctx context.Context, t *asynq.Task) error {
	if !h.goformz.Enabled() {
		h.logger.Warn("skipping form sync, GoFormz token not configured")
		return nil
	}

	templates, err := h.goformz.ListTemplates(ctx)
	if err != nil {
		return fmt.Errorf("failed to list goformz templates: %w", err)
	}

	now := time.Now().UTC()
	for _, tpl := range templates {
		record := models.FormTemplate{
			GoFormzID: tpl.ID,
			Name:      tpl.Name,
			SyncedAt:  now,
		}
		err := h.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "go_formz_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "synced_at"}),
		}).Create(&record).Error
		if err != nil {
			return fmt.Errorf("failed to upsert template %s: %w", tpl.ID, err)
		}
	}

	h.logger.Success("form sync completed, %d templates", len(templates))
	return nil
}

func (h *TaskHandler) markArchiveFailed(archive *models.FormArchive, reason string) {
	archive.Status = models.ArchiveStatusFailed
	archive.Error = reason
	if err := h.db.Save(archive).Error; err != nil {
		_ = h.logger.Error("failed to mark archive failed", err)
	}
}
