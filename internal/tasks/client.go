package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"porchlight/internal/utils/logger"

	"github.com/hibiken/asynq"
)

// TaskClient handles task enqueuing with improved error handling and context support
type TaskClient struct {
	client *asynq.Client
	logger *logger.Logger
}

func (c *TaskClient) GetClient() *asynq.Client {
	return c.client
}

// NewTaskClient creates a new TaskClient with the given Redis configuration
func NewTaskClient(redisAddr, username, password string, db int) *TaskClient {
	redisOpt := asynq.RedisClientOpt{
		Addr:     redisAddr,
		Username: username,
		Password: password,
		DB:       db,
	}

	return &TaskClient{
		client: asynq.NewClient(redisOpt),
		logger: logger.New("TASKS"),
	}
}

// Close closes the underlying asynq client
func (c *TaskClient) Close() error {
	return c.client.Close()
}

// EnqueueChatNotify enqueues a notification fan-out for a chat message.
func (c *TaskClient) EnqueueChatNotify(ctx context.Context, task ChatNotifyTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal chat notify task: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx,
		asynq.NewTask(TaskTypeChatNotify, payload),
		asynq.Queue(QueueCritical),
		asynq.Timeout(TimeoutShort),
		asynq.MaxRetry(RetryDefault),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue chat notify task: %w", err)
	}

	c.logger.Info("Enqueued chat notify task [%s] in queue %s for chat %s",
		info.ID, info.Queue, task.ChatID)
	return nil
}

// EnqueueFormArchive enqueues the archival of a GoFormz submission PDF.
func (c *TaskClient) EnqueueFormArchive(ctx context.Context, task FormArchiveTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal form archive task: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx,
		asynq.NewTask(TaskTypeFormArchive, payload),
		asynq.Queue(QueueDefault),
		asynq.Timeout(TimeoutMedium),
		asynq.MaxRetry(RetryMax),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue form archive task: %w", err)
	}

	c.logger.Info("Enqueued form archive task [%s] in queue %s for form %s",
		info.ID, info.Queue, task.FormID)
	return nil
}

// EnqueueFormSync enqueues a GoFormz template sync.
func (c *TaskClient) EnqueueFormSync(ctx context.Context, task FormSyncTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal form sync task: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx,
		asynq.NewTask(TaskTypeFormSync, payload),
		asynq.Queue(QueueLow),
		asynq.Timeout(TimeoutLong),
		asynq.MaxRetry(RetryMin),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue form sync task: %w", err)
	}

	c.logger.Info("Enqueued form sync task [%s] in queue %s", info.ID, info.Queue)
	return nil
}
