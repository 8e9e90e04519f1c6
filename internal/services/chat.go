package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

const (
	chatCollection         = "chats"
	messageSubcollection   = "messages"
	userCollection         = "users"
	notificationCollection = "notifications"

	maxMessageLength = 4000
)

var (
	ErrNotParticipant  = errors.New("caller is not a participant of this chat")
	ErrChatNotFound    = errors.New("chat not found")
	ErrEmptyMessage    = errors.New("message text is empty")
	ErrMessageTooLong  = errors.New("message text exceeds maximum length")
	ErrChatUnavailable = errors.New("chat store not configured")
)

// ChatStore reads and writes the Firestore-backed chat feature. Documents
// live under chats/{chatID} with a messages subcollection; notifications
// live under users/{uid}/notifications.
type ChatStore struct {
	client *firestore.Client
}

type Chat struct {
	ID            string    `firestore:"-" json:"id"`
	Participants  []string  `firestore:"participants" json:"participants"`
	PropertyID    string    `firestore:"property_id" json:"propertyId"`
	LastMessageAt time.Time `firestore:"last_message_at" json:"lastMessageAt"`
}

type Message struct {
	ID     string    `firestore:"-" json:"id"`
	From   string    `firestore:"from" json:"from"`
	Text   string    `firestore:"text" json:"text"`
	SentAt time.Time `firestore:"sent_at" json:"sentAt"`
}

type Notification struct {
	ID        string    `firestore:"-" json:"id"`
	ChatID    string    `firestore:"chat_id" json:"chatId"`
	From      string    `firestore:"from" json:"from"`
	Preview   string    `firestore:"preview" json:"preview"`
	Read      bool      `firestore:"read" json:"read"`
	CreatedAt time.Time `firestore:"created_at" json:"createdAt"`
}

// NewChatStore wraps a Firestore client. The client may be nil when Firebase
// is disabled; every method then fails with ErrChatUnavailable.
func NewChatStore(client *firestore.Client) *ChatStore {
	return &ChatStore{client: client}
}

func (s *ChatStore) Enabled() bool {
	return s.client != nil
}

// Chat loads chat metadata. Returns ErrChatNotFound for missing documents.
func (s *ChatStore) Chat(ctx context.Context, chatID string) (*Chat, error) {
	if s.client == nil {
		return nil, ErrChatUnavailable
	}

	doc, err := s.client.Collection(chatCollection).Doc(chatID).Get(ctx)
	if err != nil {
		return nil, ErrChatNotFound
	}

	chat := Chat{}
	if err := doc.DataTo(&chat); err != nil {
		return nil, fmt.Errorf("failed to decode chat %s: %w", chatID, err)
	}
	chat.ID = doc.Ref.ID
	return &chat, nil
}

// History returns the messages of a chat in send order. The caller must be a
// participant; this is the access predicate applied before any data leaves
// the store.
func (s *ChatStore) History(ctx context.Context, chatID, callerUID string) ([]Message, error) {
	chat, err := s.Chat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(chat.Participants, callerUID) {
		return nil, ErrNotParticipant
	}

	iter := s.client.Collection(chatCollection).Doc(chatID).
		Collection(messageSubcollection).
		OrderBy("sent_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var messages []Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate messages for chat %s: %w", chatID, err)
		}

		m := Message{}
		if err := doc.DataTo(&m); err != nil {
			return nil, fmt.Errorf("failed to decode message %s: %w", doc.Ref.ID, err)
		}
		m.ID = doc.Ref.ID
		messages = append(messages, m)
	}
	return messages, nil
}

// SendMessage appends a message to a chat the caller participates in and
// returns the stored message plus the recipients to notify.
func (s *ChatStore) SendMessage(ctx context.Context, chatID, callerUID, text string) (*Message, []string, error) {
	if err := validateMessageText(text); err != nil {
		return nil, nil, err
	}

	chat, err := s.Chat(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	if !isParticipant(chat.Participants, callerUID) {
		return nil, nil, ErrNotParticipant
	}

	msg := Message{
		From:   callerUID,
		Text:   text,
		SentAt: time.Now().UTC(),
	}

	ref, _, err := s.client.Collection(chatCollection).Doc(chatID).
		Collection(messageSubcollection).
		Add(ctx, msg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to store message in chat %s: %w", chatID, err)
	}
	msg.ID = ref.ID

	_, err = s.client.Collection(chatCollection).Doc(chatID).Update(ctx, []firestore.Update{
		{Path: "last_message_at", Value: msg.SentAt},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update chat %s: %w", chatID, err)
	}

	return &msg, otherParticipants(chat.Participants, callerUID), nil
}

// Notify writes a notification document for a recipient.
func (s *ChatStore) Notify(ctx context.Context, recipientUID string, n Notification) error {
	if s.client == nil {
		return ErrChatUnavailable
	}

	_, _, err := s.client.Collection(userCollection).Doc(recipientUID).
		Collection(notificationCollection).
		Add(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to store notification for %s: %w", recipientUID, err)
	}
	return nil
}

// Notifications returns the caller's unread notifications, newest first.
// Scoping by document path makes reading another user's feed impossible.
func (s *ChatStore) Notifications(ctx context.Context, callerUID string) ([]Notification, error) {
	if s.client == nil {
		return nil, ErrChatUnavailable
	}

	iter := s.client.Collection(userCollection).Doc(callerUID).
		Collection(notificationCollection).
		Where("read", "==", false).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var notifications []Notification
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate notifications for %s: %w", callerUID, err)
		}

		n := Notification{}
		if err := doc.DataTo(&n); err != nil {
			return nil, fmt.Errorf("failed to decode notification %s: %w", doc.Ref.ID, err)
		}
		n.ID = doc.Ref.ID
		notifications = append(notifications, n)
	}
	return notifications, nil
}

// MarkNotificationRead flags one of the caller's notifications as read.
func (s *ChatStore) MarkNotificationRead(ctx context.Context, callerUID, notificationID string) error {
	if s.client == nil {
		return ErrChatUnavailable
	}

	_, err := s.client.Collection(userCollection).Doc(callerUID).
		Collection(notificationCollection).Doc(notificationID).
		Update(ctx, []firestore.Update{
			{Path: "read", Value: true},
		})
	if err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", notificationID, err)
	}
	return nil
}

func isParticipant(participants []string, uid string) bool {
	for _, p := range participants {
		if p == uid {
			return true
		}
	}
	return false
}

func otherParticipants(participants []string, uid string) []string {
	var others []string
	for _, p := range participants {
		if p != uid {
			others = append(others, p)
		}
	}
	return others
}

func validateMessageText(text string) error {
	if text == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// MessagePreview shortens message text for notification documents.
func MessagePreview(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max]) + "…"
}
