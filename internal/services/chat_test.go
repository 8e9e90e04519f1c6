package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestIsParticipant(t *testing.T) {
	participants := []string{"uid-agent", "uid-resident"}

	tests := []struct {
		name string
		uid  string
		want bool
	}{
		{name: "member", uid: "uid-agent", want: true},
		{name: "other member", uid: "uid-resident", want: true},
		{name: "outsider", uid: "uid-stranger", want: false},
		{name: "empty uid", uid: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isParticipant(participants, tt.uid); got != tt.want {
				t.Errorf("isParticipant(%q) = %v, want %v", tt.uid, got, tt.want)
			}
		})
	}
}

func TestIsParticipantEmptyChat(t *testing.T) {
	if isParticipant(nil, "uid-agent") {
		t.Error("expected no participants to match on an empty chat")
	}
}

func TestOtherParticipants(t *testing.T) {
	tests := []struct {
		name         string
		participants []string
		uid          string
		want         []string
	}{
		{
			name:         "two party chat",
			participants: []string{"a", "b"},
			uid:          "a",
			want:         []string{"b"},
		},
		{
			name:         "group chat",
			participants: []string{"a", "b", "c"},
			uid:          "b",
			want:         []string{"a", "c"},
		},
		{
			name:         "sender not listed",
			participants: []string{"a", "b"},
			uid:          "z",
			want:         []string{"a", "b"},
		},
		{
			name:         "empty chat",
			participants: nil,
			uid:          "a",
			want:         nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := otherParticipants(tt.participants, tt.uid)
			if len(got) != len(tt.want) {
				t.Fatalf("otherParticipants() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("otherParticipants()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestValidateMessageText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{name: "valid", text: "is the apartment still available?", wantErr: nil},
		{name: "empty", text: "", wantErr: ErrEmptyMessage},
		{name: "at limit", text: strings.Repeat("a", maxMessageLength), wantErr: nil},
		{name: "over limit", text: strings.Repeat("a", maxMessageLength+1), wantErr: ErrMessageTooLong},
		{name: "multibyte at limit", text: strings.Repeat("ä", maxMessageLength), wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateMessageText(tt.text)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validateMessageText() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMessagePreview(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{name: "short text untouched", text: "hello", max: 10, want: "hello"},
		{name: "exact length untouched", text: "hello", max: 5, want: "hello"},
		{name: "truncated with ellipsis", text: "hello world", max: 5, want: "hello…"},
		{name: "multibyte safe", text: "héllo wörld", max: 5, want: "héllo…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MessagePreview(tt.text, tt.max); got != tt.want {
				t.Errorf("MessagePreview(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
			}
		})
	}
}

func TestChatStoreDisabled(t *testing.T) {
	store := NewChatStore(nil)

	if store.Enabled() {
		t.Fatal("expected store without a client to report disabled")
	}

	if _, err := store.Chat(context.Background(), "chat-1"); !errors.Is(err, ErrChatUnavailable) {
		t.Errorf("Chat() error = %v, want ErrChatUnavailable", err)
	}
	if _, err := store.Notifications(context.Background(), "uid-1"); !errors.Is(err, ErrChatUnavailable) {
		t.Errorf("Notifications() error = %v, want ErrChatUnavailable", err)
	}
	if err := store.MarkNotificationRead(context.Background(), "uid-1", "n-1"); !errors.Is(err, ErrChatUnavailable) {
		t.Errorf("MarkNotificationRead() error = %v, want ErrChatUnavailable", err)
	}
}
