package realtime

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"rideshare_go/internal/domain"
)

// Command is one decoded inbound frame: SendMessage, MarkRead or Typing.
type Command interface {
	command()
}

type SendMessage struct {
	ToUserID      int64              `json:"to_user_id"`
	Content       string             `json:"content"`
	MessageType   domain.MessageType `json:"message_type"`
	RideReference *int64             `json:"ride_reference,omitempty"`
}

type MarkRead struct {
	FromUserID int64 `json:"from_user_id"`
}

// Typing is decoded from either typing:start or typing:stop.
type Typing struct {
	ToUserID int64 `json:"to_user_id"`
	IsTyping bool  `json:"-"`
}

func (SendMessage) command() {}
func (MarkRead) command()    {}
func (Typing) command()      {}

type inbound struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// DecodeCommand parses a raw frame into a typed command. Every failure wraps
// domain.ErrValidation; the event name is returned whenever it could be read.
func DecodeCommand(raw []byte) (string, Command, error) {
	var env inbound
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", nil, domain.ValidationError("malformed frame")
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return env.Name, nil, domain.ValidationError("missing data for %s", env.Name)
	}

	switch env.Name {
	case EventSendMessage:
		var c SendMessage
		if err := json.Unmarshal(env.Data, &c); err != nil {
			return env.Name, nil, domain.ValidationError("invalid message payload")
		}
		if c.MessageType == 0 {
			c.MessageType = domain.MessageTypeText
		}
		if c.ToUserID <= 0 {
			return env.Name, nil, domain.ValidationError("to_user_id is required")
		}
		return env.Name, c, nil

	case EventMarkRead:
		var c MarkRead
		if err := json.Unmarshal(env.Data, &c); err != nil || c.FromUserID <= 0 {
			return env.Name, nil, domain.ValidationError("from_user_id is required")
		}
		return env.Name, c, nil

	case EventTypingStart, EventTypingStop:
		var c Typing
		if err := json.Unmarshal(env.Data, &c); err != nil || c.ToUserID <= 0 {
			return env.Name, nil, domain.ValidationError("to_user_id is required")
		}
		c.IsTyping = env.Name == EventTypingStart
		return env.Name, c, nil
	}

	return env.Name, nil, domain.ValidationError("unknown event %q", env.Name)
}

// Validate checks a send command issued by senderID.
func (c SendMessage) Validate(senderID int64, maxLength int) error {
	if c.ToUserID <= 0 {
		return domain.ValidationError("to_user_id is required")
	}
	if c.ToUserID == senderID {
		return domain.ValidationError("cannot send a message to yourself")
	}
	if strings.TrimSpace(c.Content) == "" {
		return domain.ValidationError("content must not be empty")
	}
	if maxLength > 0 && utf8.RuneCountInString(c.Content) > maxLength {
		return domain.ValidationError("content exceeds %d characters", maxLength)
	}
	if !c.MessageType.Valid() {
		return domain.ValidationError("invalid message_type %d", c.MessageType)
	}
	return nil
}
