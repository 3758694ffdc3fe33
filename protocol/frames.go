package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/saif-programmer/together/domain"
)

const (
	CmdFetchMessages   = "fetch_messages"
	CmdMessages        = "messages"
	CmdNewMessage      = "new_message"
	CmdNewCanvasCoords = "new_canvas_coords"
)

const anonymous = "anonymous"

// Command is a decoded client frame: FetchMessages, NewMessage or NewCanvasCoords.
type Command interface {
	Name() string
}

type FetchMessages struct{}

type NewMessage struct {
	Content string
	From    string
}

type NewCanvasCoords struct {
	OffsetX float64
	OffsetY float64
}

func (FetchMessages) Name() string   { return CmdFetchMessages }
func (NewMessage) Name() string      { return CmdNewMessage }
func (NewCanvasCoords) Name() string { return CmdNewCanvasCoords }

type inbound struct {
	Command string   `json:"command"`
	Message *string  `json:"message"`
	From    *string  `json:"from"`
	OffsetX *float64 `json:"offset_x"`
	OffsetY *float64 `json:"offset_y"`
}

// Decode parses a client frame. Any failure wraps domain.ErrMalformed.
func Decode(data []byte) (Command, error) {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformed, err)
	}

	switch in.Command {
	case CmdFetchMessages:
		return FetchMessages{}, nil
	case CmdNewMessage:
		if in.Message == nil {
			return nil, fmt.Errorf("%w: %s without message", domain.ErrMalformed, in.Command)
		}
		from := anonymous
		if in.From != nil {
			from = *in.From
		}
		return NewMessage{Content: *in.Message, From: from}, nil
	case CmdNewCanvasCoords:
		if in.OffsetX == nil || in.OffsetY == nil {
			return nil, fmt.Errorf("%w: %s without offsets", domain.ErrMalformed, in.Command)
		}
		return NewCanvasCoords{OffsetX: *in.OffsetX, OffsetY: *in.OffsetY}, nil
	case "":
		return nil, fmt.Errorf("%w: missing command", domain.ErrMalformed)
	default:
		return nil, fmt.Errorf("%w: unknown command %q", domain.ErrMalformed, in.Command)
	}
}

// MessageView is the wire form of a logged message.
type MessageView struct {
	ID        uint64    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type MessagesFrame struct {
	Command  string        `json:"command"`
	Messages []MessageView `json:"messages"`
}

type NewMessageFrame struct {
	Command string      `json:"command"`
	Message MessageView `json:"message"`
}

type CanvasCoordsFrame struct {
	Command string  `json:"command"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

func view(m domain.Message) MessageView {
	return MessageView{ID: m.ID, Author: m.Sender, Content: m.Content, Timestamp: m.CreatedAt}
}

func EncodeMessages(msgs []domain.Message) ([]byte, error) {
	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, view(m))
	}
	return json.Marshal(MessagesFrame{Command: CmdMessages, Messages: views})
}

func EncodeNewMessage(m domain.Message) ([]byte, error) {
	return json.Marshal(NewMessageFrame{Command: CmdNewMessage, Message: view(m)})
}

func EncodeCanvasCoords(x, y float64) ([]byte, error) {
	return json.Marshal(CanvasCoordsFrame{Command: CmdNewCanvasCoords, OffsetX: x, OffsetY: y})
}
