// Package gateway provides inbound message transports. Chat gateway daemons
// forward message events as newline-delimited JSON over TCP; a stdin variant
// exists for local runs and piping.
package gateway

import (
	"time"

	"github.com/dotfriends/asca/internal/core"
)

// Event kinds accepted on the wire.
const (
	eventMessage = "message"
	eventEdit    = "message_edit"
)

// wireEvent is one newline-delimited JSON event from a gateway daemon.
type wireEvent struct {
	Type            string      `json:"type"`
	Message         wireMessage `json:"message"`
	PreviousContent string      `json:"previous_content,omitempty"`
}

type wireMessage struct {
	ID            string      `json:"id"`
	TenantID      string      `json:"tenant_id"`
	ChannelID     string      `json:"channel_id"`
	Author        wireAuthor  `json:"author"`
	Content       string      `json:"content"`
	Stickers      []string    `json:"stickers,omitempty"`
	Embeds        []wireEmbed `json:"embeds,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	DirectMessage bool        `json:"direct_message,omitempty"`
}

type wireAuthor struct {
	ID      string `json:"id"`
	Tag     string `json:"tag"`
	Mention string `json:"mention"`
	Member  bool   `json:"member"`
	Bot     bool   `json:"bot"`
}

type wireEmbed struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
}

func (w *wireMessage) toCore() *core.Message {
	msg := &core.Message{
		ID:            w.ID,
		TenantID:      w.TenantID,
		ChannelID:     w.ChannelID,
		Content:       w.Content,
		Stickers:      w.Stickers,
		CreatedAt:     w.CreatedAt,
		DirectMessage: w.DirectMessage,
		Author: core.Author{
			ID:      w.Author.ID,
			Tag:     w.Author.Tag,
			Mention: w.Author.Mention,
			Member:  w.Author.Member,
			Bot:     w.Author.Bot,
		},
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	for _, e := range w.Embeds {
		msg.Embeds = append(msg.Embeds, core.Embed{Provider: e.Provider, URL: e.URL})
	}
	return msg
}

// shouldProcess filters events that never enter the pipeline: unknown kinds
// and edits that did not change the content.
func shouldProcess(ev *wireEvent) bool {
	switch ev.Type {
	case eventMessage, "":
		return true
	case eventEdit:
		return ev.PreviousContent != ev.Message.Content
	default:
		return false
	}
}
