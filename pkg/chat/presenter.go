// Package chat implements the shopping-assistant conversation state:
// message history, per-message product batching, and session persistence.
package chat

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/studentstore/storefront-client/pkg/api"
)

// DefaultBatchSize is the number of products shown per bot message batch.
const DefaultBatchSize = 3

// ErrUnknownMessage is returned when a batch operation references a
// message id the presenter does not hold.
var ErrUnknownMessage = errors.New("unknown message")

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one entry of the conversation.
// Bot messages carry the full product result set of their chat turn;
// the visible slice is derived from CurrentBatch, never refetched.
type Message struct {
	ID           string        `json:"id"`
	Role         Role          `json:"role"`
	Content      string        `json:"content"`
	AllProducts  []api.Product `json:"all_products,omitempty"`
	CurrentBatch int           `json:"current_batch"`
}

// Batch is the visible product slice of a bot message.
type Batch struct {
	Products    []api.Product
	Index       int
	HasMore     bool
	HasPrevious bool
}

// Presenter holds the conversation and slices each bot message's products
// into fixed-size batches navigable forward and backward.
type Presenter struct {
	mu        sync.Mutex
	batchSize int
	order     []string
	messages  map[string]*Message
}

// NewPresenter creates a presenter with the given batch size
// (DefaultBatchSize if non-positive).
func NewPresenter(batchSize int) *Presenter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Presenter{
		batchSize: batchSize,
		messages:  make(map[string]*Message),
	}
}

// AddUserMessage appends a user message and returns it.
func (p *Presenter) AddUserMessage(content string) Message {
	return p.add(Message{
		ID:      uuid.NewString(),
		Role:    RoleUser,
		Content: content,
	})
}

// AddBotMessage appends a bot message holding the turn's full product set,
// positioned at batch 0.
func (p *Presenter) AddBotMessage(content string, products []api.Product) Message {
	return p.add(Message{
		ID:          uuid.NewString(),
		Role:        RoleBot,
		Content:     content,
		AllProducts: products,
	})
}

func (p *Presenter) add(message Message) Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.order = append(p.order, message.ID)
	p.messages[message.ID] = &message
	return message
}

// Messages returns the conversation in insertion order.
func (p *Presenter) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()

	messages := make([]Message, 0, len(p.order))
	for _, id := range p.order {
		messages = append(messages, *p.messages[id])
	}
	return messages
}

// Batch returns the currently visible slice for a message.
func (p *Presenter) Batch(messageID string) (Batch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	message, ok := p.messages[messageID]
	if !ok {
		return Batch{}, ErrUnknownMessage
	}
	return p.slice(message), nil
}

// Advance moves a message to its next batch, clamped at the last
// full-or-partial batch. Pure presentation: no network call.
func (p *Presenter) Advance(messageID string) (Batch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	message, ok := p.messages[messageID]
	if !ok {
		return Batch{}, ErrUnknownMessage
	}
	if message.CurrentBatch < p.lastBatch(message) {
		message.CurrentBatch++
	}
	return p.slice(message), nil
}

// Retreat moves a message to its previous batch, floored at 0.
func (p *Presenter) Retreat(messageID string) (Batch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	message, ok := p.messages[messageID]
	if !ok {
		return Batch{}, ErrUnknownMessage
	}
	if message.CurrentBatch > 0 {
		message.CurrentBatch--
	}
	return p.slice(message), nil
}

// slice computes the visible window:
// AllProducts[batch*size : (batch+1)*size], capped at the tail.
func (p *Presenter) slice(message *Message) Batch {
	start := message.CurrentBatch * p.batchSize
	end := start + p.batchSize
	if start > len(message.AllProducts) {
		start = len(message.AllProducts)
	}
	if end > len(message.AllProducts) {
		end = len(message.AllProducts)
	}

	return Batch{
		Products:    message.AllProducts[start:end],
		Index:       message.CurrentBatch,
		HasMore:     end < len(message.AllProducts),
		HasPrevious: message.CurrentBatch > 0,
	}
}

// lastBatch is the highest reachable batch index for a message.
func (p *Presenter) lastBatch(message *Message) int {
	if len(message.AllProducts) == 0 {
		return 0
	}
	return (len(message.AllProducts) - 1) / p.batchSize
}
