package chat

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/studentstore/storefront-client/pkg/api"
	"github.com/studentstore/storefront-client/pkg/logging"
)

// Sender is the API capability the assistant needs.
// *api.Client implements it.
type Sender interface {
	SendChatMessage(ctx context.Context, message, sessionID string, history []api.ChatTurn) (*api.ChatReply, error)
}

// Assistant ties the chat pieces together: it sends the user's message
// with session history for context, records both turns, and hands the
// reply's product set to the presenter for batching.
type Assistant struct {
	sender    Sender
	presenter *Presenter
	session   *Session
	logger    zerolog.Logger
}

// NewAssistant creates an assistant over the given session.
func NewAssistant(sender Sender, presenter *Presenter, session *Session) *Assistant {
	if sender == nil {
		panic("sender cannot be nil")
	}
	return &Assistant{
		sender:    sender,
		presenter: presenter,
		session:   session,
		logger:    logging.NewLogger("chat-assistant"),
	}
}

// Presenter returns the conversation presenter.
func (a *Assistant) Presenter() *Presenter { return a.presenter }

// Session returns the underlying session.
func (a *Assistant) Session() *Session { return a.session }

// Send submits one user message and returns the bot's message holding the
// full product set of the turn. The reply and both turns are recorded;
// failures leave the conversation as it was before the call.
func (a *Assistant) Send(ctx context.Context, message string) (Message, error) {
	reply, err := a.sender.SendChatMessage(ctx, message, a.session.ID, a.session.History())
	if err != nil {
		a.logger.Warn().Err(err).Msg("Chat turn failed")
		return Message{}, err
	}

	a.presenter.AddUserMessage(message)
	a.session.Append(RoleUser, message)

	botMessage := a.presenter.AddBotMessage(reply.Reply, reply.AllProducts)
	a.session.Append(RoleBot, reply.Reply)

	if err := a.session.Save(ctx); err != nil {
		a.logger.Warn().Err(err).Str("session", a.session.ID).Msg("Session save failed")
	}

	a.logger.Debug().
		Str("session", a.session.ID).
		Int("products", len(reply.AllProducts)).
		Msg("Chat turn complete")

	return botMessage, nil
}
