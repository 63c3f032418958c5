package api

import (
	"encoding/json"
	"time"
)

// Envelope is the response convention of the StudentStore API:
// {"status": "success"|"error", "data": ..., "message": ...}.
type Envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Pagination describes the server-side position of a paginated listing.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalCount  int `json:"total_count"`
}

// Post is one entry of the social feed.
type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	AuthorName    string    `json:"author_name"`
	AuthorEmail   string    `json:"author_email"`
	LikesCount    int       `json:"likes_count"`
	DislikesCount int       `json:"dislikes_count"`
	UserReaction  string    `json:"user_reaction,omitempty"` // "like", "dislike" or empty
	CreatedAt     time.Time `json:"created_at"`
}

// ItemID implements feed deduplication.
func (p Post) ItemID() string { return p.ID }

// Product is an affiliate product listing.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url,omitempty"`
	Link     string  `json:"link,omitempty"`
}

// ItemID implements feed deduplication.
func (p Product) ItemID() string { return p.ID }

// PostPage is one page of the posts feed.
type PostPage struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

// ProductPage is one page of a category's product listing.
type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Profile is the signed-in user's account data.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
	IsAdmin   bool   `json:"is_admin,omitempty"`
}

// ReactionType is the reaction a user can place on a post.
type ReactionType string

const (
	ReactionLike    ReactionType = "like"
	ReactionDislike ReactionType = "dislike"
)

// ReactionAction is the server-reported outcome of a reaction request.
type ReactionAction string

const (
	// ReactionAdded means the reaction was newly placed
	ReactionAdded ReactionAction = "added"

	// ReactionRemoved means an identical reaction was toggled off
	ReactionRemoved ReactionAction = "removed"

	// ReactionUpdated means the user switched from the opposite reaction
	ReactionUpdated ReactionAction = "updated"
)

// ReactionResult is the payload of POST /api/posts/:id/reaction.
type ReactionResult struct {
	Action ReactionAction `json:"action"`
}

// ChatTurn is one prior exchange sent back to the assistant for context.
type ChatTurn struct {
	Role    string `json:"role"` // "user" or "bot"
	Content string `json:"content"`
}

// ChatReply is the payload of POST /api/chat/message.
type ChatReply struct {
	Reply         string    `json:"reply"`
	Products      []Product `json:"products"`
	Suggestions   []string  `json:"suggestions,omitempty"`
	BudgetOptions []string  `json:"budgetOptions,omitempty"`
	HasMore       bool      `json:"hasMore"`
	AllProducts   []Product `json:"allProducts"`
}

// UploadAuth is the payload of GET /api/imagekit/auth, the signature set
// required by the media upload collaborator.
type UploadAuth struct {
	Token     string `json:"token"`
	Signature string `json:"signature"`
	Expire    int64  `json:"expire"`
}
