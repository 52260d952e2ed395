package models

import "time"

// Action costs in ACD. The backend is the authority on debits; these
// values are only used for display and for the cost notices on forms.
const (
	LikeCost    = 0.1
	CommentCost = 0.5
	PublishCost = 1.0
)

// Article publication statuses as reported by the API.
const (
	StatusPublished = "PUBLISHED"
	StatusDraft     = "DRAFT"
)

// Transaction types in the wallet ledger.
const (
	TransactionEarning  = "EARNING"
	TransactionSpending = "SPENDING"
)

// User represents a user account as returned by the API.
type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	IsVerified bool      `json:"is_verified"`
	Avatar     string    `json:"avatar,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}

// Category groups articles by topic.
type Category struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	ArticlesCount int    `json:"articles_count"`
}

// Article is a news article. The engagement counters are
// server-reported; the client never adjusts them locally.
type Article struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Summary       string    `json:"summary,omitempty"`
	Language      string    `json:"language"`
	Status        string    `json:"status"`
	Country       string    `json:"country,omitempty"`
	Category      *Category `json:"category,omitempty"`
	Author        User      `json:"author"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	ImageURL      string    `json:"image_url,omitempty"`
	VideoURL      string    `json:"video_url,omitempty"`
	LikesCount    int       `json:"likes_count"`
	DislikesCount int       `json:"dislikes_count"`
	CommentsCount int       `json:"comments_count"`
	ViewsCount    int       `json:"views_count"`
	Tags          []string  `json:"tags,omitempty"`
}

// Comment is an append-only comment on an article. ParentID is set for
// threaded replies.
type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Author    User      `json:"author"`
	ArticleID int64     `json:"article_id"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Replies   []Comment `json:"replies,omitempty"`
}

// WalletBalance is the server-authoritative wallet state. The client
// never computes a new balance after a spend; it re-fetches this.
type WalletBalance struct {
	Balance     float64 `json:"balance"`
	TotalEarned float64 `json:"total_earned"`
	TotalSpent  float64 `json:"total_spent"`
}

// Transaction is an immutable signed ledger entry.
type Transaction struct {
	ID          int64     `json:"id"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	EarningType string    `json:"earning_type,omitempty"`
}

// Country is a browsable news region on the home flag grid.
type Country struct {
	Code     string
	Name     string
	Flag     string
	Language string
}
