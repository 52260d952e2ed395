// Package api defines the client boundary to the external Arcadia
// content/ledger API. The server talks to the API only through the
// Client interface; the rest implementation does real HTTP round-trips
// and the demo implementation stands in for the backend in demo mode.
package api

import (
	"context"
	"errors"
	"fmt"

	"arcadia-news/internal/models"
)

// Token is a bearer access token for the external API. It is passed
// explicitly into every authenticated call rather than held as shared
// mutable client state.
type Token string

// RegisterRequest is the payload for Register.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthResponse is returned by Register and Login.
type AuthResponse struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

// ArticleParams filters ListArticles.
type ArticleParams struct {
	Page     int
	Limit    int
	Language string
	Category string
	Author   int64
}

// ArticleList is a paginated article listing.
type ArticleList struct {
	Items []models.Article `json:"items"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Pages int              `json:"pages"`
}

// CreateArticleRequest is the payload for CreateArticle. Publishing
// debits 1 ACD on the backend.
type CreateArticleRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Language   string `json:"language"`
	Status     string `json:"status,omitempty"`
	CategoryID int64  `json:"category_id,omitempty"`
	Country    string `json:"country,omitempty"`
}

// LikeResponse is returned by LikeArticle.
type LikeResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	LikesCount int    `json:"likes_count"`
}

// Client is the capability boundary to the external API. Every
// method that mutates or reads private state takes the caller's
// bearer token; read-only public calls take none.
type Client interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Profile(ctx context.Context, token Token) (*models.User, error)

	ListArticles(ctx context.Context, params ArticleParams) (*ArticleList, error)
	GetArticle(ctx context.Context, id int64) (*models.Article, error)
	CreateArticle(ctx context.Context, token Token, req CreateArticleRequest) (*models.Article, error)
	LikeArticle(ctx context.Context, token Token, id int64) (*LikeResponse, error)

	ListComments(ctx context.Context, articleID int64) ([]models.Comment, error)
	CreateComment(ctx context.Context, token Token, articleID int64, content string, parentID *int64) (*models.Comment, error)

	ListCategories(ctx context.Context) ([]models.Category, error)

	WalletBalance(ctx context.Context, token Token) (*models.WalletBalance, error)
	WalletTransactions(ctx context.Context, token Token) ([]models.Transaction, error)

	SearchArticles(ctx context.Context, query, language, category string) (*ArticleList, error)
}

// ErrUnauthorized reports a rejected or missing bearer token.
var ErrUnauthorized = errors.New("api: unauthorized")

// ErrNotFound reports a missing resource.
var ErrNotFound = errors.New("api: not found")

// Error is a remote failure: a non-2xx status or an unusable response
// body. Message is best-effort; the backend's error payload shape is
// not contractually guaranteed.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: HTTP %d", e.Status)
}

// Is lets api errors match the unauthorized and not-found sentinels
// through errors.Is.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == 401 || e.Status == 403
	case ErrNotFound:
		return e.Status == 404
	}
	return false
}
