package demo

import (
	"context"
	"errors"
	"fmt"

	"arcadia-news/internal/api"
	"arcadia-news/internal/auth"
	"arcadia-news/internal/models"
)

// WelcomeBonus is credited to every new account in demo mode.
const WelcomeBonus = 100.0

// Client implements api.Client against the local demo store. No call
// leaves the process.
type Client struct {
	store  *Store
	secret string
}

// NewClient wraps a demo store. secret signs the issued JWTs.
func NewClient(store *Store, secret string) *Client {
	return &Client{store: store, secret: secret}
}

var _ api.Client = (*Client)(nil)

func (c *Client) authResponse(user *models.User) (*api.AuthResponse, error) {
	access, err := c.issueToken(user.ID, accessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := c.issueToken(user.ID, refreshTokenTTL)
	if err != nil {
		return nil, err
	}
	return &api.AuthResponse{User: *user, AccessToken: access, RefreshToken: refresh}, nil
}

func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := c.store.CreateUser(req.Username, req.Email, hash, req.FirstName, req.LastName)
	if err != nil {
		return nil, &api.Error{Status: 409, Message: "username or email already taken"}
	}
	if err := c.store.Credit(user.ID, WelcomeBonus, "Welcome bonus", ""); err != nil {
		return nil, err
	}
	return c.authResponse(user)
}

func (c *Client) Login(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	user, hash, err := c.store.UserByEmail(email)
	if err != nil || !auth.CheckPassword(password, hash) {
		return nil, &api.Error{Status: 401, Message: "invalid credentials"}
	}
	return c.authResponse(user)
}

func (c *Client) Profile(ctx context.Context, token api.Token) (*models.User, error) {
	userID, err := c.userIDFromToken(token)
	if err != nil {
		return nil, err
	}
	return c.store.UserByID(userID)
}

func (c *Client) ListArticles(ctx context.Context, params api.ArticleParams) (*api.ArticleList, error) {
	items, total, err := c.store.ListArticles(params)
	if err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	page := params.Page
	if page <= 0 {
		page = 1
	}
	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	return &api.ArticleList{Items: items, Total: total, Page: page, Pages: pages}, nil
}

func (c *Client) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	// Views count on every read, like the real backend.
	if err := c.store.IncrementViews(id); err != nil {
		return nil, err
	}
	return c.store.ArticleByID(id)
}

func (c *Client) CreateArticle(ctx context.Context, token api.Token, req api.CreateArticleRequest) (*models.Article, error) {
	userID, err := c.userIDFromToken(token)
	if err != nil {
		return nil, err
	}
	if err := c.debit(userID, models.PublishCost, "Article published"); err != nil {
		return nil, err
	}
	return c.store.InsertArticle(userID, req)
}

func (c *Client) LikeArticle(ctx context.Context, token api.Token, id int64) (*api.LikeResponse, error) {
	userID, err := c.userIDFromToken(token)
	if err != nil {
		return nil, err
	}
	authorID, err := c.store.ArticleAuthor(id)
	if err != nil {
		return nil, err
	}
	if err := c.debit(userID, models.LikeCost, "Article liked"); err != nil {
		return nil, err
	}
	count, err := c.store.LikeArticle(id)
	if err != nil {
		return nil, err
	}
	if authorID != userID {
		if err := c.store.Credit(authorID, models.LikeCost, "Like on your article", "like"); err != nil {
			return nil, err
		}
	}
	return &api.LikeResponse{Success: true, Message: "Article liked successfully", LikesCount: count}, nil
}

func (c *Client) ListComments(ctx context.Context, articleID int64) ([]models.Comment, error) {
	return c.store.CommentsByArticle(articleID)
}

func (c *Client) CreateComment(ctx context.Context, token api.Token, articleID int64, content string, parentID *int64) (*models.Comment, error) {
	userID, err := c.userIDFromToken(token)
	if err != nil {
		return nil, err
	}
	authorID, err := c.store.ArticleAuthor(articleID)
	if err != nil {
		return nil, err
	}
	if err := c.debit(userID, models.CommentCost, "Comment posted"); err != nil {
		return nil, err
	}
	comment, err := c.store.InsertComment(articleID, userID, content, parentID)
	if err != nil {
		return nil, err
	}
	if authorID != userID {
		if err := c.store.Credit(authorID, models.CommentCost, "Comment on your article", "comment"); err != nil {
			return nil, err
		}
	}
	return comment, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	return c.store.Categories()
}

func (c *Client) WalletBalance(ctx context.Context, token api.Token) (*models.WalletBalance, error) {
	userID, err := c.userIDFromToken(token)
	if err != nil {
		return nil, err
	}
	return c.store.Balance(userID)
}

func (c *Client) WalletTransactions(ctx context.Context, token api.Token) ([]models.Transaction, error) {
	userID, err := c.userIDFromToken(token)
	if err != nil {
		return nil, err
	}
	return c.store.Transactions(userID)
}

func (c *Client) SearchArticles(ctx context.Context, query, language, category string) (*api.ArticleList, error) {
	items, total, err := c.store.SearchArticles(query, language, category)
	if err != nil {
		return nil, err
	}
	return &api.ArticleList{Items: items, Total: total, Page: 1, Pages: 1}, nil
}

// debit maps the store's insufficient-balance error onto the same
// HTTP-shaped error the real backend would return.
func (c *Client) debit(userID int64, amount float64, description string) error {
	err := c.store.Debit(userID, amount, description)
	if errors.Is(err, ErrInsufficientBalance) {
		return &api.Error{Status: 402, Message: fmt.Sprintf("insufficient balance for %.1f ACD", amount)}
	}
	return err
}
