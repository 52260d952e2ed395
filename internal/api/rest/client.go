// Package rest implements api.Client against the real Arcadia backend
// over HTTP.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"arcadia-news/internal/api"
	"arcadia-news/internal/models"

	"github.com/tidwall/gjson"
)

// Client talks to the backend's /api/v1 surface.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ api.Client = (*Client)(nil)

// New creates a Client for the given base URL, e.g.
// "https://api.example.com/api/v1".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, token api.Token, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+string(token))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &api.Error{Status: resp.StatusCode, Message: errorMessage(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &api.Error{Status: resp.StatusCode, Message: "malformed response body"}
		}
	}
	return nil
}

// errorMessage probes a non-2xx body for a human-readable message. The
// payload shape is not guaranteed, so look in the spots backends
// commonly use and settle for nothing.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"error.message", "error", "message", "detail"} {
		if v := gjson.GetBytes(body, path); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	var out api.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out api.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context, token api.Token) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/users/profile", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListArticles(ctx context.Context, params api.ArticleParams) (*api.ArticleList, error) {
	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Language != "" {
		q.Set("language", params.Language)
	}
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	if params.Author > 0 {
		q.Set("author", strconv.FormatInt(params.Author, 10))
	}

	path := "/articles/"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var out api.ArticleList
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	var out models.Article
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/articles/%d", id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateArticle(ctx context.Context, token api.Token, req api.CreateArticleRequest) (*models.Article, error) {
	var out models.Article
	if err := c.do(ctx, http.MethodPost, "/articles/", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LikeArticle(ctx context.Context, token api.Token, id int64) (*api.LikeResponse, error) {
	var out api.LikeResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/articles/%d/like", id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListComments(ctx context.Context, articleID int64) ([]models.Comment, error) {
	var out []models.Comment
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/comments/article/%d", articleID), "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateComment(ctx context.Context, token api.Token, articleID int64, content string, parentID *int64) (*models.Comment, error) {
	body := map[string]any{"content": content, "parent_id": parentID}
	var out models.Comment
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/comments/article/%d", articleID), token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := c.do(ctx, http.MethodGet, "/categories/", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) WalletBalance(ctx context.Context, token api.Token) (*models.WalletBalance, error) {
	var out models.WalletBalance
	if err := c.do(ctx, http.MethodGet, "/wallet/balance", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) WalletTransactions(ctx context.Context, token api.Token) ([]models.Transaction, error) {
	var out []models.Transaction
	if err := c.do(ctx, http.MethodGet, "/wallet/transactions", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchArticles(ctx context.Context, query, language, category string) (*api.ArticleList, error) {
	q := url.Values{"q": []string{query}}
	if language != "" {
		q.Set("language", language)
	}
	if category != "" {
		q.Set("category", category)
	}

	var out api.ArticleList
	if err := c.do(ctx, http.MethodGet, "/search/articles?"+q.Encode(), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
