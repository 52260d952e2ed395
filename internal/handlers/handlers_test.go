package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"arcadia-news/internal/api"
	"arcadia-news/internal/auth"
	"arcadia-news/internal/models"
	"arcadia-news/internal/ratelimit"
	"arcadia-news/internal/session"
	"arcadia-news/internal/spend"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// fakeClient is a recording stand-in for the external API. Each
// mutating method counts its calls; failure modes are switchable per
// test.
type fakeClient struct {
	mu sync.Mutex

	likeCalls    int
	commentCalls int
	publishCalls int
	balanceCalls int

	failRemote bool
	failFetch  bool

	article  models.Article
	comments []models.Comment
	balance  models.WalletBalance
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		article: models.Article{
			ID:         7,
			Title:      "Fusion milestone reached",
			Content:    "Researchers report net energy gain.",
			Language:   "en",
			Status:     models.StatusPublished,
			Author:     models.User{ID: 2, Username: "reporter"},
			LikesCount: 3,
		},
		balance: models.WalletBalance{Balance: 42.5},
	}
}

var errRemote = errors.New("backend unreachable")

func (f *fakeClient) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	return &api.AuthResponse{
		User:        models.User{ID: 9, Username: req.Username, Email: req.Email},
		AccessToken: "access-9",
	}, nil
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	if password != "correct horse" {
		return nil, &api.Error{Status: 401, Message: "invalid credentials"}
	}
	return &api.AuthResponse{
		User:        models.User{ID: 1, Username: "reader", Email: email},
		AccessToken: "access-1",
	}, nil
}

func (f *fakeClient) Profile(ctx context.Context, token api.Token) (*models.User, error) {
	return &models.User{ID: 1, Username: "reader"}, nil
}

func (f *fakeClient) ListArticles(ctx context.Context, params api.ArticleParams) (*api.ArticleList, error) {
	return &api.ArticleList{Items: []models.Article{f.article}, Total: 1, Page: 1, Pages: 1}, nil
}

func (f *fakeClient) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFetch {
		return nil, errRemote
	}
	a := f.article
	return &a, nil
}

func (f *fakeClient) CreateArticle(ctx context.Context, token api.Token, req api.CreateArticleRequest) (*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.publishCalls++
	if f.failRemote {
		return nil, errRemote
	}
	return &models.Article{ID: 100, Title: req.Title}, nil
}

func (f *fakeClient) LikeArticle(ctx context.Context, token api.Token, id int64) (*api.LikeResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.likeCalls++
	if f.failRemote {
		return nil, errRemote
	}
	f.article.LikesCount++
	return &api.LikeResponse{Success: true, LikesCount: f.article.LikesCount}, nil
}

func (f *fakeClient) ListComments(ctx context.Context, articleID int64) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Comment(nil), f.comments...), nil
}

func (f *fakeClient) CreateComment(ctx context.Context, token api.Token, articleID int64, content string, parentID *int64) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commentCalls++
	if f.failRemote {
		return nil, errRemote
	}
	c := models.Comment{
		ID:        int64(len(f.comments) + 1),
		Content:   content,
		ArticleID: articleID,
		Author:    models.User{ID: 1, Username: "reader"},
		CreatedAt: time.Now(),
	}
	f.comments = append(f.comments, c)
	f.article.CommentsCount++
	return &c, nil
}

func (f *fakeClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	return []models.Category{{ID: 1, Name: "Technology", Slug: "tech"}}, nil
}

func (f *fakeClient) WalletBalance(ctx context.Context, token api.Token) (*models.WalletBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balanceCalls++
	b := f.balance
	return &b, nil
}

func (f *fakeClient) WalletTransactions(ctx context.Context, token api.Token) ([]models.Transaction, error) {
	return []models.Transaction{
		{ID: 1, Amount: 100, Type: models.TransactionEarning, Description: "Welcome bonus"},
		{ID: 2, Amount: 0.1, Type: models.TransactionSpending, Description: "Like on article"},
	}, nil
}

func (f *fakeClient) SearchArticles(ctx context.Context, query, language, category string) (*api.ArticleList, error) {
	if strings.Contains(strings.ToLower(f.article.Title), strings.ToLower(query)) {
		return &api.ArticleList{Items: []models.Article{f.article}, Total: 1, Page: 1, Pages: 1}, nil
	}
	return &api.ArticleList{Page: 1, Pages: 1}, nil
}

type HandlersTestSuite struct {
	suite.Suite
	client   *fakeClient
	sessions *session.Store
	handlers *Handlers
}

func (s *HandlersTestSuite) SetupTest() {
	var err error
	s.sessions, err = session.NewStore(filepath.Join(s.T().TempDir(), "sessions.db"))
	require.NoError(s.T(), err)

	s.client = newFakeClient()
	s.handlers = NewHandlers(
		s.client,
		s.sessions,
		spend.New(zerolog.Nop()),
		ratelimit.New(time.Minute, 5),
		"../../web/templates",
		false,
		zerolog.Nop(),
	)
}

func (s *HandlersTestSuite) TearDownTest() {
	s.sessions.Close()
}

// loginCookie creates a session directly and returns its cookie.
func (s *HandlersTestSuite) loginCookie() *http.Cookie {
	token, err := auth.GenerateSessionToken()
	require.NoError(s.T(), err)
	user := models.User{ID: 1, Username: "reader", Email: "reader@example.com"}
	err = s.sessions.Create(token, "access-1", "refresh-1", user, time.Now().Add(session.Duration))
	require.NoError(s.T(), err)
	return &http.Cookie{Name: SessionCookieName, Value: token}
}

func (s *HandlersTestSuite) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handlers.Home)
	mux.HandleFunc("GET /articles/{id}", s.handlers.ArticleView)
	mux.HandleFunc("POST /articles/{id}/like", s.handlers.LikeArticle)
	mux.HandleFunc("POST /articles/{id}/comments", s.handlers.CommentCreate)
	mux.HandleFunc("POST /login", s.handlers.Login)
	s.handlers.WithViewer(mux).ServeHTTP(rec, req)
	return rec
}

func (s *HandlersTestSuite) TestLikeWithoutSessionNeverReachesBackend() {
	req := httptest.NewRequest("POST", "/articles/7/like", nil)
	rec := s.do(req)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	require.Contains(s.T(), rec.Body.String(), "Please login to continue")
	require.Zero(s.T(), s.client.likeCalls)
}

func (s *HandlersTestSuite) TestLikeCommitsAndReFetchesBalance() {
	req := httptest.NewRequest("POST", "/articles/7/like", nil)
	req.AddCookie(s.loginCookie())
	rec := s.do(req)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	require.Equal(s.T(), 1, s.client.likeCalls)
	// The shown counter is the server's, not a local increment.
	require.Contains(s.T(), rec.Body.String(), "(4)")
	require.Positive(s.T(), s.client.balanceCalls)
	require.NotContains(s.T(), rec.Body.String(), "Insufficient balance or network error")
}

func (s *HandlersTestSuite) TestLikeRemoteFailureKeepsCountersAndStaysRetryable() {
	s.client.failRemote = true

	req := httptest.NewRequest("POST", "/articles/7/like", nil)
	req.AddCookie(s.loginCookie())
	rec := s.do(req)

	require.Equal(s.T(), 1, s.client.likeCalls)
	// Insufficient balance and network failure share one message.
	require.Contains(s.T(), rec.Body.String(), "Insufficient balance or network error")
	require.Contains(s.T(), rec.Body.String(), "(3)")

	// Immediate retry goes straight back to the backend.
	s.client.failRemote = false
	req = httptest.NewRequest("POST", "/articles/7/like", nil)
	req.AddCookie(s.loginCookie())
	rec = s.do(req)
	require.Equal(s.T(), 2, s.client.likeCalls)
	require.Contains(s.T(), rec.Body.String(), "(4)")
}

func (s *HandlersTestSuite) TestWhitespaceCommentRejectedLocally() {
	form := url.Values{"content": {"   \n\t  "}}
	req := httptest.NewRequest("POST", "/articles/7/comments", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(s.loginCookie())
	rec := s.do(req)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	require.Zero(s.T(), s.client.commentCalls)
	require.Contains(s.T(), rec.Body.String(), "Comment cannot be empty")
}

func (s *HandlersTestSuite) TestWhitespaceCommentNoticeIsTranslated() {
	form := url.Values{"content": {"   "}}
	req := httptest.NewRequest("POST", "/articles/7/comments", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(s.loginCookie())
	req.AddCookie(&http.Cookie{Name: LangCookieName, Value: "ru"})
	rec := s.do(req)

	require.Zero(s.T(), s.client.commentCalls)
	require.Contains(s.T(), rec.Body.String(), "Комментарий не может быть пустым")
}

func (s *HandlersTestSuite) TestCommentSuccessClearsInputAndReFetchesThread() {
	form := url.Values{"content": {"Great reporting!"}}
	req := httptest.NewRequest("POST", "/articles/7/comments", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(s.loginCookie())
	rec := s.do(req)

	require.Equal(s.T(), 1, s.client.commentCalls)
	body := rec.Body.String()
	// The new comment comes back from the re-fetched thread.
	require.Contains(s.T(), body, "Great reporting!")
	// The textarea is empty again.
	require.NotContains(s.T(), body, ">Great reporting!</textarea>")
	require.Contains(s.T(), body, "></textarea>")
}

func (s *HandlersTestSuite) TestCommentRemoteFailureKeepsDraft() {
	s.client.failRemote = true

	form := url.Values{"content": {"my unsent thoughts"}}
	req := httptest.NewRequest("POST", "/articles/7/comments", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(s.loginCookie())
	rec := s.do(req)

	require.Equal(s.T(), 1, s.client.commentCalls)
	body := rec.Body.String()
	require.Contains(s.T(), body, "Insufficient balance or network error")
	// The typed text survives in the textarea for a retry.
	require.Contains(s.T(), body, "my unsent thoughts</textarea>")
	// No phantom comment appears in the thread.
	require.NotContains(s.T(), body, `<div class="comment">`)
}

func (s *HandlersTestSuite) TestCommentWithoutSessionKeepsDraftAndPromptsLogin() {
	form := url.Values{"content": {"anonymous opinion"}}
	req := httptest.NewRequest("POST", "/articles/7/comments", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := s.do(req)

	require.Zero(s.T(), s.client.commentCalls)
	body := rec.Body.String()
	require.Contains(s.T(), body, "Please login to continue")
	require.Contains(s.T(), body, "anonymous opinion</textarea>")
}

func (s *HandlersTestSuite) TestLikeRefetchFailureLeavesFragmentUntouched() {
	s.client.failFetch = true

	req := httptest.NewRequest("POST", "/articles/7/like", nil)
	req.AddCookie(s.loginCookie())
	rec := s.do(req)

	// The like itself went through; with no fresh article to show, the
	// response carries no body so the rendered fragment stays as it was.
	require.Equal(s.T(), 1, s.client.likeCalls)
	require.Equal(s.T(), http.StatusNoContent, rec.Code)
	require.Empty(s.T(), rec.Body.String())
}

func (s *HandlersTestSuite) TestCommentRefetchFailureLeavesFragmentUntouched() {
	s.client.failFetch = true

	form := url.Values{"content": {"fine words"}}
	req := httptest.NewRequest("POST", "/articles/7/comments", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(s.loginCookie())
	rec := s.do(req)

	require.Equal(s.T(), 1, s.client.commentCalls)
	require.Equal(s.T(), http.StatusNoContent, rec.Code)
	require.Empty(s.T(), rec.Body.String())
}

func (s *HandlersTestSuite) TestArticleViewShowsBalanceOnlyWhenLoggedIn() {
	req := httptest.NewRequest("GET", "/articles/7", nil)
	rec := s.do(req)
	require.NotContains(s.T(), rec.Body.String(), "42.5")

	req = httptest.NewRequest("GET", "/articles/7", nil)
	req.AddCookie(s.loginCookie())
	rec = s.do(req)
	require.Contains(s.T(), rec.Body.String(), "42.5")
}

func (s *HandlersTestSuite) TestLoginRejectsBadCredentials() {
	form := url.Values{"email": {"reader@example.com"}, "password": {"wrong"}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := s.do(req)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	require.Contains(s.T(), rec.Body.String(), "Invalid email or password")
}

func (s *HandlersTestSuite) TestLoginCreatesSessionCookie() {
	form := url.Values{"email": {"reader@example.com"}, "password": {"correct horse"}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := s.do(req)

	require.Equal(s.T(), http.StatusFound, rec.Code)
	require.Equal(s.T(), "/dashboard", rec.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(s.T(), sessionCookie)
	require.NotEmpty(s.T(), sessionCookie.Value)

	sess, err := s.sessions.Validate(sessionCookie.Value)
	require.NoError(s.T(), err)
	require.Equal(s.T(), "access-1", sess.AccessToken)
}

func (s *HandlersTestSuite) TestLoginRateLimited() {
	form := url.Values{"email": {"reader@example.com"}, "password": {"wrong"}}
	var rec *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "203.0.113.7:1234"
		rec = s.do(req)
	}
	require.Contains(s.T(), rec.Body.String(), "Too many attempts")
}

func (s *HandlersTestSuite) TestInvalidSessionCookieCleared() {
	req := httptest.NewRequest("GET", "/articles/7", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "bogus"})
	rec := s.do(req)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(s.T(), cleared)
}

func (s *HandlersTestSuite) TestHomeRendersFlagGrid() {
	req := httptest.NewRequest("GET", "/", nil)
	rec := s.do(req)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(s.T(), body, "/country/US")
	require.Contains(s.T(), body, "/country/SA")
	require.Contains(s.T(), body, "Select a country to view news")
}

func (s *HandlersTestSuite) TestHTMXRequestGetsFragment() {
	req := httptest.NewRequest("GET", "/articles/7", nil)
	req.Header.Set("HX-Request", "true")
	rec := s.do(req)

	body := rec.Body.String()
	require.NotContains(s.T(), body, "<!DOCTYPE html>")
	require.Contains(s.T(), body, "Fusion milestone reached")
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
