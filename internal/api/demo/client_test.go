package demo

import (
	"context"
	"errors"
	"testing"

	"arcadia-news/internal/api"
	"arcadia-news/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type DemoClientTestSuite struct {
	suite.Suite
	client *Client
	ctx    context.Context
}

func (s *DemoClientTestSuite) SetupTest() {
	store, err := Open(":memory:")
	require.NoError(s.T(), err, "failed to open demo store")
	s.client = NewClient(store, "test-secret")
	s.ctx = context.Background()
}

func (s *DemoClientTestSuite) register(username, email string) *api.AuthResponse {
	resp, err := s.client.Register(s.ctx, api.RegisterRequest{
		Username: username, Email: email, Password: "pass1234",
		FirstName: "Test", LastName: "User",
	})
	require.NoError(s.T(), err)
	return resp
}

func (s *DemoClientTestSuite) TestSeededContent() {
	cats, err := s.client.ListCategories(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), cats, 5)

	list, err := s.client.ListArticles(s.ctx, api.ArticleParams{})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 3, list.Total)
}

func (s *DemoClientTestSuite) TestRegisterGrantsWelcomeBonus() {
	resp := s.register("newbie", "newbie@example.com")
	assert.NotEmpty(s.T(), resp.AccessToken)
	assert.Equal(s.T(), "newbie", resp.User.Username)

	bal, err := s.client.WalletBalance(s.ctx, api.Token(resp.AccessToken))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), WelcomeBonus, bal.Balance)

	txs, err := s.client.WalletTransactions(s.ctx, api.Token(resp.AccessToken))
	require.NoError(s.T(), err)
	require.Len(s.T(), txs, 1)
	assert.Equal(s.T(), models.TransactionEarning, txs[0].Type)
	assert.Equal(s.T(), "Welcome bonus", txs[0].Description)
}

func (s *DemoClientTestSuite) TestRegisterDuplicateRejected() {
	s.register("dup", "dup@example.com")
	_, err := s.client.Register(s.ctx, api.RegisterRequest{
		Username: "dup", Email: "other@example.com", Password: "x",
	})
	require.Error(s.T(), err)

	var apiErr *api.Error
	require.True(s.T(), errors.As(err, &apiErr))
	assert.Equal(s.T(), 409, apiErr.Status)
}

func (s *DemoClientTestSuite) TestLogin() {
	s.register("loginuser", "login@example.com")

	resp, err := s.client.Login(s.ctx, "login@example.com", "pass1234")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "loginuser", resp.User.Username)

	_, err = s.client.Login(s.ctx, "login@example.com", "wrong")
	assert.ErrorIs(s.T(), err, api.ErrUnauthorized)
}

func (s *DemoClientTestSuite) TestProfileRequiresValidToken() {
	resp := s.register("profuser", "prof@example.com")

	user, err := s.client.Profile(s.ctx, api.Token(resp.AccessToken))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "profuser", user.Username)

	_, err = s.client.Profile(s.ctx, "garbage")
	assert.ErrorIs(s.T(), err, api.ErrUnauthorized)

	_, err = s.client.Profile(s.ctx, "")
	assert.ErrorIs(s.T(), err, api.ErrUnauthorized)
}

func (s *DemoClientTestSuite) TestLikeDebitsLikerAndCreditsAuthor() {
	resp := s.register("liker", "liker@example.com")
	token := api.Token(resp.AccessToken)

	before, err := s.client.GetArticle(s.ctx, 1)
	require.NoError(s.T(), err)

	likeResp, err := s.client.LikeArticle(s.ctx, token, 1)
	require.NoError(s.T(), err)
	assert.True(s.T(), likeResp.Success)
	assert.Equal(s.T(), before.LikesCount+1, likeResp.LikesCount)

	// The liker pays 0.1 ACD.
	bal, err := s.client.WalletBalance(s.ctx, token)
	require.NoError(s.T(), err)
	assert.InDelta(s.T(), WelcomeBonus-models.LikeCost, bal.Balance, 1e-9)

	// The author earns 0.1 ACD.
	authorResp, err := s.client.Login(s.ctx, "expert@example.com", "seed-account")
	require.NoError(s.T(), err)
	authorBal, err := s.client.WalletBalance(s.ctx, api.Token(authorResp.AccessToken))
	require.NoError(s.T(), err)
	assert.InDelta(s.T(), WelcomeBonus+models.LikeCost, authorBal.Balance, 1e-9)

	authorTxs, err := s.client.WalletTransactions(s.ctx, api.Token(authorResp.AccessToken))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "like", authorTxs[0].EarningType)
}

func (s *DemoClientTestSuite) TestCommentFlow() {
	resp := s.register("commenter", "commenter@example.com")
	token := api.Token(resp.AccessToken)

	before, err := s.client.ListComments(s.ctx, 2)
	require.NoError(s.T(), err)

	comment, err := s.client.CreateComment(s.ctx, token, 2, "What a read!", nil)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "commenter", comment.Author.Username)

	after, err := s.client.ListComments(s.ctx, 2)
	require.NoError(s.T(), err)
	assert.Len(s.T(), after, len(before)+1)

	bal, err := s.client.WalletBalance(s.ctx, token)
	require.NoError(s.T(), err)
	assert.InDelta(s.T(), WelcomeBonus-models.CommentCost, bal.Balance, 1e-9)

	// Article counter reflects the new comment after a re-fetch.
	article, err := s.client.GetArticle(s.ctx, 2)
	require.NoError(s.T(), err)
	assert.GreaterOrEqual(s.T(), article.CommentsCount, len(after))
}

func (s *DemoClientTestSuite) TestThreadedReplies() {
	resp := s.register("replier", "replier@example.com")
	token := api.Token(resp.AccessToken)

	parent, err := s.client.CreateComment(s.ctx, token, 3, "Top level", nil)
	require.NoError(s.T(), err)
	_, err = s.client.CreateComment(s.ctx, token, 3, "A reply", &parent.ID)
	require.NoError(s.T(), err)

	comments, err := s.client.ListComments(s.ctx, 3)
	require.NoError(s.T(), err)

	var found bool
	for _, c := range comments {
		require.Nil(s.T(), c.ParentID, "top-level list must only contain roots")
		if c.ID == parent.ID {
			found = true
			require.Len(s.T(), c.Replies, 1)
			assert.Equal(s.T(), "A reply", c.Replies[0].Content)
		}
	}
	assert.True(s.T(), found)
}

func (s *DemoClientTestSuite) TestPublishDebitsOneACD() {
	resp := s.register("writer", "writer@example.com")
	token := api.Token(resp.AccessToken)

	article, err := s.client.CreateArticle(s.ctx, token, api.CreateArticleRequest{
		Title: "My story", Content: "Body", Language: "en", Country: "US", CategoryID: 1,
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StatusPublished, article.Status)
	assert.Equal(s.T(), "writer", article.Author.Username)
	assert.Equal(s.T(), 0, article.LikesCount)

	bal, err := s.client.WalletBalance(s.ctx, token)
	require.NoError(s.T(), err)
	assert.InDelta(s.T(), WelcomeBonus-models.PublishCost, bal.Balance, 1e-9)
}

func (s *DemoClientTestSuite) TestInsufficientBalance() {
	resp := s.register("broke", "broke@example.com")
	token := api.Token(resp.AccessToken)

	// Drain the wallet with publishes.
	for range int(WelcomeBonus / models.PublishCost) {
		_, err := s.client.CreateArticle(s.ctx, token, api.CreateArticleRequest{
			Title: "t", Content: "c", Language: "en",
		})
		require.NoError(s.T(), err)
	}

	_, err := s.client.CreateArticle(s.ctx, token, api.CreateArticleRequest{
		Title: "t", Content: "c", Language: "en",
	})
	require.Error(s.T(), err)

	var apiErr *api.Error
	require.True(s.T(), errors.As(err, &apiErr))
	assert.Equal(s.T(), 402, apiErr.Status)

	// Balance unchanged by the failed spend.
	bal, err := s.client.WalletBalance(s.ctx, token)
	require.NoError(s.T(), err)
	assert.InDelta(s.T(), 0.0, bal.Balance, 1e-9)
}

func (s *DemoClientTestSuite) TestListArticlesFilters() {
	byLang, err := s.client.ListArticles(s.ctx, api.ArticleParams{Language: "en"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 3, byLang.Total)

	byCat, err := s.client.ListArticles(s.ctx, api.ArticleParams{Category: "economy"})
	require.NoError(s.T(), err)
	require.Equal(s.T(), 1, byCat.Total)
	assert.Equal(s.T(), "Global Economic Outlook 2025", byCat.Items[0].Title)

	none, err := s.client.ListArticles(s.ctx, api.ArticleParams{Language: "ja"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0, none.Total)
}

func (s *DemoClientTestSuite) TestViewsIncrementOnRead() {
	first, err := s.client.GetArticle(s.ctx, 1)
	require.NoError(s.T(), err)
	second, err := s.client.GetArticle(s.ctx, 1)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), first.ViewsCount+1, second.ViewsCount)
}

func (s *DemoClientTestSuite) TestSearchArticles() {
	list, err := s.client.SearchArticles(s.ctx, "Blockchain", "", "")
	require.NoError(s.T(), err)
	require.GreaterOrEqual(s.T(), list.Total, 1)
	assert.Contains(s.T(), list.Items[0].Title, "Blockchain")
}

func TestDemoClientSuite(t *testing.T) {
	suite.Run(t, new(DemoClientTestSuite))
}
