package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"arcadia-news/internal/api"
	"arcadia-news/internal/i18n"
	"arcadia-news/internal/models"
	"arcadia-news/internal/spend"
)

const maxUploadBytes = 128 << 20

// validationMessage translates a local validation error for display,
// falling back to the error's own text for anything unmapped.
func validationMessage(lang string, err error) string {
	keys := map[error]string{
		spend.ErrEmptyComment:    "validate.emptyComment",
		spend.ErrCommentTooLong:  "validate.commentTooLong",
		spend.ErrMissingTitle:    "validate.missingTitle",
		spend.ErrMissingContent:  "validate.missingContent",
		spend.ErrMissingCountry:  "validate.missingCountry",
		spend.ErrMissingCategory: "validate.missingCategory",
		spend.ErrContentTooLong:  "validate.contentTooLong",
		spend.ErrTooManyImages:   "validate.tooManyImages",
		spend.ErrImageTooLarge:   "validate.imageTooLarge",
		spend.ErrVideoTooLarge:   "validate.videoTooLarge",
	}
	for sentinel, key := range keys {
		if errors.Is(err, sentinel) {
			return i18n.T(lang, key)
		}
	}
	return err.Error()
}

// HomeViewModel holds data for the home page.
type HomeViewModel struct {
	Page
	FlagRows [][]models.Country
	Latest   []models.Article
}

// Home renders the country flag grid and the latest articles.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	vm := HomeViewModel{
		Page:     h.page(r),
		FlagRows: i18n.FlagRows(),
	}

	list, err := h.client.ListArticles(r.Context(), api.ArticleParams{Page: 1, Limit: 6})
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to load latest articles")
	} else {
		vm.Latest = list.Items
	}

	h.render(w, r, "home.html", vm)
}

// CountryViewModel holds data for a country's news feed.
type CountryViewModel struct {
	Page
	Country    models.Country
	Categories []models.Category
	Active     string
	Articles   []models.Article
	PageNum    int
	Pages      int
	LoadError  bool
}

// CountryNews renders the article feed for one country, filtered by
// the country's language and an optional category tab.
func (h *Handlers) CountryNews(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(r.PathValue("code"))
	country := i18n.CountryByCode(code)
	if country == nil {
		http.NotFound(w, r)
		return
	}

	category := r.URL.Query().Get("category")
	pageNum, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if pageNum < 1 {
		pageNum = 1
	}

	vm := CountryViewModel{
		Page:    h.page(r),
		Country: *country,
		Active:  category,
		PageNum: pageNum,
	}

	if categories, err := h.client.ListCategories(r.Context()); err != nil {
		h.log.Warn().Err(err).Msg("failed to load categories")
	} else {
		vm.Categories = categories
	}

	list, err := h.client.ListArticles(r.Context(), api.ArticleParams{
		Page:     pageNum,
		Limit:    20,
		Language: country.Language,
		Category: category,
	})
	if err != nil {
		h.log.Warn().Err(err).Str("country", code).Msg("failed to load articles")
		vm.LoadError = true
	} else {
		vm.Articles = list.Items
		vm.Pages = list.Pages
	}

	h.render(w, r, "country.html", vm)
}

// ArticleViewModel holds data for the article detail page.
type ArticleViewModel struct {
	Page
	Article  *models.Article
	Comments []models.Comment
	Balance  *models.WalletBalance
	// Draft preserves a typed-but-unsent comment across a failed
	// submission.
	Draft string
	// Notice is a user-facing message about the last action.
	Notice string
	// NeedLogin switches the notice into a login prompt.
	NeedLogin bool
}

// ArticleView renders one article with its comment thread.
func (h *Handlers) ArticleView(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	vm, ok := h.articleViewModel(r, id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	h.render(w, r, "article.html", vm)
}

// articleViewModel assembles the article page state: the article, its
// comments and, for logged-in viewers, the current wallet balance.
func (h *Handlers) articleViewModel(r *http.Request, id int64) (ArticleViewModel, bool) {
	vm := ArticleViewModel{Page: h.page(r)}

	article, err := h.client.GetArticle(r.Context(), id)
	if err != nil {
		if !errors.Is(err, api.ErrNotFound) {
			h.log.Warn().Err(err).Int64("article_id", id).Msg("failed to load article")
		}
		return vm, false
	}
	vm.Article = article

	if comments, err := h.client.ListComments(r.Context(), id); err != nil {
		h.log.Warn().Err(err).Int64("article_id", id).Msg("failed to load comments")
	} else {
		vm.Comments = comments
	}

	vm.Balance = h.fetchBalance(r.Context(), vm.Viewer.Token, vm.Viewer.LoggedIn())
	return vm, true
}

// fetchBalance re-reads the wallet from the backend. The balance shown
// after a spend is always this fetched value, never a local subtraction.
func (h *Handlers) fetchBalance(ctx context.Context, token api.Token, loggedIn bool) *models.WalletBalance {
	if !loggedIn {
		return nil
	}
	balance, err := h.client.WalletBalance(ctx, token)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to load wallet balance")
		return nil
	}
	return balance
}

// LikeArticle handles a like tap. It runs through the spend
// coordinator and answers with the like-area fragment: on success the
// article and balance are re-fetched, on failure the previous counters
// stand and a notice is shown.
func (h *Handlers) LikeArticle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	viewer := ViewerFromContext(r)
	outcome := h.spend.Run(r.Context(), viewer, spend.Action{
		Name:   "like",
		Target: strconv.FormatInt(id, 10),
		Call: func(ctx context.Context, token api.Token) error {
			_, err := h.client.LikeArticle(ctx, token, id)
			return err
		},
	})

	vm := ArticleViewModel{Page: h.page(r)}
	article, err := h.client.GetArticle(r.Context(), id)
	if err != nil {
		h.log.Warn().Err(err).Int64("article_id", id).Msg("failed to reload article")
		// No swap: the fragment the viewer already has stays as it was.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	vm.Article = article
	vm.Balance = h.fetchBalance(r.Context(), viewer.Token, viewer.LoggedIn())

	switch {
	case outcome.Committed, outcome.Ignored:
		// Nothing to report; Ignored means an identical tap is already
		// in flight and this one was dropped.
	case outcome.Reason == spend.LoginRequired:
		vm.NeedLogin = true
		vm.Notice = i18n.T(vm.Lang, "error.loginRequired")
	default:
		// Insufficient balance and network failures read the same from
		// here; the backend does not say which.
		vm.Notice = i18n.T(vm.Lang, "error.actionFailed")
	}

	h.renderPartial(w, r, "article.html", "like-area", vm)
}

// CommentCreate handles a comment submission via the spend coordinator
// and answers with the comment-section fragment. On success the thread
// is re-fetched and the input cleared; on failure the typed text is
// kept in the box.
func (h *Handlers) CommentCreate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	content := r.FormValue("content")
	var parentID *int64
	if raw := r.FormValue("parent_id"); raw != "" {
		if pid, err := strconv.ParseInt(raw, 10, 64); err == nil {
			parentID = &pid
		}
	}

	viewer := ViewerFromContext(r)
	outcome := h.spend.Run(r.Context(), viewer, spend.Action{
		Name:     "comment",
		Target:   strconv.FormatInt(id, 10),
		Validate: func() error { return spend.ValidateComment(content) },
		Call: func(ctx context.Context, token api.Token) error {
			_, err := h.client.CreateComment(ctx, token, id, strings.TrimSpace(content), parentID)
			return err
		},
	})

	vm := ArticleViewModel{Page: h.page(r)}
	article, err := h.client.GetArticle(r.Context(), id)
	if err != nil {
		h.log.Warn().Err(err).Int64("article_id", id).Msg("failed to reload article")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	vm.Article = article
	comments, err := h.client.ListComments(r.Context(), id)
	if err != nil {
		h.log.Warn().Err(err).Int64("article_id", id).Msg("failed to reload comments")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	vm.Comments = comments
	vm.Balance = h.fetchBalance(r.Context(), viewer.Token, viewer.LoggedIn())

	switch {
	case outcome.Committed, outcome.Ignored:
	case outcome.Reason == spend.LoginRequired:
		vm.Draft = content
		vm.NeedLogin = true
		vm.Notice = i18n.T(vm.Lang, "error.loginRequired")
	case outcome.Reason == spend.ValidationFailed:
		vm.Draft = content
		vm.Notice = validationMessage(vm.Lang, outcome.Err)
	default:
		vm.Draft = content
		vm.Notice = i18n.T(vm.Lang, "error.actionFailed")
	}

	h.renderPartial(w, r, "article.html", "comment-section", vm)
}

// CreateArticleViewModel holds data for the article creation form.
type CreateArticleViewModel struct {
	Page
	Categories []models.Category
	Countries  []models.Country
	Form       map[string]string
	Error      string
}

// CreateArticleForm renders the new-article form.
func (h *Handlers) CreateArticleForm(w http.ResponseWriter, r *http.Request) {
	vm := CreateArticleViewModel{
		Page:      h.page(r),
		Countries: i18n.Countries,
		Form:      map[string]string{},
	}
	if categories, err := h.client.ListCategories(r.Context()); err != nil {
		h.log.Warn().Err(err).Msg("failed to load categories")
	} else {
		vm.Categories = categories
	}
	h.render(w, r, "create.html", vm)
}

// CreateArticle handles the publish form. Publishing costs 1 ACD on the
// backend; the form is validated locally before any network traffic.
func (h *Handlers) CreateArticle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.renderCreateError(w, r, map[string]string{}, "Upload too large or malformed")
		return
	}

	form := map[string]string{
		"title":    strings.TrimSpace(r.FormValue("title")),
		"content":  r.FormValue("content"),
		"country":  r.FormValue("country"),
		"category": r.FormValue("category"),
	}

	sub := spend.ArticleSubmission{
		Title:    form["title"],
		Content:  form["content"],
		Country:  form["country"],
		Category: form["category"],
	}
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["images"] {
			sub.ImageSizes = append(sub.ImageSizes, fh.Size)
		}
		if videos := r.MultipartForm.File["video"]; len(videos) > 0 {
			sub.VideoSize = videos[0].Size
		}
	}

	categoryID, _ := strconv.ParseInt(form["category"], 10, 64)
	language := "en"
	if country := i18n.CountryByCode(strings.ToUpper(form["country"])); country != nil {
		language = country.Language
	}

	viewer := ViewerFromContext(r)
	outcome := h.spend.Run(r.Context(), viewer, spend.Action{
		Name:     "publish",
		Target:   form["title"],
		Validate: func() error { return spend.ValidateArticle(sub) },
		Call: func(ctx context.Context, token api.Token) error {
			_, err := h.client.CreateArticle(ctx, token, api.CreateArticleRequest{
				Title:      sub.Title,
				Content:    sub.Content,
				Language:   language,
				Status:     models.StatusPublished,
				CategoryID: categoryID,
				Country:    strings.ToUpper(form["country"]),
			})
			return err
		},
	})

	switch {
	case outcome.Committed:
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	case outcome.Ignored:
		// An identical publish is already in flight; send the viewer to
		// the dashboard where the result will appear.
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	case outcome.Reason == spend.LoginRequired:
		http.Redirect(w, r, "/login", http.StatusFound)
	case outcome.Reason == spend.ValidationFailed:
		h.renderCreateError(w, r, form, validationMessage(h.lang(r), outcome.Err))
	default:
		h.renderCreateError(w, r, form, i18n.T(h.lang(r), "error.actionFailed"))
	}
}

func (h *Handlers) renderCreateError(w http.ResponseWriter, r *http.Request, form map[string]string, msg string) {
	vm := CreateArticleViewModel{
		Page:      h.page(r),
		Countries: i18n.Countries,
		Form:      form,
		Error:     msg,
	}
	if categories, err := h.client.ListCategories(r.Context()); err == nil {
		vm.Categories = categories
	}
	h.render(w, r, "create.html", vm)
}

// SearchViewModel holds data for the search page.
type SearchViewModel struct {
	Page
	Query    string
	Articles []models.Article
	Searched bool
}

// Search renders full-text article search results.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	vm := SearchViewModel{Page: h.page(r), Query: query}

	if query != "" {
		vm.Searched = true
		list, err := h.client.SearchArticles(r.Context(), query, r.URL.Query().Get("lang"), r.URL.Query().Get("category"))
		if err != nil {
			h.log.Warn().Err(err).Str("query", query).Msg("search failed")
		} else {
			vm.Articles = list.Items
		}
	}

	h.render(w, r, "search.html", vm)
}
