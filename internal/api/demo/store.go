// Package demo implements api.Client without a network: a local
// sqlite-backed stand-in for the external backend, used in demo mode.
// Unlike a canned-response stub it is stateful, so likes, comments,
// publishes and wallet debits behave like the real ledger and the
// re-fetch-after-spend flow is observable.
package demo

import (
	"database/sql"
	"errors"

	"arcadia-news/internal/api"
	"arcadia-news/internal/models"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// ErrInsufficientBalance is returned by Debit when the wallet cannot
// cover the amount.
var ErrInsufficientBalance = errors.New("demo: insufficient balance")

// Store wraps the demo backend's sqlite database.
type Store struct {
	conn *sql.DB
}

// Open opens the demo database, runs migrations and seeds starter
// content if the database is empty.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		return nil, err
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	if err := s.seed(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			is_verified INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			slug TEXT UNIQUE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS articles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			summary TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT 'en',
			status TEXT NOT NULL DEFAULT 'PUBLISHED',
			country TEXT NOT NULL DEFAULT '',
			category_id INTEGER REFERENCES categories(id),
			author_id INTEGER NOT NULL REFERENCES users(id),
			likes_count INTEGER NOT NULL DEFAULT 0,
			dislikes_count INTEGER NOT NULL DEFAULT 0,
			comments_count INTEGER NOT NULL DEFAULT 0,
			views_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			article_id INTEGER NOT NULL REFERENCES articles(id),
			author_id INTEGER NOT NULL REFERENCES users(id),
			parent_id INTEGER REFERENCES comments(id),
			content TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS wallets (
			user_id INTEGER PRIMARY KEY REFERENCES users(id),
			balance REAL NOT NULL DEFAULT 0,
			total_earned REAL NOT NULL DEFAULT 0,
			total_spent REAL NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			amount REAL NOT NULL,
			type TEXT NOT NULL,
			description TEXT NOT NULL,
			earning_type TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// CreateUser creates a user with an empty wallet.
func (s *Store) CreateUser(username, email, passwordHash, firstName, lastName string) (*models.User, error) {
	result, err := s.conn.Exec(
		"INSERT INTO users (username, email, password_hash, first_name, last_name, is_verified) VALUES (?, ?, ?, ?, ?, 1)",
		username, email, passwordHash, firstName, lastName,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	if _, err := s.conn.Exec("INSERT INTO wallets (user_id) VALUES (?)", id); err != nil {
		return nil, err
	}
	return s.UserByID(id)
}

const userColumns = "id, username, email, first_name, last_name, is_verified, created_at"

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.IsVerified, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// UserByID retrieves a user by ID.
func (s *Store) UserByID(id int64) (*models.User, error) {
	return scanUser(s.conn.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// UserByEmail retrieves a user and their password hash by email.
func (s *Store) UserByEmail(email string) (*models.User, string, error) {
	row := s.conn.QueryRow(
		"SELECT "+userColumns+", password_hash FROM users WHERE email = ?", email,
	)
	var u models.User
	var hash string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.IsVerified, &u.CreatedAt, &hash); err != nil {
		return nil, "", err
	}
	return &u, hash, nil
}

// UserByUsername retrieves a user by username.
func (s *Store) UserByUsername(username string) (*models.User, error) {
	return scanUser(s.conn.QueryRow("SELECT "+userColumns+" FROM users WHERE username = ?", username))
}

// Categories lists all categories with their article counts.
func (s *Store) Categories() ([]models.Category, error) {
	rows, err := s.conn.Query(`
		SELECT c.id, c.name, c.slug, COUNT(a.id)
		FROM categories c
		LEFT JOIN articles a ON a.category_id = c.id AND a.status = 'PUBLISHED'
		GROUP BY c.id, c.name, c.slug
		ORDER BY c.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ArticlesCount); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// CategoryByID retrieves a category, or nil when id is zero or unknown.
func (s *Store) CategoryByID(id int64) (*models.Category, error) {
	if id == 0 {
		return nil, nil
	}
	row := s.conn.QueryRow(`
		SELECT c.id, c.name, c.slug, COUNT(a.id)
		FROM categories c
		LEFT JOIN articles a ON a.category_id = c.id AND a.status = 'PUBLISHED'
		WHERE c.id = ?
		GROUP BY c.id, c.name, c.slug
	`, id)
	var c models.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.ArticlesCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

const articleSelect = `
	SELECT a.id, a.title, a.content, a.summary, a.language, a.status, a.country,
	       a.likes_count, a.dislikes_count, a.comments_count, a.views_count,
	       a.created_at, a.updated_at,
	       u.id, u.username, u.email, u.first_name, u.last_name, u.is_verified, u.created_at,
	       c.id, c.name, c.slug
	FROM articles a
	JOIN users u ON u.id = a.author_id
	LEFT JOIN categories c ON c.id = a.category_id
`

type articleScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row articleScanner) (*models.Article, error) {
	var a models.Article
	var catID sql.NullInt64
	var catName, catSlug sql.NullString
	err := row.Scan(
		&a.ID, &a.Title, &a.Content, &a.Summary, &a.Language, &a.Status, &a.Country,
		&a.LikesCount, &a.DislikesCount, &a.CommentsCount, &a.ViewsCount,
		&a.CreatedAt, &a.UpdatedAt,
		&a.Author.ID, &a.Author.Username, &a.Author.Email, &a.Author.FirstName,
		&a.Author.LastName, &a.Author.IsVerified, &a.Author.CreatedAt,
		&catID, &catName, &catSlug,
	)
	if err != nil {
		return nil, err
	}
	if catID.Valid {
		a.Category = &models.Category{ID: catID.Int64, Name: catName.String, Slug: catSlug.String}
	}
	return &a, nil
}

// InsertArticle stores a new article and returns it with author and
// category resolved.
func (s *Store) InsertArticle(authorID int64, req api.CreateArticleRequest) (*models.Article, error) {
	status := req.Status
	if status == "" {
		status = models.StatusPublished
	}
	var categoryID any
	if req.CategoryID > 0 {
		categoryID = req.CategoryID
	}
	result, err := s.conn.Exec(
		"INSERT INTO articles (title, content, language, status, country, category_id, author_id) VALUES (?, ?, ?, ?, ?, ?, ?)",
		req.Title, req.Content, req.Language, status, req.Country, categoryID, authorID,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.ArticleByID(id)
}

// ArticleByID retrieves a single article.
func (s *Store) ArticleByID(id int64) (*models.Article, error) {
	row := s.conn.QueryRow(articleSelect+" WHERE a.id = ?", id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &api.Error{Status: 404, Message: "article not found"}
	}
	return a, err
}

// ListArticles returns published articles matching the filters, newest
// first, with total count for pagination.
func (s *Store) ListArticles(params api.ArticleParams) ([]models.Article, int, error) {
	where := "WHERE a.status = 'PUBLISHED'"
	var args []any
	if params.Language != "" {
		where += " AND a.language = ?"
		args = append(args, params.Language)
	}
	if params.Category != "" {
		where += " AND c.slug = ?"
		args = append(args, params.Category)
	}
	if params.Author > 0 {
		where += " AND a.author_id = ?"
		args = append(args, params.Author)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM articles a LEFT JOIN categories c ON c.id = a.category_id " + where
	if err := s.conn.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	page := params.Page
	if page <= 0 {
		page = 1
	}

	query := articleSelect + where + " ORDER BY a.created_at DESC, a.id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, (page-1)*limit)

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, *a)
	}
	return articles, total, rows.Err()
}

// SearchArticles matches published articles whose title or content
// contains the query.
func (s *Store) SearchArticles(query, language, category string) ([]models.Article, int, error) {
	where := "WHERE a.status = 'PUBLISHED' AND (a.title LIKE ? OR a.content LIKE ?)"
	pattern := "%" + query + "%"
	args := []any{pattern, pattern}
	if language != "" {
		where += " AND a.language = ?"
		args = append(args, language)
	}
	if category != "" {
		where += " AND c.slug = ?"
		args = append(args, category)
	}

	rows, err := s.conn.Query(articleSelect+where+" ORDER BY a.created_at DESC", args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, *a)
	}
	return articles, len(articles), rows.Err()
}

// IncrementViews bumps an article's view counter.
func (s *Store) IncrementViews(id int64) error {
	_, err := s.conn.Exec("UPDATE articles SET views_count = views_count + 1 WHERE id = ?", id)
	return err
}

// ArticleAuthor returns the author id of an article.
func (s *Store) ArticleAuthor(id int64) (int64, error) {
	var authorID int64
	err := s.conn.QueryRow("SELECT author_id FROM articles WHERE id = ?", id).Scan(&authorID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &api.Error{Status: 404, Message: "article not found"}
	}
	return authorID, err
}

// InsertComment stores a comment and bumps the article's counter.
func (s *Store) InsertComment(articleID, authorID int64, content string, parentID *int64) (*models.Comment, error) {
	result, err := s.conn.Exec(
		"INSERT INTO comments (article_id, author_id, parent_id, content) VALUES (?, ?, ?, ?)",
		articleID, authorID, parentID, content,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	if _, err := s.conn.Exec("UPDATE articles SET comments_count = comments_count + 1 WHERE id = ?", articleID); err != nil {
		return nil, err
	}

	row := s.conn.QueryRow(`
		SELECT cm.id, cm.article_id, cm.parent_id, cm.content, cm.created_at,
		       u.id, u.username, u.email, u.first_name, u.last_name, u.is_verified, u.created_at
		FROM comments cm JOIN users u ON u.id = cm.author_id
		WHERE cm.id = ?
	`, id)
	var c models.Comment
	var parent sql.NullInt64
	if err := row.Scan(
		&c.ID, &c.ArticleID, &parent, &c.Content, &c.CreatedAt,
		&c.Author.ID, &c.Author.Username, &c.Author.Email, &c.Author.FirstName,
		&c.Author.LastName, &c.Author.IsVerified, &c.Author.CreatedAt,
	); err != nil {
		return nil, err
	}
	if parent.Valid {
		c.ParentID = &parent.Int64
	}
	return &c, nil
}

// CommentsByArticle lists an article's comments oldest first, with
// replies nested one level under their parent.
func (s *Store) CommentsByArticle(articleID int64) ([]models.Comment, error) {
	rows, err := s.conn.Query(`
		SELECT cm.id, cm.article_id, cm.parent_id, cm.content, cm.created_at,
		       u.id, u.username, u.email, u.first_name, u.last_name, u.is_verified, u.created_at
		FROM comments cm JOIN users u ON u.id = cm.author_id
		WHERE cm.article_id = ?
		ORDER BY cm.created_at ASC, cm.id ASC
	`, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flat []models.Comment
	for rows.Next() {
		var c models.Comment
		var parent sql.NullInt64
		if err := rows.Scan(
			&c.ID, &c.ArticleID, &parent, &c.Content, &c.CreatedAt,
			&c.Author.ID, &c.Author.Username, &c.Author.Email, &c.Author.FirstName,
			&c.Author.LastName, &c.Author.IsVerified, &c.Author.CreatedAt,
		); err != nil {
			return nil, err
		}
		if parent.Valid {
			c.ParentID = &parent.Int64
		}
		flat = append(flat, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Replies nest one level deep: every reply hangs off its top-level
	// ancestor regardless of which comment it answered.
	byID := make(map[int64]*models.Comment, len(flat))
	for i := range flat {
		byID[flat[i].ID] = &flat[i]
	}
	rootOf := func(c *models.Comment) *models.Comment {
		for c.ParentID != nil {
			parent, ok := byID[*c.ParentID]
			if !ok {
				break
			}
			c = parent
		}
		return c
	}

	var rootIDs []int64
	replies := make(map[int64][]models.Comment)
	for i := range flat {
		if flat[i].ParentID == nil {
			rootIDs = append(rootIDs, flat[i].ID)
			continue
		}
		root := rootOf(&flat[i])
		if root.ID == flat[i].ID {
			// Orphaned parent reference; treat as top-level.
			rootIDs = append(rootIDs, flat[i].ID)
			continue
		}
		replies[root.ID] = append(replies[root.ID], flat[i])
	}

	result := make([]models.Comment, 0, len(rootIDs))
	for _, id := range rootIDs {
		c := *byID[id]
		c.Replies = replies[id]
		result = append(result, c)
	}
	return result, nil
}

// Balance returns the wallet state for a user.
func (s *Store) Balance(userID int64) (*models.WalletBalance, error) {
	row := s.conn.QueryRow("SELECT balance, total_earned, total_spent FROM wallets WHERE user_id = ?", userID)
	var b models.WalletBalance
	if err := row.Scan(&b.Balance, &b.TotalEarned, &b.TotalSpent); err != nil {
		return nil, err
	}
	return &b, nil
}

// Transactions lists a user's ledger entries, newest first.
func (s *Store) Transactions(userID int64) ([]models.Transaction, error) {
	rows, err := s.conn.Query(
		"SELECT id, amount, type, description, earning_type, created_at FROM transactions WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Amount, &t.Type, &t.Description, &t.EarningType, &t.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// Debit withdraws amount from a wallet and records a SPENDING entry.
// Returns ErrInsufficientBalance when the wallet cannot cover it.
func (s *Store) Debit(userID int64, amount float64, description string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var balance float64
	if err := tx.QueryRow("SELECT balance FROM wallets WHERE user_id = ?", userID).Scan(&balance); err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientBalance
	}

	if _, err := tx.Exec(
		"UPDATE wallets SET balance = balance - ?, total_spent = total_spent + ? WHERE user_id = ?",
		amount, amount, userID,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO transactions (user_id, amount, type, description) VALUES (?, ?, ?, ?)",
		userID, amount, models.TransactionSpending, description,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// Credit deposits amount into a wallet and records an EARNING entry.
func (s *Store) Credit(userID int64, amount float64, description, earningType string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"UPDATE wallets SET balance = balance + ?, total_earned = total_earned + ? WHERE user_id = ?",
		amount, amount, userID,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO transactions (user_id, amount, type, description, earning_type) VALUES (?, ?, ?, ?, ?)",
		userID, amount, models.TransactionEarning, description, earningType,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// LikeArticle bumps the like counter and returns the new count.
func (s *Store) LikeArticle(id int64) (int, error) {
	if _, err := s.conn.Exec("UPDATE articles SET likes_count = likes_count + 1 WHERE id = ?", id); err != nil {
		return 0, err
	}
	var count int
	err := s.conn.QueryRow("SELECT likes_count FROM articles WHERE id = ?", id).Scan(&count)
	return count, err
}

// UserCount returns the number of users in the demo store.
func (s *Store) UserCount() (int, error) {
	var count int
	err := s.conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}
