package demo

import (
	"time"

	"arcadia-news/internal/auth"
	"arcadia-news/internal/models"
)

// seed loads starter content into an empty store: the category list,
// a few published articles with engagement history, and the demo
// account (demo@arcadia-news.com / demo12345).
func (s *Store) seed() error {
	count, err := s.UserCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	categories := []models.Category{
		{Name: "Technology", Slug: "tech"},
		{Name: "Blockchain", Slug: "blockchain"},
		{Name: "News", Slug: "news"},
		{Name: "Politics", Slug: "politics"},
		{Name: "Economy", Slug: "economy"},
	}
	for _, c := range categories {
		if _, err := s.conn.Exec("INSERT INTO categories (name, slug) VALUES (?, ?)", c.Name, c.Slug); err != nil {
			return err
		}
	}

	demoHash, err := auth.HashPassword("demo12345")
	if err != nil {
		return err
	}
	seedHash, err := auth.HashPassword("seed-account")
	if err != nil {
		return err
	}

	users := []struct {
		username, email, hash, first, last string
	}{
		{"demo_user", "demo@arcadia-news.com", demoHash, "Demo", "User"},
		{"crypto_expert", "expert@example.com", seedHash, "Crypto", "Expert"},
		{"tech_writer", "tech@example.com", seedHash, "Tech", "Writer"},
		{"economist", "economy@example.com", seedHash, "Economic", "Analyst"},
	}
	for _, u := range users {
		user, err := s.CreateUser(u.username, u.email, u.hash, u.first, u.last)
		if err != nil {
			return err
		}
		if err := s.Credit(user.ID, WelcomeBonus, "Welcome bonus", ""); err != nil {
			return err
		}
	}

	now := time.Now()
	articles := []struct {
		title, content, summary, language, country string
		categoryID, authorID                       int64
		likes, dislikes, views                     int
		age                                        time.Duration
	}{
		{
			title:      "Blockchain Technology Revolutionizes Finance",
			content:    "The decentralized nature of blockchain technology is transforming the financial industry. Banks, exchanges and settlement networks are re-examining their infrastructure as distributed ledgers move from pilots into production.",
			summary:    "Exploring how blockchain is changing the way we think about money and transactions.",
			language:   "en",
			country:    "US",
			categoryID: 2, authorID: 2,
			likes: 42, dislikes: 3, views: 1250,
			age: 24 * time.Hour,
		},
		{
			title:      "AI Breakthrough: New Language Model",
			content:    "Researchers announce a major breakthrough in artificial intelligence with the development of a new language model that narrows the gap between benchmark performance and everyday usefulness.",
			summary:    "Latest AI research shows promising results in natural language processing.",
			language:   "en",
			country:    "US",
			categoryID: 1, authorID: 3,
			likes: 68, dislikes: 5, views: 2100,
			age: 48 * time.Hour,
		},
		{
			title:      "Global Economic Outlook 2025",
			content:    "Economic analysts predict significant changes in global markets for the upcoming year, with supply chains, energy prices and monetary policy all pulling in different directions.",
			summary:    "Expert analysis on global economic trends and predictions for 2025.",
			language:   "en",
			country:    "GB",
			categoryID: 5, authorID: 4,
			likes: 31, dislikes: 7, views: 850,
			age: 72 * time.Hour,
		},
	}
	for _, a := range articles {
		if _, err := s.conn.Exec(`
			INSERT INTO articles (title, content, summary, language, status, country, category_id, author_id,
			                      likes_count, dislikes_count, views_count, created_at, updated_at)
			VALUES (?, ?, ?, ?, 'PUBLISHED', ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.title, a.content, a.summary, a.language, a.country, a.categoryID, a.authorID,
			a.likes, a.dislikes, a.views, now.Add(-a.age), now,
		); err != nil {
			return err
		}
	}

	comments := []struct {
		articleID, authorID int64
		content             string
	}{
		{1, 3, "Great article! Really insightful analysis on blockchain technology."},
		{1, 4, "I'm curious about the long-term implications. Do you think this will really change everything?"},
		{2, 2, "Thanks for sharing this perspective, the benchmark numbers are impressive."},
	}
	for _, c := range comments {
		if _, err := s.InsertComment(c.articleID, c.authorID, c.content, nil); err != nil {
			return err
		}
	}

	return nil
}
