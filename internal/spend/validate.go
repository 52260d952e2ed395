package spend

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Submission limits enforced locally, before any remote call.
const (
	MaxCommentLength = 2000
	MaxContentLength = 10000
	MaxImages        = 10
	MaxImageSize     = 10 << 20 // 10MB per image
	MaxVideoSize     = 35 << 20 // 35MB
)

var (
	ErrEmptyComment    = errors.New("comment cannot be empty")
	ErrCommentTooLong  = fmt.Errorf("comment must be under %d characters", MaxCommentLength)
	ErrMissingTitle    = errors.New("title is required")
	ErrMissingContent  = errors.New("content is required")
	ErrMissingCountry  = errors.New("country is required")
	ErrMissingCategory = errors.New("category is required")
	ErrContentTooLong  = errors.New("content must be under 10,000 characters")
	ErrTooManyImages   = fmt.Errorf("at most %d images are allowed", MaxImages)
	ErrImageTooLarge   = errors.New("each image must be under 10MB")
	ErrVideoTooLarge   = errors.New("video must be under 35MB")
)

// ValidateComment checks a comment body.
func ValidateComment(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ErrEmptyComment
	}
	// Limits count characters, not bytes; multilingual text must not
	// hit them early.
	if utf8.RuneCountInString(trimmed) > MaxCommentLength {
		return ErrCommentTooLong
	}
	return nil
}

// ArticleSubmission is the locally validated form of a new article.
// Media files are validated by size only; their bytes are forwarded
// unread.
type ArticleSubmission struct {
	Title      string
	Content    string
	Country    string
	Category   string
	ImageSizes []int64
	VideoSize  int64
}

// ValidateArticle checks an article submission against the publishing
// rules: title, content, country and category present, content within
// 10,000 characters, at most 10 images of 10MB each, video under 35MB.
func ValidateArticle(sub ArticleSubmission) error {
	if strings.TrimSpace(sub.Title) == "" {
		return ErrMissingTitle
	}
	if strings.TrimSpace(sub.Content) == "" {
		return ErrMissingContent
	}
	if strings.TrimSpace(sub.Country) == "" {
		return ErrMissingCountry
	}
	if strings.TrimSpace(sub.Category) == "" {
		return ErrMissingCategory
	}
	if utf8.RuneCountInString(sub.Content) > MaxContentLength {
		return ErrContentTooLong
	}
	if len(sub.ImageSizes) > MaxImages {
		return ErrTooManyImages
	}
	for _, size := range sub.ImageSizes {
		if size > MaxImageSize {
			return ErrImageTooLarge
		}
	}
	if sub.VideoSize > MaxVideoSize {
		return ErrVideoTooLarge
	}
	return nil
}
