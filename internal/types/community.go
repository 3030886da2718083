package types

import (
	"strings"
	"time"
)

// FeedPost is a community board post.
type FeedPost struct {
	ID                 string    `json:"id" validate:"required"`
	AuthorName         string    `json:"authorName"`
	AuthorEmail        string    `json:"authorEmail"`
	AuthorProfileImage *string   `json:"authorProfileImage"`
	Content            string    `json:"content"`
	ImageURLs          []string  `json:"imageUrls"`
	LikeCount          int       `json:"likeCount" validate:"gte=0"`
	CommentCount       int       `json:"commentCount" validate:"gte=0"`
	CreatedAt          time.Time `json:"createdAt"`
	IsOwner            bool      `json:"isOwner"`
	IsLikedByMe        bool      `json:"isLikedByMe"`
}

// Validate validates the FeedPost using the validator.
func (p *FeedPost) Validate() error {
	return validate.Struct(p)
}

// Comment is a reply to a feed post.
type Comment struct {
	ID           string    `json:"id" validate:"required"`
	AuthorAlias  string    `json:"authorAlias"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
	IsPostAuthor bool      `json:"isPostAuthor"`
	IsOwner      bool      `json:"isOwner"`
}

// Validate validates the Comment using the validator.
func (c *Comment) Validate() error {
	return validate.Struct(c)
}

// NewPostRequest creates a feed post. A post needs text or at least one image.
type NewPostRequest struct {
	Content   string   `json:"content"`
	ImageURLs []string `json:"imageUrls" validate:"dive,required"`
}

// Validate validates the NewPostRequest using the validator.
func (r *NewPostRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" && len(r.ImageURLs) == 0 {
		return &FieldError{Field: "content", Message: "post needs text or an image"}
	}
	return validate.Struct(r)
}

// NewCommentRequest creates a comment on a post.
type NewCommentRequest struct {
	Content string `json:"content"`
}

// Validate validates the NewCommentRequest using the validator.
func (r *NewCommentRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return &FieldError{Field: "content", Message: "comment is empty"}
	}
	return nil
}
