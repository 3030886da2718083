package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonathan/careermatch/internal/schemas"
	"github.com/jonathan/careermatch/internal/types"
)

// Feed returns the community feed, newest first.
func (c *Client) Feed(ctx context.Context) ([]types.FeedPost, error) {
	const path = "/api/community/feed"
	var posts []types.FeedPost
	if err := c.getJSON(ctx, path, nil, schemas.Feed, &posts); err != nil {
		return nil, err
	}
	if err := types.ValidateAll(posts); err != nil {
		return nil, &DecodeError{Path: path, Cause: err}
	}
	return posts, nil
}

// Comments returns the comments on a post.
func (c *Client) Comments(ctx context.Context, postID string) ([]types.Comment, error) {
	path := "/api/community/" + url.PathEscape(postID) + "/comments"
	var comments []types.Comment
	if err := c.getJSON(ctx, path, nil, schemas.Comments, &comments); err != nil {
		return nil, err
	}
	if err := types.ValidateAll(comments); err != nil {
		return nil, &DecodeError{Path: path, Cause: err}
	}
	return comments, nil
}

// CreateComment adds a comment to a post. Blank comments are rejected
// without contacting the backend.
func (c *Client) CreateComment(ctx context.Context, postID, content string) error {
	req := types.NewCommentRequest{Content: strings.TrimSpace(content)}
	if err := req.Validate(); err != nil {
		return err
	}
	path := "/api/community/" + url.PathEscape(postID) + "/comment"
	return c.sendJSON(ctx, http.MethodPost, path, req, "", nil, false)
}

// CreatePost publishes a post. A post needs text or at least one image.
func (c *Client) CreatePost(ctx context.Context, content string, imageURLs []string) error {
	req := types.NewPostRequest{Content: strings.TrimSpace(content), ImageURLs: imageURLs}
	if err := req.Validate(); err != nil {
		return err
	}
	return c.sendJSON(ctx, http.MethodPost, "/api/community/post", req, "", nil, false)
}

// LikePost toggles the user's like on a post.
func (c *Client) LikePost(ctx context.Context, postID string) error {
	path := "/api/community/" + url.PathEscape(postID) + "/like"
	return c.sendJSON(ctx, http.MethodPost, path, nil, "", nil, false)
}

// UploadCommunityImage uploads an image for a post and returns its URL.
func (c *Client) UploadCommunityImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	const path = "/api/community/upload"
	body, err := c.upload(ctx, path, filename, r)
	if err != nil {
		return "", err
	}
	imageURL := strings.TrimSpace(string(body))
	if imageURL == "" {
		return "", &DecodeError{Path: path, Cause: io.ErrUnexpectedEOF}
	}
	return imageURL, nil
}
