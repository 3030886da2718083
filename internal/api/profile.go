package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jonathan/careermatch/internal/schemas"
	"github.com/jonathan/careermatch/internal/types"
)

// PlaceholderAvatar is shown when a profile has no image.
const PlaceholderAvatar = "https://api.dicebear.com/7.x/avataaars/svg?seed=profile"

// CurrentLocationLabel is used when reverse geocoding finds no address.
const CurrentLocationLabel = "현재 위치"

// Profile returns the signed-in user's profile.
func (c *Client) Profile(ctx context.Context) (*types.UserProfile, error) {
	var p types.UserProfile
	if err := c.getJSON(ctx, "/api/me/profile", nil, schemas.Profile, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile saves the editable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, update types.ProfileUpdate) error {
	if err := update.Validate(); err != nil {
		return err
	}
	return c.sendJSON(ctx, http.MethodPut, "/api/me/profile", update, "", nil, false)
}

// UploadProfileImage replaces the profile image and returns the updated profile.
func (c *Client) UploadProfileImage(ctx context.Context, filename string, r io.Reader) (*types.UserProfile, error) {
	const path = "/api/me/profile/image"
	body, err := c.upload(ctx, path, filename, r)
	if err != nil {
		return nil, err
	}
	var p types.UserProfile
	if err := decode(path, body, schemas.Profile, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UploadResume uploads a resume file for analysis.
func (c *Client) UploadResume(ctx context.Context, filename string, r io.Reader) error {
	_, err := c.upload(ctx, "/api/resume/upload", filename, r)
	return err
}

// ProfileFromResume asks the backend to fill the profile from resume text.
func (c *Client) ProfileFromResume(ctx context.Context, text string) error {
	req := types.ResumeTextRequest{ResumeText: text}
	if err := req.Validate(); err != nil {
		return err
	}
	return c.sendJSON(ctx, http.MethodPost, "/api/me/profile/from-resume", req, "", nil, false)
}

// ReverseGeocode resolves coordinates to a street address. An empty answer
// becomes CurrentLocationLabel.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))

	body, err := c.do(ctx, request{method: http.MethodGet, path: "/api/maps/reverse", query: q})
	if err != nil {
		return "", err
	}
	address := strings.TrimSpace(string(body))
	if address == "" {
		return CurrentLocationLabel, nil
	}
	return address, nil
}

// ProfileImageURL resolves a stored image reference to something a browser
// can load. Relative paths are served by the backend.
func (c *Client) ProfileImageURL(ref *string) string {
	if ref == nil || strings.TrimSpace(*ref) == "" {
		return PlaceholderAvatar
	}
	if strings.HasPrefix(*ref, "http") {
		return *ref
	}
	return c.BaseURL() + "/" + strings.TrimLeft(*ref, "/")
}
