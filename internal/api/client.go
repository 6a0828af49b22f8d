package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"blogdesk/internal/blog"
	"blogdesk/internal/models"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "BLOGDESK_HTTP_TIMEOUT"
	apiTokenEnvKey     = "BLOGDESK_API_TOKEN"
)

// Client is a simple HTTP client for the blog API.
type Client struct {
	baseURL   string
	http      *http.Client
	authToken string
	now       func() time.Time
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: httpTimeoutFromEnv()},
		authToken: strings.TrimSpace(os.Getenv(apiTokenEnvKey)),
		now:       time.Now,
	}
}

// SetToken replaces the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.authToken = strings.TrimSpace(token)
}

// BaseURL returns the API root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/login", nil, LoginRequest{Email: email, Password: password}, &resp)
	return resp, err
}

// Logout revokes the current session token.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil, nil)
}

// Me returns the profile behind the current credentials.
func (c *Client) Me(ctx context.Context) (models.Profile, error) {
	var resp models.Profile
	err := c.do(ctx, http.MethodGet, "/api/me", nil, nil, &resp)
	return resp, err
}

// ListRaw fetches the blog list without normalizing it.
func (c *Client) ListRaw(ctx context.Context) ([]json.RawMessage, error) {
	var resp ListBlogsResponse
	if err := c.do(ctx, http.MethodGet, "/api/blog/getBlog", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Blogs, nil
}

// ListBlogs fetches every blog and normalizes each record.
func (c *Client) ListBlogs(ctx context.Context) ([]models.Blog, error) {
	raws, err := c.ListRaw(ctx)
	if err != nil {
		return nil, err
	}
	return blog.NormalizeAll(raws, c.now()), nil
}

// CreateBlog submits a validated draft as a new blog.
func (c *Client) CreateBlog(ctx context.Context, d blog.Draft) (models.Blog, error) {
	if err := d.Validate(); err != nil {
		return models.Blog{}, err
	}
	return c.submit(ctx, http.MethodPost, "/api/blog/createBlog", d)
}

// UpdateBlog replaces an existing blog with the draft contents.
func (c *Client) UpdateBlog(ctx context.Context, d blog.Draft) (models.Blog, error) {
	if strings.TrimSpace(d.ID) == "" {
		return models.Blog{}, blog.ErrMissingID
	}
	if err := d.Validate(); err != nil {
		return models.Blog{}, err
	}
	return c.submit(ctx, http.MethodPut, "/api/blog/updateBlog/"+url.PathEscape(d.ID), d)
}

// DeleteBlog removes one blog.
func (c *Client) DeleteBlog(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return blog.ErrMissingID
	}
	return c.do(ctx, http.MethodDelete, "/api/blog/deleteBlog/"+url.PathEscape(id), nil, nil, nil)
}

// Summary asks the API for a generated summary of an article.
func (c *Client) Summary(ctx context.Context, link string) (string, error) {
	var resp SummaryResponse
	err := c.do(ctx, http.MethodPost, "/api/gemini/summary", nil, LinkRequest{MediumLink: link}, &resp)
	return resp.Summary, err
}

// Autofill asks the API to extract draft fields from an article.
func (c *Client) Autofill(ctx context.Context, link string) (models.AutofillResult, error) {
	var resp AutofillResponse
	err := c.do(ctx, http.MethodPost, "/api/gemini/autofill", nil, LinkRequest{MediumLink: link}, &resp)
	return resp, err
}

// AdminUserAdd provisions one member account.
func (c *Client) AdminUserAdd(ctx context.Context, req AdminUserCreateRequest) (AdminUser, error) {
	var resp AdminUser
	err := c.do(ctx, http.MethodPost, "/api/admin/users", nil, req, &resp)
	return resp, err
}

// AdminUserList returns every provisioned account.
func (c *Client) AdminUserList(ctx context.Context) ([]AdminUser, error) {
	var resp []AdminUser
	err := c.do(ctx, http.MethodGet, "/api/admin/users", nil, nil, &resp)
	return resp, err
}

// AdminUserSetDisabled enables or disables one account.
func (c *Client) AdminUserSetDisabled(ctx context.Context, email string, disabled bool) (AdminUser, error) {
	var resp AdminUser
	err := c.do(ctx, http.MethodPatch, "/api/admin/users/"+url.PathEscape(email), nil, AdminUserSetDisabledRequest{Disabled: disabled}, &resp)
	return resp, err
}

// AdminUserDelete removes one account and its sessions.
func (c *Client) AdminUserDelete(ctx context.Context, email string) (AdminUserDeleteResponse, error) {
	var resp AdminUserDeleteResponse
	err := c.do(ctx, http.MethodDelete, "/api/admin/users/"+url.PathEscape(email), nil, nil, &resp)
	return resp, err
}

func (c *Client) submit(ctx context.Context, method, path string, d blog.Draft) (models.Blog, error) {
	body, contentType, err := encodeDraft(d)
	if err != nil {
		return models.Blog{}, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return models.Blog{}, err
	}
	req.Header.Set("Content-Type", contentType)
	c.setAuthHeader(req)

	httpResp, err := c.http.Do(req)
	if err != nil {
		return models.Blog{}, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode >= 400 {
		return models.Blog{}, decodeError(httpResp)
	}

	var resp BlogResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return models.Blog{}, err
	}
	return blog.Normalize(resp.Blog, c.now()), nil
}

// encodeDraft builds the multipart form. A local image file is uploaded as
// the image part; otherwise the image URL travels as a plain field.
func encodeDraft(d blog.Draft) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := d.FormFields()
	for _, key := range formFieldOrder {
		if err := w.WriteField(key, fields[key]); err != nil {
			return nil, "", err
		}
	}

	if path := strings.TrimSpace(d.ImageFile); path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, "", fmt.Errorf("open image: %w", err)
		}
		defer file.Close()
		part, err := w.CreateFormFile("image", filepath.Base(path))
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, "", fmt.Errorf("read image: %w", err)
		}
	} else if err := w.WriteField("image", strings.TrimSpace(d.ImageURL)); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var formFieldOrder = []string{"title", "author", "blogLink", "desc", "summary", "date", "visibility", "category", "approval"}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
		apiErr.Code = errResp.Code
		apiErr.ErrorCode = errResp.ErrorCode
		apiErr.Message = errResp.Error
		if apiErr.Message == "" {
			apiErr.Message = errResp.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = "api error: " + resp.Status
	}
	return apiErr
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.authToken == "" || req == nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
