// ABOUTME: HTTP client for the FileVault API
// ABOUTME: Wraps session, file and admin endpoints with proper error handling

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"

	"github.com/filevault/cli/internal/session"
)

// uploadField is the multipart form field the backend reads with getlist.
// Every file in one submission goes under this same repeated field.
const uploadField = "files"

// Client is the API client for the FileVault backend. The cookie jar holds
// the session cookie set by /login; every request goes through it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	jar        *cookiejar.Jar
}

// New creates a new API client with the given base URL
func New(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Jar: jar,
		},
		jar: jar,
	}
}

// APIError is a rejection from the backend: bad credentials, a forbidden
// admin action, a missing record. Message carries the server's error text.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return e.Message
}

// errorResponse represents an API error body
type errorResponse struct {
	Error string `json:"error"`
}

// FileRecord is one file in the authenticated user's collection
type FileRecord struct {
	FileID     string `json:"file_id"`
	Filename   string `json:"filename"`
	UploadDate string `json:"upload_date,omitempty"`
}

// UserRecord is one account as seen by an administrator
type UserRecord struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// uploadResponse is the body returned by POST /dashboard/upload
type uploadResponse struct {
	Files []FileRecord `json:"files"`
}

// SetSessionCookies seeds the jar with cookies restored from the session
// store, so a client in a fresh process resumes the server session.
func (c *Client) SetSessionCookies(cookies []session.Cookie) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid backend URL %s: %w", c.baseURL, err)
	}
	httpCookies := make([]*http.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		httpCookies = append(httpCookies, &http.Cookie{Name: ck.Name, Value: ck.Value, Path: "/"})
	}
	c.jar.SetCookies(u, httpCookies)
	return nil
}

// SessionCookies returns the cookies currently held for the backend,
// in the form the session store persists.
func (c *Client) SessionCookies() []session.Cookie {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil
	}
	var cookies []session.Cookie
	for _, ck := range c.jar.Cookies(u) {
		cookies = append(cookies, session.Cookie{Name: ck.Name, Value: ck.Value})
	}
	return cookies
}

// Login calls POST /login. On success the jar holds the session cookie and
// the returned Session mirrors the server's role/username/user_id exactly.
func (c *Client) Login(ctx context.Context, username, password string) (*session.Session, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var sess session.Session
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}

	return &sess, nil
}

// Logout calls GET /logout to terminate the server session. Callers are
// expected to clear local state whether or not this succeeds.
func (c *Client) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/logout", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.handleErrorResponse(resp)
	}
	return nil
}

// ListFiles calls GET /dashboard and returns the server's current file
// collection for the session user.
func (c *Client) ListFiles(ctx context.Context) ([]FileRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/dashboard", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var files []FileRecord
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	return files, nil
}

// Upload calls POST /dashboard/upload with every given local file under the
// repeated "files" multipart field. Returns the records the server created.
func (c *Client) Upload(ctx context.Context, paths []string) ([]FileRecord, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to upload")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, path := range paths {
		if err := addFilePart(mw, path); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/dashboard/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var uploaded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	return uploaded.Files, nil
}

// addFilePart copies one local file into the multipart form
func addFilePart(mw *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	defer f.Close()

	part, err := mw.CreateFormFile(uploadField, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	return nil
}

// DeleteFile calls POST /dashboard/delete/{file_id}
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/dashboard/delete/"+url.PathEscape(fileID), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.handleErrorResponse(resp)
	}
	return nil
}

// Download calls GET /dashboard/download/{file_id} and copies the raw body
// into dst. Returns the server-suggested filename from Content-Disposition,
// or empty when the server sent none. Downloads change no collection state.
func (c *Client) Download(ctx context.Context, fileID string, dst io.Writer) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/dashboard/download/"+url.PathEscape(fileID), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.handleErrorResponse(resp)
	}

	filename := ""
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			filename = params["filename"]
		}
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return filename, fmt.Errorf("download interrupted: %w", err)
	}
	return filename, nil
}

// ListUsers calls GET /admin/list_users
func (c *Client) ListUsers(ctx context.Context) ([]UserRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/admin/list_users", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var users []UserRecord
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	return users, nil
}

// CreateUser calls POST /admin/create_user
func (c *Client) CreateUser(ctx context.Context, username, password, role string) error {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
		"role":     role,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/create_user", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.handleErrorResponse(resp)
	}
	return nil
}

// DeleteUser calls POST /admin/delete_user/{user_id}
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/delete_user/"+url.PathEscape(userID), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.handleErrorResponse(resp)
	}
	return nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return fmt.Errorf("request canceled")
	}
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("request timed out")
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses API error responses into an APIError so
// callers can surface the server's own text.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	var errResp errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error == "" {
		return &APIError{StatusCode: resp.StatusCode}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
}
