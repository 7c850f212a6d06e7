package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	appconfig "github.com/HaiFongPan/minas-cli/internal/config"
	"github.com/HaiFongPan/minas-cli/internal/media"
	"github.com/HaiFongPan/minas-cli/internal/vpath"
)

// filesPrefix is the common path prefix of the file routes.
const filesPrefix = "/files"

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 64 * 1024

// Client talks to the REST file server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	config     *appconfig.ServerConfig
}

// NewClient creates a new file server client from configuration
func NewClient(cfg *appconfig.ServerConfig) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url must be absolute: %q", cfg.BaseURL)
	}

	return &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
		config: cfg,
	}, nil
}

// GetHTTPClient returns the underlying HTTP client
func (c *Client) GetHTTPClient() *http.Client {
	return c.httpClient
}

// Name returns the server base URL.
func (c *Client) Name() string {
	return c.baseURL
}

// route builds {base}/files/{op}/{encoded path}. An empty op addresses the
// listing route.
func (c *Client) route(op, path string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString(filesPrefix)
	b.WriteString("/")
	if op != "" {
		b.WriteString(op)
		b.WriteString("/")
	}
	b.WriteString(vpath.Encode(path))
	return b.String()
}

// DownloadURL returns the URL that serves path as an attachment.
func (c *Client) DownloadURL(path string) string {
	return c.route("download", path)
}

// StreamURL returns the URL that serves path inline.
func (c *Client) StreamURL(path string) string {
	return c.route("stream", path)
}

// List returns the entries of a directory in server order.
func (c *Client) List(ctx context.Context, path string) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.route("", path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.do(req, "list", path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode listing of %q: %w", path, err)
	}
	return entries, nil
}

// Upload posts r as the multipart field "file" into dir. The body is
// streamed; size is only used for logging.
func (c *Client) Upload(ctx context.Context, dir, name string, r io.Reader, size int64) error {
	contentType, _ := media.ContentType(name, nil)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(name)))
		header.Set("Content-Type", contentType)

		part, err := mw.CreatePart(header)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(fmt.Errorf("failed to read upload source: %w", err))
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.route("upload", dir), pr)
	if err != nil {
		pr.Close()
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	logrus.WithFields(logrus.Fields{"dir": dir, "name": name, "size": size}).Debug("Uploading file")

	resp, err := c.do(req, "upload", vpath.Child(dir, name))
	// Unblocks the writer goroutine if the request ended before the body
	// was fully consumed.
	pr.Close()
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// Delete removes a single file.
func (c *Client) Delete(ctx context.Context, filePath string) error {
	return c.send(ctx, http.MethodDelete, c.route("delete", filePath), "delete", filePath)
}

// DeleteDir removes a directory and everything below it.
func (c *Client) DeleteDir(ctx context.Context, dirPath string) error {
	return c.send(ctx, http.MethodDelete, c.route("delete-dir", dirPath)+"?recursive=1", "delete-dir", dirPath)
}

// Mkdir creates folder name under parent (root when parent is empty).
func (c *Client) Mkdir(ctx context.Context, parent, name string) error {
	u := c.route("mkdir", parent) + "?name=" + url.QueryEscape(name)
	return c.send(ctx, http.MethodPost, u, "mkdir", vpath.Child(parent, name))
}

// Rename renames the leaf of path to newName, keeping its parent.
func (c *Client) Rename(ctx context.Context, path, newName string) error {
	u := c.route("rename", path) + "?name=" + url.QueryEscape(newName)
	return c.send(ctx, http.MethodPost, u, "rename", path)
}

// Ping checks the server health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.send(ctx, http.MethodGet, c.baseURL+"/health", "health", "")
}

// Open fetches rawURL, typically a download or stream URL.
func (c *Client) Open(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	return openURL(ctx, c.httpClient, rawURL)
}

func (c *Client) send(ctx context.Context, method, rawURL, op, path string) error {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.do(req, op, path)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// do executes req and converts non-2xx answers into *ServerError.
func (c *Client) do(req *http.Request, op, path string) (*http.Response, error) {
	log := logrus.WithFields(logrus.Fields{"op": op, "path": path})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("Request failed")
		return nil, fmt.Errorf("%s %q: %w", op, path, err)
	}

	if err := checkStatus(resp); err != nil {
		log.WithField("status", resp.StatusCode).Warnf("Server rejected request: %v", err)
		return nil, err
	}

	log.WithField("status", resp.StatusCode).Debug("Request completed")
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &ServerError{StatusCode: resp.StatusCode, Body: string(body)}
}

func openURL(ctx context.Context, httpClient *http.Client, rawURL string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, 0, err
	}
	return resp.Body, resp.ContentLength, nil
}

// drain discards the success body so the connection can be reused.
func drain(resp *http.Response) {
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
