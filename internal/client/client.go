// Package client talks to the ChatPDF HTTP API on behalf of one session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/ChatPDF/internal/api"
	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/customHttpClient"
	"github.com/akolanti/ChatPDF/internal/domain/jobModel"
)

// APIError is a non 2xx answer of the server.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client

	PollInterval time.Duration

	mu        sync.Mutex
	sessionId string
}

func New(baseURL string, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		http:         customHttpClient.NewClient(timeout),
		PollInterval: time.Second,
	}
}

// SessionId is empty until the server issued one.
func (c *Client) SessionId() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionId
}

func (c *Client) Models(ctx context.Context) (api.ModelsResponse, error) {
	var res api.ModelsResponse
	err := c.do(ctx, http.MethodGet, "/models", nil, "", &res)
	return res, err
}

func (c *Client) Session(ctx context.Context) (api.SessionResponse, error) {
	var res api.SessionResponse
	err := c.do(ctx, http.MethodGet, "/session", nil, "", &res)
	return res, err
}

// Pages returns the text of every page of the loaded document.
func (c *Client) Pages(ctx context.Context) (api.PagesResponse, error) {
	var res api.PagesResponse
	err := c.do(ctx, http.MethodGet, "/session/pages", nil, "", &res)
	return res, err
}

func (c *Client) SelectModel(ctx context.Context, model string) (api.SessionResponse, error) {
	body, err := json.Marshal(api.ModelSelectRequest{Model: model})
	if err != nil {
		return api.SessionResponse{}, err
	}
	var res api.SessionResponse
	err = c.do(ctx, http.MethodPut, "/session/model", bytes.NewReader(body), "application/json", &res)
	return res, err
}

func (c *Client) Ask(ctx context.Context, question string) (api.InitJobResponse, error) {
	body, err := json.Marshal(api.ChatRequest{Message: question})
	if err != nil {
		return api.InitJobResponse{}, err
	}
	var res api.InitJobResponse
	err = c.do(ctx, http.MethodPost, "/chat", bytes.NewReader(body), "application/json", &res)
	return res, err
}

// Upload streams the file at path as the document form field.
func (c *Client) Upload(ctx context.Context, path string) (api.InitJobResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return api.InitJobResponse{}, err
	}
	defer f.Close()

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		part, err := form.CreateFormFile("document", filepath.Base(path))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		if err == nil {
			err = form.Close()
		}
		pw.CloseWithError(err)
	}()

	var res api.InitJobResponse
	err = c.do(ctx, http.MethodPost, "/ingest", pr, form.FormDataContentType(), &res)
	_ = pr.Close()
	return res, err
}

func (c *Client) Status(ctx context.Context, jobId string) (api.JobResponse, error) {
	var res api.JobResponse
	err := c.do(ctx, http.MethodGet, "/status/"+jobId, nil, "", &res)
	return res, err
}

// Wait polls the job until it completed or failed. A failed job is returned
// together with an *APIError carrying its error.
func (c *Client) Wait(ctx context.Context, jobId string) (api.JobResponse, error) {
	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()
	for {
		res, err := c.Status(ctx, jobId)
		if err != nil {
			return res, err
		}
		switch jobModel.JobStatus(res.Result.Status) {
		case jobModel.JobStatusComplete:
			return res, nil
		case jobModel.JobStatusError:
			if res.Error != nil {
				return res, &APIError{Code: res.Error.Code, Message: res.Error.Message}
			}
			return res, &APIError{Code: http.StatusInternalServerError, Message: "job failed"}
		}

		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) do(ctx context.Context, method string, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if id := c.SessionId(); id != "" {
		req.Header.Set(config.SESSION_ID_HEADER, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if id := resp.Header.Get(config.SESSION_ID_HEADER); id != "" {
		c.mu.Lock()
		c.sessionId = id
		c.mu.Unlock()
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var failed api.JobResponse
		if err := json.NewDecoder(resp.Body).Decode(&failed); err == nil && failed.Error != nil {
			return &APIError{Code: resp.StatusCode, Message: failed.Error.Message}
		}
		return &APIError{Code: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// IsConflict reports a question asked before any document was loaded.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict
}
