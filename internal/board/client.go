package board

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// previewMediaType is required by the projects (classic) endpoints.
const previewMediaType = "application/vnd.github.inertia-preview+json"

// APIError is any non-2xx answer from the board API. Retrying is the
// caller's decision.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api error: status %d: %s", e.Status, e.Body)
}

// Client is a thin, stateless wrapper over the GitHub projects and issues
// endpoints. Credential and base URL are injected at construction.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a board API client
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// do issues one API request and decodes the response into out, if non-nil.
// Every request carries the token and the preview media type.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", previewMediaType)
	req.Header.Set("Authorization", "token "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// ListProjects returns the repository's project boards
func (c *Client) ListProjects(ctx context.Context, owner, repo string) ([]Project, error) {
	var projects []Project
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/%s/projects", owner, repo), nil, &projects)
	return projects, err
}

// CreateProject creates a project board on the repository
func (c *Client) CreateProject(ctx context.Context, owner, repo, name, body string) (Project, error) {
	var project Project
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/repos/%s/%s/projects", owner, repo),
		map[string]string{"name": name, "body": body}, &project)
	return project, err
}

// ListColumns returns the project's columns
func (c *Client) ListColumns(ctx context.Context, projectID int64) ([]Column, error) {
	var columns []Column
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/columns", projectID), nil, &columns)
	return columns, err
}

// CreateColumn appends a column to the project
func (c *Client) CreateColumn(ctx context.Context, projectID int64, name string) (Column, error) {
	var column Column
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/columns", projectID),
		map[string]string{"name": name}, &column)
	return column, err
}

// ListCards returns the column's cards. Single page only.
func (c *Client) ListCards(ctx context.Context, columnID int64) ([]Card, error) {
	var cards []Card
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/columns/%d/cards", columnID), nil, &cards)
	return cards, err
}

// CreateCard adds a card for the given content to the column
func (c *Client) CreateCard(ctx context.Context, columnID, contentID int64, contentType string) (Card, error) {
	var card Card
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/projects/columns/%d/cards", columnID),
		map[string]interface{}{"content_id": contentID, "content_type": contentType}, &card)
	return card, err
}

// DeleteCard removes a card
func (c *Client) DeleteCard(ctx context.Context, cardID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/projects/columns/cards/%d", cardID), nil, nil)
}

// GetIssue fetches one issue. This is also how a pull request's canonical
// issue URL is resolved, since PR webhook payloads don't carry it.
func (c *Client) GetIssue(ctx context.Context, owner, repo string, number int) (Issue, error) {
	var issue Issue
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/%s/issues/%d", owner, repo, number), nil, &issue)
	return issue, err
}
