package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/banban-dev/banban/internal/pagination"
)

// ErrUnauthorized is returned when the server rejects the session token
var ErrUnauthorized = errors.New("not authenticated")

// APIError is a non-2xx response other than 401
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// Client represents an HTTP client for the ban:ban API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client for the given base URL (e.g. https://api.banban.app)
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// BaseURL returns the server base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// User is the identity returned by the session endpoint
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	IsAdmin  bool   `json:"isAdmin"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// Feed is a post on the main feed
type Feed struct {
	ID             int64     `json:"feedId"`
	AuthorID       string    `json:"authorId"`
	AuthorNickname string    `json:"authorNickname"`
	Content        string    `json:"content"`
	GameID         *int64    `json:"gameId,omitempty"`
	CommentCount   int64     `json:"commentCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Comment is a reply on a feed post
type Comment struct {
	ID             int64     `json:"commentId"`
	FeedID         int64     `json:"feedId"`
	AuthorID       string    `json:"authorId"`
	AuthorNickname string    `json:"authorNickname"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Notification is an entry in the user's inbox
type Notification struct {
	ID        int64      `json:"notificationId"`
	Kind      string     `json:"kind"`
	Message   string     `json:"message"`
	FeedID    *int64     `json:"feedId,omitempty"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Game is a daily balance game with two options
type Game struct {
	ID       int64  `json:"gameId"`
	Title    string `json:"title"`
	OptionA  string `json:"optionA"`
	OptionB  string `json:"optionB"`
	PlayDate string `json:"playDate"`
}

// VoteInfo holds the current results of a game
type VoteInfo struct {
	GameID int64  `json:"gameId"`
	CountA int64  `json:"countA"`
	CountB int64  `json:"countB"`
	MyVote string `json:"myVote,omitempty"`
}

// CreateGameRequest schedules a game (admin only)
type CreateGameRequest struct {
	Title    string `json:"title" yaml:"title"`
	OptionA  string `json:"optionA" yaml:"optionA"`
	OptionB  string `json:"optionB" yaml:"optionB"`
	PlayDate string `json:"playDate" yaml:"playDate"`
}

// Health is the server health payload
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

type feedPage struct {
	Feeds   []Feed `json:"feeds"`
	HasNext bool   `json:"hasNext"`
}

type commentPage struct {
	Comments []Comment `json:"comments"`
	HasNext  bool      `json:"hasNext"`
}

type notificationPage struct {
	Notifications []Notification `json:"notifications"`
	HasNext       bool           `json:"hasNext"`
}

// FeedID returns the pagination cursor of a feed post
func FeedID(f Feed) int64 { return f.ID }

// CommentID returns the pagination cursor of a comment
func CommentID(c Comment) int64 { return c.ID }

// NotificationID returns the pagination cursor of a notification
func NotificationID(n Notification) int64 { return n.ID }

// Login authenticates the user and returns a session token
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", loginRequest{Email: email, Password: password}, http.StatusOK, &resp)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return &resp, nil
}

// Signup creates an account and returns a session token for it
func (c *Client) Signup(ctx context.Context, email, password, nickname string) (*LoginResponse, error) {
	var resp LoginResponse
	body := signupRequest{Email: email, Password: password, Nickname: nickname}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", "", body, http.StatusCreated, &resp); err != nil {
		return nil, fmt.Errorf("signup failed: %w", err)
	}
	return &resp, nil
}

// Me returns the user the token belongs to. This is the session endpoint.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, http.StatusOK, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout tells the server the session is over
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, http.StatusNoContent, nil)
}

// ListFeeds returns one page of the feed
func (c *Client) ListFeeds(ctx context.Context, token string, req pagination.Request) (pagination.Page[Feed], error) {
	var page feedPage
	if err := c.do(ctx, http.MethodGet, "/api/feeds"+pageQuery(req), token, nil, http.StatusOK, &page); err != nil {
		return pagination.Page[Feed]{}, fmt.Errorf("failed to list feeds: %w", err)
	}
	return pagination.Page[Feed]{Items: page.Feeds, HasNext: page.HasNext}, nil
}

// CreateFeed publishes a post, optionally attached to a game
func (c *Client) CreateFeed(ctx context.Context, token, content string, gameID *int64) (*Feed, error) {
	body := struct {
		Content string `json:"content"`
		GameID  *int64 `json:"gameId,omitempty"`
	}{Content: content, GameID: gameID}

	var feed Feed
	if err := c.do(ctx, http.MethodPost, "/api/feeds", token, body, http.StatusCreated, &feed); err != nil {
		return nil, fmt.Errorf("failed to create feed: %w", err)
	}
	return &feed, nil
}

// ListComments returns one page of comments on a feed post
func (c *Client) ListComments(ctx context.Context, token string, feedID int64, req pagination.Request) (pagination.Page[Comment], error) {
	path := fmt.Sprintf("/api/feeds/%d/comments%s", feedID, pageQuery(req))

	var page commentPage
	if err := c.do(ctx, http.MethodGet, path, token, nil, http.StatusOK, &page); err != nil {
		return pagination.Page[Comment]{}, fmt.Errorf("failed to list comments: %w", err)
	}
	return pagination.Page[Comment]{Items: page.Comments, HasNext: page.HasNext}, nil
}

// CreateComment replies to a feed post
func (c *Client) CreateComment(ctx context.Context, token string, feedID int64, content string) (*Comment, error) {
	body := struct {
		Content string `json:"content"`
	}{Content: content}

	var comment Comment
	path := fmt.Sprintf("/api/feeds/%d/comments", feedID)
	if err := c.do(ctx, http.MethodPost, path, token, body, http.StatusCreated, &comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return &comment, nil
}

// ListNotifications returns one page of the user's notifications
func (c *Client) ListNotifications(ctx context.Context, token string, req pagination.Request) (pagination.Page[Notification], error) {
	var page notificationPage
	if err := c.do(ctx, http.MethodGet, "/api/notifications"+pageQuery(req), token, nil, http.StatusOK, &page); err != nil {
		return pagination.Page[Notification]{}, fmt.Errorf("failed to list notifications: %w", err)
	}
	return pagination.Page[Notification]{Items: page.Notifications, HasNext: page.HasNext}, nil
}

// MarkNotificationRead marks a notification as read
func (c *Client) MarkNotificationRead(ctx context.Context, token string, id int64) error {
	path := fmt.Sprintf("/api/notifications/%d/read", id)
	if err := c.do(ctx, http.MethodPatch, path, token, nil, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// TodayGame returns today's balance game
func (c *Client) TodayGame(ctx context.Context, token string) (*Game, error) {
	var game Game
	if err := c.do(ctx, http.MethodGet, "/api/games/today", token, nil, http.StatusOK, &game); err != nil {
		return nil, fmt.Errorf("failed to get today's game: %w", err)
	}
	return &game, nil
}

// Vote casts a vote ("A" or "B") on a game
func (c *Client) Vote(ctx context.Context, token string, gameID int64, option string) error {
	body := struct {
		Option string `json:"option"`
	}{Option: option}

	path := fmt.Sprintf("/api/games/%d/votes", gameID)
	if err := c.do(ctx, http.MethodPost, path, token, body, http.StatusCreated, nil); err != nil {
		return fmt.Errorf("failed to vote: %w", err)
	}
	return nil
}

// VoteInfo returns the current results of a game
func (c *Client) VoteInfo(ctx context.Context, token string, gameID int64) (*VoteInfo, error) {
	var info VoteInfo
	path := fmt.Sprintf("/api/games/%d/votes", gameID)
	if err := c.do(ctx, http.MethodGet, path, token, nil, http.StatusOK, &info); err != nil {
		return nil, fmt.Errorf("failed to get vote info: %w", err)
	}
	return &info, nil
}

// CreateGame schedules a new balance game (admin only)
func (c *Client) CreateGame(ctx context.Context, token string, req CreateGameRequest) (*Game, error) {
	var game Game
	if err := c.do(ctx, http.MethodPost, "/api/admin/games", token, req, http.StatusCreated, &game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return &game, nil
}

// Health checks that the server is reachable
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/health", "", nil, http.StatusOK, &h); err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}
	return &h, nil
}

func pageQuery(req pagination.Request) string {
	q := url.Values{}
	if req.Cursor != nil {
		q.Set("lastId", strconv.FormatInt(*req.Cursor, 10))
	}
	if req.Size > 0 {
		q.Set("size", strconv.Itoa(req.Size))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// do sends a JSON request and decodes the response into out when out is non-nil
func (c *Client) do(ctx context.Context, method, path, token string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return responseError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func responseError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	msg := strings.TrimSpace(string(raw))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
