package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tomnomnom/linkheader"
	"masterboxer.com/kpitter-web/models"
)

// AnonymousPostLimit is how many of the newest posts an anonymous viewer gets.
const AnonymousPostLimit = 10

var (
	ErrNotFound           = errors.New("backend: not found")
	ErrUnauthorized       = errors.New("backend: unauthorized")
	ErrForbidden          = errors.New("backend: forbidden")
	ErrConflict           = errors.New("backend: conflict")
	ErrMissingCredentials = errors.New("backend: credentials required")
)

// StatusError is returned for every non-2xx response. It matches the
// sentinel errors above through errors.Is.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: %s %s returned %d: %s", e.Method, e.Path, e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized
	case ErrForbidden:
		return e.Code == http.StatusForbidden
	case ErrConflict:
		return e.Code == http.StatusConflict
	}
	return false
}

type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

type UserCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// Backend is the HTTP client for the posting service API.
type Backend struct {
	baseURL *url.URL
	client  HTTPDoer
	cache   UserCache
}

type BackendOption func(*Backend)

func WithHTTPClient(client HTTPDoer) BackendOption {
	return func(b *Backend) {
		b.client = client
	}
}

func WithUserCache(cache UserCache) BackendOption {
	return func(b *Backend) {
		b.cache = cache
	}
}

func NewBackend(baseURL string, opts ...BackendOption) (*Backend, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}

	b := &Backend{
		baseURL: parsed,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *Backend) Me(ctx context.Context, creds models.Credentials) (models.User, error) {
	var user models.User
	resp, err := b.do(ctx, "me", http.MethodGet, b.endpoint(nil, "me"), creds, nil)
	if err != nil {
		return user, err
	}
	err = decodeJSON(resp, &user)
	return user, err
}

// Register creates an account. Only 201 Created counts as success.
func (b *Backend) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	endpoint := b.endpoint(nil, "register")
	resp, err := b.do(ctx, "register", http.MethodPost, endpoint, models.Anonymous(), req)
	if err != nil {
		return models.User{}, err
	}
	if resp.StatusCode != http.StatusCreated {
		resp.Body.Close()
		return models.User{}, &StatusError{Method: http.MethodPost, Path: endpoint.Path, Code: resp.StatusCode, Body: "expected 201 Created"}
	}

	user := models.User{Username: req.Username, FullName: req.FullName}
	if err := decodeJSON(resp, &user); err != nil && !errors.Is(err, io.EOF) {
		log.Printf("[Backend] register: ignoring unreadable body: %v", err)
	}
	return user, nil
}

// GetUser is public and cached when a UserCache is configured.
func (b *Backend) GetUser(ctx context.Context, username string) (models.User, error) {
	var user models.User
	key := userCacheKey(username)

	if b.cache != nil {
		if cached, ok := b.cache.Get(key); ok {
			if err := json.Unmarshal(cached, &user); err == nil {
				return user, nil
			}
		}
	}

	resp, err := b.do(ctx, "get_user", http.MethodGet, b.endpoint(nil, "users", username), models.Anonymous(), nil)
	if err != nil {
		return user, err
	}
	if err := decodeJSON(resp, &user); err != nil {
		return user, err
	}

	if b.cache != nil {
		if encoded, err := json.Marshal(user); err == nil {
			b.cache.Set(key, encoded)
		}
	}
	return user, nil
}

// ListPosts fetches a user's posts. Anonymous callers get a single page with
// at most AnonymousPostLimit posts; authenticated callers get the requested
// page and a page count taken from the body or the Link header.
func (b *Backend) ListPosts(ctx context.Context, creds models.Credentials, username string, page int) (models.PostPage, error) {
	authenticated := creds.IsAuthenticated()
	if page < 1 {
		page = 1
	}

	var query url.Values
	if authenticated {
		query = url.Values{"page": {strconv.Itoa(page)}}
	} else {
		page = 1
	}

	resp, err := b.do(ctx, "list_posts", http.MethodGet, b.endpoint(query, "users", username, "posts"), creds, nil)
	if err != nil {
		return models.PostPage{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.PostPage{}, fmt.Errorf("read posts: %w", err)
	}
	raw = bytes.TrimSpace(raw)

	result := models.PostPage{Page: page, TotalPages: 1}
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &result.Posts); err != nil {
			return models.PostPage{}, fmt.Errorf("decode posts: %w", err)
		}
		if authenticated {
			result.TotalPages = lastPageFromLink(resp.Header.Get("Link"), page)
		}
	} else {
		var body struct {
			Posts      []models.Post `json:"posts"`
			TotalPages int          `json:"totalPages"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return models.PostPage{}, fmt.Errorf("decode posts: %w", err)
		}
		result.Posts = body.Posts
		if authenticated && body.TotalPages > 0 {
			result.TotalPages = body.TotalPages
		}
	}

	if !authenticated {
		result.Posts = lastPosts(result.Posts, AnonymousPostLimit)
	}
	return result, nil
}

func (b *Backend) CreatePost(ctx context.Context, creds models.Credentials, content string) (models.Post, error) {
	var post models.Post
	if !creds.IsAuthenticated() {
		return post, ErrMissingCredentials
	}
	resp, err := b.do(ctx, "create_post", http.MethodPost, b.endpoint(nil, "users", creds.Username, "posts"), creds, models.CreatePostRequest{Content: content})
	if err != nil {
		return post, err
	}
	err = decodeJSON(resp, &post)
	return post, err
}

func (b *Backend) GetPost(ctx context.Context, creds models.Credentials, username string, id models.PostID) (models.Post, error) {
	var post models.Post
	resp, err := b.do(ctx, "get_post", http.MethodGet, b.endpoint(nil, "users", username, "posts", id.String()), creds, nil)
	if err != nil {
		return post, err
	}
	err = decodeJSON(resp, &post)
	return post, err
}

func (b *Backend) LikePost(ctx context.Context, creds models.Credentials, username string, id models.PostID) error {
	return b.setLike(ctx, "like", http.MethodPut, creds, username, id)
}

func (b *Backend) UnlikePost(ctx context.Context, creds models.Credentials, username string, id models.PostID) error {
	return b.setLike(ctx, "unlike", http.MethodDelete, creds, username, id)
}

func (b *Backend) setLike(ctx context.Context, op, method string, creds models.Credentials, username string, id models.PostID) error {
	if !creds.IsAuthenticated() {
		return ErrMissingCredentials
	}
	resp, err := b.do(ctx, op, method, b.endpoint(nil, "users", username, "posts", id.String(), "like"), creds, nil)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// endpoint appends escaped path segments to the base URL.
func (b *Backend) endpoint(query url.Values, segments ...string) *url.URL {
	u := *b.baseURL
	rawPath := u.EscapedPath()
	path := u.Path
	for _, segment := range segments {
		rawPath += "/" + url.PathEscape(segment)
		path += "/" + segment
	}
	u.Path = path
	u.RawPath = rawPath
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return &u
}

func (b *Backend) do(ctx context.Context, op, method string, endpoint *url.URL, creds models.Credentials, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	wire := creds.Effective()
	req.SetBasicAuth(wire.Username, wire.Password)

	start := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		ObserveBackendRequest(op, "error", time.Since(start))
		return nil, fmt.Errorf("%s %s: %w", method, endpoint.Path, err)
	}
	ObserveBackendRequest(op, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{
			Method: method,
			Path:   endpoint.Path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}
	return resp, nil
}

func decodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func lastPosts(posts []models.Post, n int) []models.Post {
	if len(posts) <= n {
		return posts
	}
	return posts[len(posts)-n:]
}

// lastPageFromLink reads rel="last" from a Link header. Without it a
// rel="next" means at least one more page; otherwise current is the last.
func lastPageFromLink(header string, current int) int {
	if header == "" {
		return current
	}
	links := linkheader.Parse(header)
	for _, link := range links.FilterByRel("last") {
		if n := pageParam(link.URL); n > 0 {
			return n
		}
	}
	if len(links.FilterByRel("next")) > 0 {
		return current + 1
	}
	return current
}

func pageParam(raw string) int {
	u, err := url.Parse(raw)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil {
		return 0
	}
	return n
}

func userCacheKey(username string) string {
	return "user:" + url.QueryEscape(strings.ToLower(username))
}
