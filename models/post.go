package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PostID accepts both JSON strings and numbers; the backend has shipped both.
type PostID string

func (id *PostID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PostID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("post id: %w", err)
	}
	*id = PostID(n.String())
	return nil
}

func (id PostID) String() string {
	return string(id)
}

// Timestamp parses RFC 3339 as well as the naive ISO form the backend emits
// for datetimes without a zone. Naive values are treated as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	if unix, err := strconv.ParseFloat(s, 64); err == nil {
		sec := int64(unix)
		t.Time = time.Unix(sec, int64((unix-float64(sec))*1e9)).UTC()
		return nil
	}
	return fmt.Errorf("unsupported timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

type Post struct {
	ID        PostID    `json:"id"`
	Content   string    `json:"content"`
	Likes     int       `json:"likes"`
	IsLiked   bool      `json:"is_liked"`
	Author    User      `json:"author"`
	CreatedAt Timestamp `json:"created_at"`
}

// WithLike returns a copy of p as it looks after the viewer likes or unlikes it.
// Repeating the current state is a no-op.
func (p Post) WithLike(liked bool) Post {
	if p.IsLiked == liked {
		return p
	}
	p.IsLiked = liked
	if liked {
		p.Likes++
	} else if p.Likes > 0 {
		p.Likes--
	}
	return p
}

type CreatePostRequest struct {
	Content string `json:"content"`
}

// PostPage is one fetched page of a user's posts.
type PostPage struct {
	Posts      []Post `json:"posts"`
	Page       int    `json:"page"`
	TotalPages int    `json:"totalPages"`
}

func (p PostPage) Pagination() Pagination {
	return NewPagination(p.Page, p.TotalPages)
}
