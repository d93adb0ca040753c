package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDecodePost(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantID  PostID
		wantAt  time.Time
		wantErr bool
	}{
		{
			name:   "numeric id, naive timestamp",
			body:   `{"id": 42, "content": "hi", "likes": 3, "is_liked": true, "author": {"username": "bob", "full_name": null}, "created_at": "2024-03-01T10:20:30.123456"}`,
			wantID: "42",
			wantAt: time.Date(2024, 3, 1, 10, 20, 30, 123456000, time.UTC),
		},
		{
			name:   "string id, zoned timestamp",
			body:   `{"id": "abc", "created_at": "2024-03-01T10:20:30+02:00"}`,
			wantID: "abc",
			wantAt: time.Date(2024, 3, 1, 8, 20, 30, 0, time.UTC),
		},
		{
			name:   "space separated",
			body:   `{"id": 1, "created_at": "2024-03-01 10:20:30"}`,
			wantID: "1",
			wantAt: time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC),
		},
		{
			name:   "missing timestamp",
			body:   `{"id": 1, "created_at": null}`,
			wantID: "1",
		},
		{
			name:    "garbage timestamp",
			body:    `{"id": 1, "created_at": "yesterday"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var post Post
			err := json.Unmarshal([]byte(tt.body), &post)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if post.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", post.ID, tt.wantID)
			}
			if !post.CreatedAt.Equal(tt.wantAt) {
				t.Errorf("CreatedAt = %v, want %v", post.CreatedAt.Time, tt.wantAt)
			}
		})
	}
}

func TestWithLike(t *testing.T) {
	post := Post{ID: "1", Likes: 3}

	liked := post.WithLike(true)
	if !liked.IsLiked || liked.Likes != 4 {
		t.Errorf("like: got liked %t, %d likes", liked.IsLiked, liked.Likes)
	}
	if again := liked.WithLike(true); again != liked {
		t.Errorf("liking twice changed the post: %+v", again)
	}
	if back := liked.WithLike(false); back != post {
		t.Errorf("unlike: got %+v, want %+v", back, post)
	}
	if post.IsLiked {
		t.Error("WithLike modified the receiver")
	}

	stale := Post{IsLiked: true, Likes: 0}
	if got := stale.WithLike(false); got.Likes != 0 {
		t.Errorf("likes went negative: %d", got.Likes)
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		page, total      int
		hasPrev, hasNext bool
	}{
		{1, 1, false, false},
		{1, 3, false, true},
		{2, 3, true, true},
		{3, 3, true, false},
		{0, 0, false, false},
	}

	for _, tt := range tests {
		p := NewPagination(tt.page, tt.total)
		if p.HasPrev() != tt.hasPrev || p.HasNext() != tt.hasNext {
			t.Errorf("NewPagination(%d, %d): prev %t next %t, want %t %t",
				tt.page, tt.total, p.HasPrev(), p.HasNext(), tt.hasPrev, tt.hasNext)
		}
	}

	p := NewPagination(2, 3)
	if p.PrevPage() != 1 || p.NextPage() != 3 {
		t.Errorf("PrevPage/NextPage = %d/%d", p.PrevPage(), p.NextPage())
	}
}

func TestCredentials(t *testing.T) {
	if (Credentials{Username: "alice"}).IsAuthenticated() {
		t.Error("username alone should not authenticate")
	}
	if got := (Credentials{Password: "x"}).Effective(); got != Anonymous() {
		t.Errorf("Effective = %+v, want anonymous", got)
	}
	full := Credentials{Username: "alice", Password: "x"}
	if full.Effective() != full {
		t.Error("full credentials should go out unchanged")
	}
}
