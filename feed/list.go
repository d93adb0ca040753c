package feed

import (
	"sync"

	"masterboxer.com/kpitter-web/models"
)

// List is the post list last rendered for one view of one session. Likes and
// new posts mutate it in place so the next render reflects them without a
// backend round trip.
type List struct {
	mu         sync.Mutex
	owner      models.User
	posts      []models.Post
	pagination models.Pagination
}

// Replace swaps in a freshly fetched page.
func (l *List) Replace(page models.PostPage) {
	posts := make([]models.Post, len(page.Posts))
	copy(posts, page.Posts)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.posts = posts
	l.pagination = page.Pagination()
}

// SetOwner records whose posts the list shows.
func (l *List) SetOwner(user models.User) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.owner = user
}

func (l *List) Owner() models.User {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owner
}

func (l *List) Posts() []models.Post {
	l.mu.Lock()
	defer l.mu.Unlock()
	posts := make([]models.Post, len(l.posts))
	copy(posts, l.posts)
	return posts
}

func (l *List) Pagination() models.Pagination {
	l.mu.Lock()
	defer l.mu.Unlock()
	return models.NewPagination(l.pagination.Page, l.pagination.TotalPages)
}

func (l *List) Prepend(post models.Post) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.posts = append([]models.Post{post}, l.posts...)
}

func (l *List) Find(id models.PostID) (models.Post, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.index(id); i >= 0 {
		return l.posts[i], true
	}
	return models.Post{}, false
}

// Mark sets the like state of one post and returns it as it was before and
// after the change.
func (l *List) Mark(id models.PostID, liked bool) (before, after models.Post, ok bool) {
	return l.update(id, func(p models.Post) models.Post { return p.WithLike(liked) })
}

func (l *List) update(id models.PostID, change func(models.Post) models.Post) (before, after models.Post, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(id)
	if i < 0 {
		return models.Post{}, models.Post{}, false
	}
	before = l.posts[i]
	after = change(before)
	l.posts[i] = after
	return before, after, true
}

// Restore puts back a snapshot only while the entry still shows the state
// expected, so a newer like or unlike is never undone by an older failure.
func (l *List) Restore(snapshot, expected models.Post) bool {
	return l.replaceIf(snapshot, expected)
}

// Reconcile overwrites the entry with the backend's copy, under the same
// condition as Restore.
func (l *List) Reconcile(fresh, expected models.Post) bool {
	return l.replaceIf(fresh, expected)
}

func (l *List) replaceIf(post, expected models.Post) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(post.ID)
	if i < 0 {
		return false
	}
	current := l.posts[i]
	if current.IsLiked != expected.IsLiked || current.Likes != expected.Likes {
		return false
	}
	l.posts[i] = post
	return true
}

func (l *List) index(id models.PostID) int {
	for i := range l.posts {
		if l.posts[i].ID == id {
			return i
		}
	}
	return -1
}
