package feed

import (
	"strings"
	"sync"
	"time"
)

// View keys. A session holds at most one list per key.
const (
	ProfileView = "me"
	userPrefix  = "user:"
	postPrefix  = "post:"
)

func UserView(username string) string {
	return userPrefix + strings.ToLower(username)
}

func PostView(username, id string) string {
	return postPrefix + strings.ToLower(username) + "/" + id
}

type viewKey struct {
	session string
	view    string
}

type viewEntry struct {
	list    *List
	touched time.Time
}

// Views holds the per-session view lists in memory. Entries go away on
// logout and when Sweep finds them idle.
type Views struct {
	mu    sync.Mutex
	lists map[viewKey]*viewEntry
	now   func() time.Time
}

func NewViews() *Views {
	return &Views{
		lists: make(map[viewKey]*viewEntry),
		now:   time.Now,
	}
}

// List returns the list for a view, creating an empty one when needed.
func (v *Views) List(sessionID, view string) *List {
	v.mu.Lock()
	defer v.mu.Unlock()

	key := viewKey{sessionID, view}
	entry, ok := v.lists[key]
	if !ok {
		entry = &viewEntry{list: &List{}}
		v.lists[key] = entry
	}
	entry.touched = v.now()
	return entry.list
}

func (v *Views) Lookup(sessionID, view string) (*List, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	entry, ok := v.lists[viewKey{sessionID, view}]
	if !ok {
		return nil, false
	}
	entry.touched = v.now()
	return entry.list, true
}

func (v *Views) DropSession(sessionID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for key := range v.lists {
		if key.session == sessionID {
			delete(v.lists, key)
		}
	}
}

// Sweep removes lists not touched within idle and reports how many went.
func (v *Views) Sweep(idle time.Duration) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	cutoff := v.now().Add(-idle)
	removed := 0
	for key, entry := range v.lists {
		if entry.touched.Before(cutoff) {
			delete(v.lists, key)
			removed++
		}
	}
	return removed
}

func (v *Views) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.lists)
}
