package feed

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"masterboxer.com/kpitter-web/models"
	"masterboxer.com/kpitter-web/services"
)

var (
	ErrNotAuthenticated = errors.New("like: login required")
	ErrPostNotInView    = errors.New("like: post is not in the current view")
)

// Like outcome results, also used as metric labels.
const (
	Confirmed  = "confirmed"
	Reconciled = "reconciled"
	RolledBack = "rolled_back"
)

// dispatchTimeout bounds the detached backend calls of one like or unlike.
const dispatchTimeout = 15 * time.Second

type LikeClient interface {
	LikePost(ctx context.Context, creds models.Credentials, username string, id models.PostID) error
	UnlikePost(ctx context.Context, creds models.Credentials, username string, id models.PostID) error
	GetPost(ctx context.Context, creds models.Credentials, username string, id models.PostID) (models.Post, error)
}

// Outcome is what the list ended up showing once the backend answered.
// Err is the like/unlike failure, nil when Result is Confirmed.
type Outcome struct {
	Post   models.Post
	Result string
	Err    error
}

type Liker struct {
	client LikeClient
	wg     sync.WaitGroup
}

func NewLiker(client LikeClient) *Liker {
	return &Liker{client: client}
}

// Set marks the post liked or unliked in list right away and sends the
// request in the background. The returned post is the optimistic state; the
// channel yields exactly one Outcome. The request is sent even when the view
// already shows that state, since the view may be stale.
func (l *Liker) Set(ctx context.Context, list *List, creds models.Credentials, username string, id models.PostID, liked bool) (models.Post, <-chan Outcome, error) {
	if !creds.IsAuthenticated() {
		return models.Post{}, nil, ErrNotAuthenticated
	}
	before, after, ok := list.Mark(id, liked)
	if !ok {
		return models.Post{}, nil, ErrPostNotInView
	}
	return after, l.start(ctx, list, creds, username, before, after), nil
}

func (l *Liker) start(ctx context.Context, list *List, creds models.Credentials, username string, before, after models.Post) <-chan Outcome {
	done := make(chan Outcome, 1)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchTimeout)
		defer cancel()

		outcome := l.dispatch(ctx, list, creds, username, before, after)
		services.ObserveLikeOutcome(outcome.Result)
		done <- outcome
	}()
	return done
}

// Wait blocks until every dispatched like or unlike has finished.
func (l *Liker) Wait() {
	l.wg.Wait()
}

func (l *Liker) dispatch(ctx context.Context, list *List, creds models.Credentials, username string, before, after models.Post) Outcome {
	var err error
	if after.IsLiked {
		err = l.client.LikePost(ctx, creds, username, after.ID)
	} else {
		err = l.client.UnlikePost(ctx, creds, username, after.ID)
	}
	if err == nil {
		return Outcome{Post: after, Result: Confirmed}
	}

	log.Printf("[Like] %s/%s liked=%t failed: %v", username, after.ID, after.IsLiked, err)

	fresh, fetchErr := l.client.GetPost(ctx, creds, username, after.ID)
	if fetchErr == nil {
		list.Reconcile(fresh, after)
		return Outcome{Post: fresh, Result: Reconciled, Err: err}
	}

	log.Printf("[Like] refetch of %s/%s failed, restoring: %v", username, after.ID, fetchErr)
	list.Restore(before, after)
	return Outcome{Post: before, Result: RolledBack, Err: err}
}
