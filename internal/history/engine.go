// Package history mediates between UI intents and the remote
// conversation collection: incremental page loading, keyword search
// that supersedes pagination, per-item deletion with local list
// reconciliation, and full-collection clearing.
package history

import (
	"context"
	"strings"
	"sync"

	"github.com/mfogaca/sabia/internal/api"
	"github.com/mfogaca/sabia/internal/session"
)

// Service is the remote side of the engine. *api.Client satisfies it.
type Service interface {
	History(ctx context.Context, userID, limit, offset int) (*api.HistoryResponse, error)
	Search(ctx context.Context, userID int, query string, limit int) (*api.SearchResponse, error)
	DeleteConversation(ctx context.Context, id, userID int) error
	ClearHistory(ctx context.Context, userID int) (int, error)
}

// View is the engine's working set. Items keeps server page order and
// holds no duplicate ids. When ActiveQuery is non-empty, HasMore is
// false and Items is exactly the search result set.
type View struct {
	Items         []api.ConversationSummary
	TotalCount    int
	CurrentOffset int
	PageSize      int
	HasMore       bool
	ActiveQuery   string
	IsFetching    bool
	LastError     string
}

// Engine owns one identity's View. It must be discarded and rebuilt
// when the identity changes; a View never leaks across users.
type Engine struct {
	svc         Service
	sess        *session.Store
	pageSize    int
	searchLimit int

	mu   sync.Mutex
	view View

	// gen stamps every state-replacing fetch. A response applies only
	// if gen is still current, so a slow, superseded call can never
	// overwrite a newer call's result.
	gen uint64
}

// New creates an engine bound to the session store's current identity.
func New(svc Service, sess *session.Store, pageSize, searchLimit int) *Engine {
	return &Engine{
		svc:         svc,
		sess:        sess,
		pageSize:    pageSize,
		searchLimit: searchLimit,
		view:        View{PageSize: pageSize},
	}
}

// View returns a snapshot of the current state. The returned Items
// slice is a copy.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.view
	v.Items = append([]api.ConversationSummary(nil), e.view.Items...)
	return v
}

// LoadPage fetches pageSize items at offset page*pageSize. Page 0
// replaces Items and returns the engine to browse mode; later pages
// append, deduplicated by id. Calling with no identity is a no-error
// no-op. While a fetch is in flight, LoadPage(0) is treated as a
// refresh intent but LoadPage(n>0) is rejected to avoid duplicate
// appends.
func (e *Engine) LoadPage(ctx context.Context, page int) error {
	userID, ok := e.sess.UserID()
	if !ok {
		return nil
	}
	offset := page * e.pageSize

	e.mu.Lock()
	if page > 0 {
		if e.view.IsFetching {
			e.mu.Unlock()
			return nil
		}
		// Appends must continue the current offset sequence, and
		// pagination is suspended entirely while a search is active.
		if e.view.ActiveQuery != "" || offset != e.view.CurrentOffset+e.pageSize {
			e.mu.Unlock()
			return nil
		}
	}
	e.view.IsFetching = true
	e.view.LastError = ""
	e.gen++
	gen := e.gen
	e.mu.Unlock()

	resp, err := e.svc.History(ctx, userID, e.pageSize, offset)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		// Superseded by a newer operation; discard.
		return nil
	}
	e.view.IsFetching = false
	if err != nil {
		e.view.LastError = api.ErrorMessage(err)
		return err
	}

	if page == 0 {
		e.view.Items = append([]api.ConversationSummary(nil), resp.Conversations...)
		e.view.ActiveQuery = ""
	} else {
		seen := make(map[int]bool, len(e.view.Items))
		for _, item := range e.view.Items {
			seen[item.ID] = true
		}
		for _, item := range resp.Conversations {
			if !seen[item.ID] {
				e.view.Items = append(e.view.Items, item)
			}
		}
	}
	e.view.TotalCount = resp.Pagination.Total
	e.view.HasMore = resp.Pagination.HasMore
	e.view.CurrentOffset = offset
	return nil
}

// LoadMore loads the next page when browsing. It is a no-op while a
// search is active, while a fetch is in flight, or when the server has
// reported no further pages.
func (e *Engine) LoadMore(ctx context.Context) error {
	e.mu.Lock()
	if e.view.IsFetching || !e.view.HasMore || e.view.ActiveQuery != "" {
		e.mu.Unlock()
		return nil
	}
	next := e.view.CurrentOffset/e.pageSize + 1
	e.mu.Unlock()
	return e.LoadPage(ctx, next)
}

// Search replaces Items with the keyword search result set and
// suspends pagination. An empty or whitespace query behaves as
// ClearSearch. Rate limiting is the caller's concern; overlapping
// calls are safe because only the current generation's response
// applies.
func (e *Engine) Search(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return e.ClearSearch(ctx)
	}
	userID, ok := e.sess.UserID()
	if !ok {
		return nil
	}

	e.mu.Lock()
	e.view.IsFetching = true
	e.view.LastError = ""
	e.gen++
	gen := e.gen
	e.mu.Unlock()

	resp, err := e.svc.Search(ctx, userID, query, e.searchLimit)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		return nil
	}
	e.view.IsFetching = false
	if err != nil {
		e.view.LastError = api.ErrorMessage(err)
		return err
	}

	e.view.Items = append([]api.ConversationSummary(nil), resp.Results...)
	e.view.TotalCount = resp.Total
	e.view.HasMore = false
	e.view.ActiveQuery = query
	e.view.CurrentOffset = 0
	return nil
}

// ClearSearch drops the active query and reloads page 0.
func (e *Engine) ClearSearch(ctx context.Context) error {
	e.mu.Lock()
	e.view.ActiveQuery = ""
	e.mu.Unlock()
	return e.LoadPage(ctx, 0)
}

// DeleteItem deletes one conversation remotely, then reconciles the
// local list: at most one entry is removed and TotalCount drops by
// exactly one. A failure leaves Items untouched and records LastError.
// Never triggers a re-fetch.
func (e *Engine) DeleteItem(ctx context.Context, id int) error {
	userID, ok := e.sess.UserID()
	if !ok {
		return nil
	}

	if err := e.svc.DeleteConversation(ctx, id, userID); err != nil {
		e.mu.Lock()
		e.view.LastError = api.ErrorMessage(err)
		e.mu.Unlock()
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for i, item := range e.view.Items {
		if item.ID == id {
			e.view.Items = append(e.view.Items[:i], e.view.Items[i+1:]...)
			break
		}
	}
	if e.view.TotalCount > 0 {
		e.view.TotalCount--
	}
	return nil
}

// ClearAll deletes the user's entire history remotely and resets the
// View to its empty form. Returns the count the server reports
// deleted. A failure leaves Items untouched and records LastError.
func (e *Engine) ClearAll(ctx context.Context) (int, error) {
	userID, ok := e.sess.UserID()
	if !ok {
		return 0, nil
	}

	deleted, err := e.svc.ClearHistory(ctx, userID)
	if err != nil {
		e.mu.Lock()
		e.view.LastError = api.ErrorMessage(err)
		e.mu.Unlock()
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// Invalidate any in-flight fetch so a stale page cannot repopulate
	// the list after the server emptied it.
	e.gen++
	e.view.Items = nil
	e.view.TotalCount = 0
	e.view.HasMore = false
	e.view.CurrentOffset = 0
	e.view.IsFetching = false
	return deleted, nil
}

// Refresh re-issues whichever of LoadPage(0) or Search matches the
// current mode, recovering from a stale view without losing search
// context.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	query := e.view.ActiveQuery
	e.mu.Unlock()
	if query != "" {
		return e.Search(ctx, query)
	}
	return e.LoadPage(ctx, 0)
}
