package messages

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"foodmap/internal/api"
	"foodmap/internal/apperr"
	"foodmap/internal/database"
	"foodmap/internal/handler"
	"foodmap/internal/handler/handlertest"
	"foodmap/internal/model"
	"foodmap/internal/store"

	"github.com/stretchr/testify/require"
)

func restore() {
	createMessage = store.CreateMessage
	listMessages = store.ListMessages
	countMessages = store.CountMessages
	markMessageRead = store.MarkMessageRead
	deleteMessage = store.DeleteMessage
	deleteAllMessages = store.DeleteAllMessages
}

// inbox is an in-memory contact_messages table.
type inbox struct {
	rows   map[int]*model.ContactMessage
	nextID int
	now    time.Time
}

func newInbox() *inbox {
	b := &inbox{rows: map[int]*model.ContactMessage{}, now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	createMessage = func(_ context.Context, _ database.Querier, m *model.ContactMessage) (*model.ContactMessage, error) {
		b.nextID++
		b.now = b.now.Add(time.Minute)
		out := *m
		out.ID = b.nextID
		out.CreatedAt = b.now
		b.rows[out.ID] = &out
		return &out, nil
	}
	listMessages = func(_ context.Context, _ database.Querier, p store.Page) ([]model.ContactMessage, error) {
		list := []model.ContactMessage{}
		for _, m := range b.rows {
			list = append(list, *m)
		}
		sort.Slice(list, func(i, j int) bool {
			if list[i].IsRead != list[j].IsRead {
				return !list[i].IsRead
			}
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})
		start := min(p.Offset(), len(list))
		end := min(start+p.Limit, len(list))
		return list[start:end], nil
	}
	countMessages = func(context.Context, database.Querier) (int, error) { return len(b.rows), nil }
	markMessageRead = func(_ context.Context, _ database.Querier, id int) (*model.ContactMessage, error) {
		m, ok := b.rows[id]
		if !ok {
			return nil, apperr.NotFound("message not found")
		}
		if m.ReadAt == nil {
			b.now = b.now.Add(time.Minute)
			at := b.now
			m.ReadAt = &at
		}
		m.IsRead = true
		out := *m
		return &out, nil
	}
	deleteMessage = func(_ context.Context, _ database.Querier, id int) error {
		if _, ok := b.rows[id]; !ok {
			return apperr.NotFound("message not found")
		}
		delete(b.rows, id)
		return nil
	}
	deleteAllMessages = func(context.Context, database.Querier) (int64, error) {
		n := int64(len(b.rows))
		b.rows = map[int]*model.ContactMessage{}
		return n, nil
	}
	return b
}

func TestContactLifecycle(t *testing.T) {
	t.Cleanup(restore)
	e := handlertest.NewEcho()
	newInbox()

	rec := handlertest.Do(e, ContactHandler(nil), handlertest.JSON(t, http.MethodPost, "/api/contact",
		api.ContactRequest{Name: "Jo", Email: "jo@example.com", Subject: "Hi", Message: "Test"}))
	require.Equal(t, http.StatusOK, rec.Code)
	var created model.ContactMessage
	handlertest.Decode(t, rec, &created)
	require.False(t, created.IsRead)
	require.Nil(t, created.ReadAt)

	page := func() api.PageResponse[model.ContactMessage] {
		rec := handlertest.Do(e, ListHandler(nil), httptest.NewRequest(http.MethodGet, "/api/admin/messages", nil), handlertest.As(1, model.RoleAdmin))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp api.PageResponse[model.ContactMessage]
		handlertest.Decode(t, rec, &resp)
		return resp
	}
	resp := page()
	require.Equal(t, 1, resp.Total)
	require.Equal(t, "Jo", resp.Items[0].Name)

	id := "1"
	rec = handlertest.Do(e, MarkReadHandler(nil), httptest.NewRequest(http.MethodPut, "/api/admin/messages/1/read", nil), handlertest.Params("id", id))
	require.Equal(t, http.StatusOK, rec.Code)
	var read model.ContactMessage
	handlertest.Decode(t, rec, &read)
	require.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)

	// 第二次標記不會改變 read_at
	rec = handlertest.Do(e, MarkReadHandler(nil), httptest.NewRequest(http.MethodPut, "/api/admin/messages/1/read", nil), handlertest.Params("id", id))
	require.Equal(t, http.StatusOK, rec.Code)
	var again model.ContactMessage
	handlertest.Decode(t, rec, &again)
	require.True(t, read.ReadAt.Equal(*again.ReadAt))

	rec = handlertest.Do(e, DeleteHandler(nil), httptest.NewRequest(http.MethodDelete, "/api/admin/messages/1", nil), handlertest.Params("id", id))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, page().Items)

	rec = handlertest.Do(e, DeleteHandler(nil), httptest.NewRequest(http.MethodDelete, "/api/admin/messages/1", nil), handlertest.Params("id", id))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactHandlerValidation(t *testing.T) {
	t.Cleanup(restore)
	e := handlertest.NewEcho()
	b := newInbox()

	bad := []api.ContactRequest{
		{Email: "jo@example.com", Subject: "Hi", Message: "Test"},
		{Name: "Jo", Email: "not-an-email", Subject: "Hi", Message: "Test"},
		{Name: "Jo", Email: "jo@example.com", Subject: "   ", Message: "Test"},
		{Name: "Jo", Email: "jo@example.com", Subject: "Hi"},
	}
	for i, req := range bad {
		rec := handlertest.Do(e, ContactHandler(nil), handlertest.JSON(t, http.MethodPost, "/api/contact", req))
		require.Equal(t, http.StatusBadRequest, rec.Code, "case %d", i)
	}
	rec := handlertest.Do(e, ContactHandler(nil), handlertest.JSON(t, http.MethodPost, "/api/contact", `{"name":`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, b.rows)
}

func TestListHandlerUnreadFirst(t *testing.T) {
	t.Cleanup(restore)
	e := handlertest.NewEcho()
	newInbox()
	for _, name := range []string{"a", "b", "c"} {
		rec := handlertest.Do(e, ContactHandler(nil), handlertest.JSON(t, http.MethodPost, "/api/contact",
			api.ContactRequest{Name: name, Email: name + "@example.com", Subject: "s", Message: "m"}))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := handlertest.Do(e, MarkReadHandler(nil), httptest.NewRequest(http.MethodPut, "/", nil), handlertest.Params("id", "3"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = handlertest.Do(e, ListHandler(nil), httptest.NewRequest(http.MethodGet, "/api/admin/messages?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.PageResponse[model.ContactMessage]
	handlertest.Decode(t, rec, &resp)
	require.Equal(t, 3, resp.Total)
	require.Len(t, resp.Items, 2)
	require.Equal(t, "b", resp.Items[0].Name)
	require.Equal(t, "a", resp.Items[1].Name)

	rec = handlertest.Do(e, ListHandler(nil), httptest.NewRequest(http.MethodGet, "/api/admin/messages?page=-1", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearHandler(t *testing.T) {
	t.Cleanup(restore)
	e := handlertest.NewEcho()
	b := newInbox()
	for i := 0; i < 2; i++ {
		handlertest.Do(e, ContactHandler(nil), handlertest.JSON(t, http.MethodPost, "/api/contact",
			api.ContactRequest{Name: "Jo", Email: "jo@example.com", Subject: "Hi", Message: "Test"}))
	}

	rec := handlertest.Do(e, ClearHandler(nil), httptest.NewRequest(http.MethodDelete, "/api/admin/messages", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, b.rows, 2)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/messages", nil)
	req.Header.Set(handler.HeaderConfirmDelete, "true")
	rec = handlertest.Do(e, ClearHandler(nil), req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"deleted":2}`, rec.Body.String())
	require.Empty(t, b.rows)
}
