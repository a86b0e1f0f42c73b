package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kootkounter/kootbot/internal/domain"
	"github.com/kootkounter/kootbot/internal/services"
)

// --- fake directory ---

type fakeDirectory struct {
	users []domain.TrackedUser
	total int64

	statsCount int64
	statsMax   *time.Time

	getErr   error
	listErr  error
	statsErr error

	gotPage, gotSize int
	listCalls        int
}

func (f *fakeDirectory) Get(_ context.Context, id int64) (*domain.TrackedUser, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i], nil
		}
	}
	return nil, services.ErrNotRegistered
}

func (f *fakeDirectory) ListPage(_ context.Context, page, pageSize int) ([]domain.TrackedUser, int64, error) {
	f.gotPage, f.gotSize = page, pageSize
	f.listCalls++
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.users, f.total, nil
}

func (f *fakeDirectory) Stats(context.Context) (int64, *time.Time, error) {
	if f.statsErr != nil {
		return 0, nil, f.statsErr
	}
	return f.statsCount, f.statsMax, nil
}

func newUserRig(dir Directory) *gin.Engine {
	r := gin.New()
	h := New(nil, dir)
	r.GET("/users", h.ListUsers)
	r.GET("/users/:id", h.GetUser)
	return r
}

func get(r *gin.Engine, path string, hdr map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

// --- ListUsers ---

func TestListUsers_PageAndMetadata(t *testing.T) {
	now := time.Now()
	dir := &fakeDirectory{
		users:      []domain.TrackedUser{{ID: 1}, {ID: 2}},
		total:      45,
		statsCount: 45,
		statsMax:   &now,
	}
	r := newUserRig(dir)

	w := get(r, "/users?page=2&page_size=20", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if dir.gotPage != 2 || dir.gotSize != 20 {
		t.Fatalf("ListPage called with page=%d size=%d", dir.gotPage, dir.gotSize)
	}

	var resp ListUsersResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Users) != 2 {
		t.Fatalf("users = %+v", resp.Users)
	}
	p := resp.Pagination
	if p.Page != 2 || p.PageSize != 20 || p.Total != 45 || p.TotalPages != 3 || !p.HasNext {
		t.Fatalf("pagination = %+v", p)
	}
	if w.Header().Get("ETag") == "" {
		t.Fatalf("missing ETag")
	}
}

func TestListUsers_PaginationClamped(t *testing.T) {
	dir := &fakeDirectory{}
	r := newUserRig(dir)

	w := get(r, "/users?page=-3&page_size=5000", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if dir.gotPage != 1 || dir.gotSize != 100 {
		t.Fatalf("clamped to page=%d size=%d", dir.gotPage, dir.gotSize)
	}
}

func TestListUsers_ETagNotModified(t *testing.T) {
	now := time.Unix(1700000000, 0)
	dir := &fakeDirectory{statsCount: 3, statsMax: &now}
	r := newUserRig(dir)

	w := get(r, "/users", nil)
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag on first response")
	}

	w = get(r, "/users", map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("304 must have empty body, got %q", w.Body.String())
	}
	// 304 short-circuits before the page query.
	if dir.listCalls != 1 {
		t.Fatalf("ListPage ran %d times, want 1", dir.listCalls)
	}
}

func TestListUsers_Errors(t *testing.T) {
	r := newUserRig(&fakeDirectory{statsErr: errors.New("boom")})
	if w := get(r, "/users", nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("stats error status = %d", w.Code)
	}

	r = newUserRig(&fakeDirectory{listErr: errors.New("boom")})
	if w := get(r, "/users", nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("list error status = %d", w.Code)
	}
}

// --- GetUser ---

func TestGetUser_Found(t *testing.T) {
	dir := &fakeDirectory{users: []domain.TrackedUser{{ID: 42, DisplayName: "alice", KootCount: 7}}}
	r := newUserRig(dir)

	w := get(r, "/users/42", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var u domain.TrackedUser
	if err := json.Unmarshal(w.Body.Bytes(), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if u.ID != 42 || u.DisplayName != "alice" || u.KootCount != 7 {
		t.Fatalf("user = %+v", u)
	}
}

func TestGetUser_NotTracked(t *testing.T) {
	r := newUserRig(&fakeDirectory{})
	w := get(r, "/users/7", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Code != ErrCodeNotFound {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestGetUser_BadID(t *testing.T) {
	r := newUserRig(&fakeDirectory{})
	if w := get(r, "/users/bob", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestGetUser_StorageError(t *testing.T) {
	r := newUserRig(&fakeDirectory{getErr: errors.New("boom")})
	if w := get(r, "/users/42", nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}

// --- usersETag ---

func TestUsersETag(t *testing.T) {
	if got := usersETag(0, nil); got != `W/"users-0-0"` {
		t.Fatalf("empty etag = %q", got)
	}
	ts := time.Unix(10, 0)
	a := usersETag(3, &ts)
	b := usersETag(3, &ts)
	if a != b {
		t.Fatalf("etag not deterministic: %q vs %q", a, b)
	}
	ts2 := ts.Add(time.Second)
	if usersETag(3, &ts2) == a {
		t.Fatalf("etag must change when updated_at moves")
	}
}
