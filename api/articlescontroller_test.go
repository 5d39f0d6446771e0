package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"stash/storage"
	"stash/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeItemStore struct {
	items map[string]*types.Item // keyed by user|url
	tags  map[string]int
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{items: map[string]*types.Item{}, tags: map[string]int{}}
}

func (f *fakeItemStore) SaveItem(_ context.Context, item *types.Item) (string, error) {
	key := item.UserID + "|" + item.URL
	if _, ok := f.items[key]; ok {
		return "", storage.ErrDuplicateURL
	}
	id := types.GenerateID(key)
	item.ID = id
	f.items[key] = item
	for _, tag := range item.Tags {
		f.tags[tag]++
	}
	return id, nil
}

func (f *fakeItemStore) GetItem(_ context.Context, userID, id string) (*types.Item, error) {
	for _, item := range f.items {
		if item.UserID == userID && item.ID == id {
			return item, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeItemStore) ListItems(_ context.Context, userID string, includeArchived bool) ([]*types.Item, error) {
	var out []*types.Item
	for _, item := range f.items {
		if item.UserID == userID && (!item.Archived || includeArchived) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeItemStore) DeleteItem(_ context.Context, userID, id string) error {
	for key, item := range f.items {
		if item.UserID == userID && item.ID == id {
			delete(f.items, key)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeItemStore) SetArchived(_ context.Context, userID, id string, archived bool) error {
	item, err := f.GetItem(context.Background(), userID, id)
	if err != nil {
		return err
	}
	item.Archived = archived
	return nil
}

func (f *fakeItemStore) TagItem(_ context.Context, _, _, name string) error {
	f.tags[name]++
	return nil
}

func (f *fakeItemStore) UntagItem(_ context.Context, _, _, name string) error {
	if f.tags[name] == 0 {
		return storage.ErrNotFound
	}
	f.tags[name]--
	return nil
}

func (f *fakeItemStore) ListTags(_ context.Context, _ string) ([]types.Tag, error) {
	var out []types.Tag
	for name, count := range f.tags {
		out = append(out, types.Tag{Name: name, Count: count})
	}
	return out, nil
}

func testRouter(store *fakeItemStore) *gin.Engine {
	return NewRouter(Deps{
		Items:       store,
		Highlights:  nil,
		Feeds:       nil,
		DefaultUser: "local",
	})
}

func pageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><meta property="og:title" content="Hello"></head>
			<body><article><p>Some article text.</p></article></body></html>`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSaveArticle(t *testing.T) {
	page := pageServer(t)
	store := newFakeItemStore()
	router := testRouter(store)

	body := `{"url": "` + page.URL + `/post", "tags": ["golang"]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(body))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; want 201; body = %s", w.Code, w.Body.String())
	}

	var saved types.Item
	if err := json.Unmarshal(w.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if saved.Title != "Hello" {
		t.Errorf("title = %q; want Hello", saved.Title)
	}
	if saved.ID == "" {
		t.Errorf("response missing generated id")
	}
	if store.tags["golang"] != 1 {
		t.Errorf("tag count = %d; want 1", store.tags["golang"])
	}
}

func TestSaveArticleDuplicate(t *testing.T) {
	page := pageServer(t)
	store := newFakeItemStore()
	router := testRouter(store)

	body := `{"url": "` + page.URL + `/post"}`
	for i, wantCode := range []int{http.StatusCreated, http.StatusConflict} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(body))
		router.ServeHTTP(w, req)
		if w.Code != wantCode {
			t.Fatalf("request %d: status = %d; want %d", i+1, w.Code, wantCode)
		}
	}
}

func TestSaveArticleExtractionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	router := testRouter(newFakeItemStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(`{"url": "`+srv.URL+`"}`))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d; want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "failed to parse article") {
		t.Errorf("error body missing parse error message: %s", w.Body.String())
	}
}

func TestListArticlesScopedToUser(t *testing.T) {
	page := pageServer(t)
	store := newFakeItemStore()
	router := testRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(`{"url": "`+page.URL+`/a"}`))
	req.Header.Set("X-User-ID", "alice")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("save: status = %d", w.Code)
	}

	// Default user sees nothing.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/articles", nil))
	var resp struct {
		Articles []types.Item `json:"articles"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Articles) != 0 {
		t.Errorf("default user sees %d articles; want 0", len(resp.Articles))
	}

	// Alice sees hers.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.Header.Set("X-User-ID", "alice")
	router.ServeHTTP(w, req)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Articles) != 1 {
		t.Errorf("alice sees %d articles; want 1", len(resp.Articles))
	}
}

func TestHealth(t *testing.T) {
	router := testRouter(newFakeItemStore())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
}
