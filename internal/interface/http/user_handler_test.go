package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	userapp "github.com/oksasatya/user-account-api/internal/application"
	"github.com/oksasatya/user-account-api/internal/domain/entity"
	"github.com/oksasatya/user-account-api/internal/infrastructure/storage"
	handlers "github.com/oksasatya/user-account-api/internal/interface/http"
	"github.com/oksasatya/user-account-api/internal/router"
	"github.com/oksasatya/user-account-api/internal/router/modules"
)

// fakeRepo is an in-memory stand-in for the Mongo repository with the same
// ordering, prefix and cursor semantics.
type fakeRepo struct {
	mu    sync.Mutex
	users []entity.User
}

func (f *fakeRepo) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = primitive.NewObjectID()
	f.users = append(f.users, *u)
	return nil
}

func (f *fakeRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].Email == email {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ID.Hex() == id {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) UpdatePartial(_ context.Context, id string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ID.Hex() == id {
			if name, ok := fields["name"].(string); ok {
				f.users[i].Name = name
			}
			if url, ok := fields["avatarUrl"].(string); ok {
				f.users[i].AvatarURL = &url
			}
			return nil
		}
	}
	return fmt.Errorf("no document at %s", id)
}

func (f *fakeRepo) ListPage(_ context.Context, prefix, cursorID string) ([]entity.User, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sorted := append([]entity.User(nil), f.users...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].ID.Hex() < sorted[j].ID.Hex()
	})

	var upper string
	if prefix != "" {
		runes := []rune(prefix)
		runes[len(runes)-1]++
		upper = string(runes)
	}

	var curName, curID string
	if cursorID != "" {
		for i := range sorted {
			if sorted[i].ID.Hex() == cursorID {
				curName, curID = sorted[i].Name, cursorID
				break
			}
		}
	}

	const limit = 10
	page := make([]entity.User, 0, limit+1)
	for _, u := range sorted {
		if prefix != "" && (u.Name < prefix || u.Name >= upper) {
			continue
		}
		if curID != "" && (u.Name < curName || (u.Name == curName && u.ID.Hex() <= curID)) {
			continue
		}
		u.Password = ""
		page = append(page, u)
		if len(page) == limit+1 {
			break
		}
	}
	if len(page) > limit {
		return page[:limit], page[limit-1].ID.Hex(), nil
	}
	return page, "", nil
}

func newTestServer(t *testing.T) (*gin.Engine, *fakeRepo, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	avatars, err := storage.NewLocalStore(root)
	if err != nil {
		t.Fatal(err)
	}
	repo := &fakeRepo{}
	svc := userapp.NewService(repo, avatars, nil)

	engine := gin.New()
	reg := router.NewRegistry(engine)
	reg.Add(modules.NewUserModule(handlers.NewUserHandler(svc, nil)))
	reg.RegisterAll()
	return engine, repo, root
}

func multipartBody(t *testing.T, fields map[string]string, fileField, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func doRequest(engine *gin.Engine, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, engine *gin.Engine, name, email, password string) map[string]any {
	t.Helper()
	body, ct := multipartBody(t, map[string]string{"name": name, "email": email, "password": password}, "", "", nil)
	rec := doRequest(engine, http.MethodPost, "/api/users/register", body, ct)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", email, rec.Code, rec.Body.String())
	}
	return decode(t, rec)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("invalid response body %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestRegisterLoginListScenario(t *testing.T) {
	engine, _, _ := newTestServer(t)

	created := register(t, engine, "Budi", "b@x.com", "secret")
	if created["id"] == "" || created["id"] == nil {
		t.Error("created user has no id")
	}
	if created["avatarUrl"] != nil {
		t.Errorf("avatarUrl should be null, got %v", created["avatarUrl"])
	}
	if _, ok := created["password"]; ok {
		t.Error("password field must be absent from the response")
	}

	// duplicate email
	body, ct := multipartBody(t, map[string]string{"name": "Budi 2", "email": "b@x.com", "password": "other"}, "", "", nil)
	rec := doRequest(engine, http.MethodPost, "/api/users/register", body, ct)
	if rec.Code != http.StatusBadRequest || decode(t, rec)["message"] != "Email sudah terdaftar" {
		t.Errorf("duplicate register: status %d, body %s", rec.Code, rec.Body.String())
	}

	// missing field
	body, ct = multipartBody(t, map[string]string{"name": "X", "email": "x@x.com"}, "", "", nil)
	rec = doRequest(engine, http.MethodPost, "/api/users/register", body, ct)
	if rec.Code != http.StatusBadRequest || decode(t, rec)["message"] != "Nama, email, dan password wajib diisi" {
		t.Errorf("missing field: status %d, body %s", rec.Code, rec.Body.String())
	}

	// login ok
	rec = doRequest(engine, http.MethodPost, "/api/users/login", bytes.NewBufferString(`{"email":"b@x.com","password":"secret"}`), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d, body %s", rec.Code, rec.Body.String())
	}
	loginBody := decode(t, rec)
	if loginBody["message"] != "Login berhasil" {
		t.Errorf("login message = %v", loginBody["message"])
	}
	if user, ok := loginBody["user"].(map[string]any); !ok {
		t.Error("login response is missing the user")
	} else if _, ok := user["password"]; ok {
		t.Error("password leaked in login response")
	}

	// wrong password and unknown email answer identically
	wrongPw := doRequest(engine, http.MethodPost, "/api/users/login", bytes.NewBufferString(`{"email":"b@x.com","password":"wrong"}`), "application/json")
	unknown := doRequest(engine, http.MethodPost, "/api/users/login", bytes.NewBufferString(`{"email":"nobody@x.com","password":"secret"}`), "application/json")
	if wrongPw.Code != http.StatusNotFound || unknown.Code != http.StatusNotFound {
		t.Errorf("credential failures: %d and %d, want 404 for both", wrongPw.Code, unknown.Code)
	}
	if wrongPw.Body.String() != unknown.Body.String() {
		t.Errorf("credential failures differ: %s vs %s", wrongPw.Body.String(), unknown.Body.String())
	}
	if decode(t, wrongPw)["message"] != "Email atau Password salah" {
		t.Errorf("unexpected credential failure message: %s", wrongPw.Body.String())
	}

	// prefix search finds Budi
	rec = doRequest(engine, http.MethodGet, "/api/users?search=Bu", nil, "")
	listBody := decode(t, rec)
	users := listBody["users"].([]any)
	if len(users) != 1 || users[0].(map[string]any)["name"] != "Budi" {
		t.Errorf("search Bu = %s", rec.Body.String())
	}

	// no match: empty list and null cursor
	rec = doRequest(engine, http.MethodGet, "/api/users?search=Zz", nil, "")
	listBody = decode(t, rec)
	if got := listBody["users"].([]any); len(got) != 0 {
		t.Errorf("search Zz should be empty, got %v", got)
	}
	if listBody["lastVisible"] != nil {
		t.Errorf("lastVisible should be null, got %v", listBody["lastVisible"])
	}
}

func TestListIsCaseSensitivePrefixRange(t *testing.T) {
	engine, _, _ := newTestServer(t)
	register(t, engine, "Alice", "alice@x.com", "pw")
	register(t, engine, "Amy", "amy@x.com", "pw")
	register(t, engine, "alfred", "alfred@x.com", "pw")

	rec := doRequest(engine, http.MethodGet, "/api/users?search=Al", nil, "")
	users := decode(t, rec)["users"].([]any)
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.(map[string]any)["name"].(string))
	}
	// "Al" <= "Alice" < "Am": included; "Amy" and lowercase "alfred" fall
	// outside the half-open range under code-point ordering.
	if len(names) != 1 || names[0] != "Alice" {
		t.Errorf("search Al = %v, want exactly [Alice]", names)
	}
}

func TestPaginationVisitsEveryUserExactlyOnce(t *testing.T) {
	engine, repo, _ := newTestServer(t)
	const total = 23
	for i := 0; i < total; i++ {
		u := &entity.User{
			Name:      fmt.Sprintf("user%02d", i),
			Email:     fmt.Sprintf("u%02d@x.com", i),
			Password:  "hash",
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.Create(context.Background(), u); err != nil {
			t.Fatal(err)
		}
	}

	seen := map[string]bool{}
	cursor := ""
	pages := 0
	for {
		path := "/api/users"
		if cursor != "" {
			path += "?lastVisible=" + cursor
		}
		rec := doRequest(engine, http.MethodGet, path, nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("list: status %d, body %s", rec.Code, rec.Body.String())
		}
		body := decode(t, rec)
		users := body["users"].([]any)
		pages++
		for _, u := range users {
			id := u.(map[string]any)["id"].(string)
			if seen[id] {
				t.Fatalf("user %s appeared on more than one page", id)
			}
			seen[id] = true
		}
		if body["lastVisible"] == nil {
			if len(users) > 10 {
				t.Fatalf("page of %d exceeds the fixed size", len(users))
			}
			break
		}
		if len(users) != 10 {
			t.Fatalf("non-final page has %d users, want 10", len(users))
		}
		cursor = body["lastVisible"].(string)
	}
	if len(seen) != total {
		t.Errorf("visited %d users, want %d", len(seen), total)
	}
	if pages != 3 {
		t.Errorf("visited %d pages, want 3", pages)
	}
}

func TestPaginationIgnoresUnknownCursor(t *testing.T) {
	engine, repo, _ := newTestServer(t)
	for i := 0; i < 3; i++ {
		u := &entity.User{Name: fmt.Sprintf("user%d", i), Email: fmt.Sprintf("u%d@x.com", i)}
		if err := repo.Create(context.Background(), u); err != nil {
			t.Fatal(err)
		}
	}

	rec := doRequest(engine, http.MethodGet, "/api/users?lastVisible="+primitive.NewObjectID().Hex(), nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	if users := decode(t, rec)["users"].([]any); len(users) != 3 {
		t.Errorf("unknown cursor should restart from the top, got %d users", len(users))
	}
}

func TestGetByID(t *testing.T) {
	engine, _, _ := newTestServer(t)
	created := register(t, engine, "Budi", "b@x.com", "secret")
	id := created["id"].(string)

	rec := doRequest(engine, http.MethodGet, "/api/users/"+id, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d, body %s", rec.Code, rec.Body.String())
	}
	got := decode(t, rec)
	if got["email"] != "b@x.com" {
		t.Errorf("got %v", got)
	}
	if _, ok := got["password"]; ok {
		t.Error("password leaked in get response")
	}

	rec = doRequest(engine, http.MethodGet, "/api/users/"+primitive.NewObjectID().Hex(), nil, "")
	if rec.Code != http.StatusNotFound || decode(t, rec)["message"] != "User tidak ditemukan" {
		t.Errorf("unknown id: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateProfile(t *testing.T) {
	engine, _, root := newTestServer(t)
	created := register(t, engine, "Budi", "b@x.com", "secret")
	id := created["id"].(string)

	// nothing supplied
	body, ct := multipartBody(t, nil, "", "", nil)
	rec := doRequest(engine, http.MethodPut, "/api/users/"+id, body, ct)
	if rec.Code != http.StatusBadRequest || decode(t, rec)["message"] != "Tidak ada data yang diupdate" {
		t.Errorf("empty update: status %d, body %s", rec.Code, rec.Body.String())
	}

	// rename
	body, ct = multipartBody(t, map[string]string{"name": "Budiman"}, "", "", nil)
	rec = doRequest(engine, http.MethodPut, "/api/users/"+id, body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("rename: status %d, body %s", rec.Code, rec.Body.String())
	}
	renamed := decode(t, rec)
	if renamed["message"] != "Profil berhasil diperbarui" {
		t.Errorf("update message = %v", renamed["message"])
	}
	if renamed["user"].(map[string]any)["name"] != "Budiman" {
		t.Errorf("rename not persisted: %s", rec.Body.String())
	}

	// unknown user
	body, ct = multipartBody(t, map[string]string{"name": "X"}, "", "", nil)
	rec = doRequest(engine, http.MethodPut, "/api/users/"+primitive.NewObjectID().Hex(), body, ct)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown user update: status %d", rec.Code)
	}

	// upload an avatar, then replace it; the first file must be reclaimed
	body, ct = multipartBody(t, nil, "avatar", "one.png", []byte("first"))
	rec = doRequest(engine, http.MethodPut, "/api/users/"+id, body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("avatar upload: status %d, body %s", rec.Code, rec.Body.String())
	}
	firstURL := decode(t, rec)["user"].(map[string]any)["avatarUrl"].(string)

	body, ct = multipartBody(t, nil, "avatar", "two.png", []byte("second"))
	rec = doRequest(engine, http.MethodPut, "/api/users/"+id, body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("avatar replace: status %d, body %s", rec.Code, rec.Body.String())
	}
	secondURL := decode(t, rec)["user"].(map[string]any)["avatarUrl"].(string)
	if firstURL == secondURL {
		t.Fatal("replacement produced the same avatar url")
	}

	toDisk := func(publicPath string) string {
		return filepath.Join(root, strings.TrimPrefix(publicPath, storage.PublicPrefix+"/"))
	}
	if _, err := os.Stat(toDisk(secondURL)); err != nil {
		t.Errorf("current avatar file missing: %v", err)
	}

	// old-file deletion is fire-and-forget
	deadline := time.After(2 * time.Second)
	for {
		if _, err := os.Stat(toDisk(firstURL)); os.IsNotExist(err) {
			break
		}
		select {
		case <-deadline:
			t.Fatal("superseded avatar file was never deleted")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
