package router

import (
	"CloudVault/config"
	"CloudVault/internal/repo"
	"CloudVault/internal/storage"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type apiClient struct {
	t     *testing.T
	r     *gin.Engine
	token string
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo.UseTestDB(t)
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	prevStore, prevBucket, prevCfg := storage.Default, storage.Bucket, config.AppConfig
	storage.Default, storage.Bucket = store, "vault"
	config.AppConfig = config.Config{
		JWTSecret:       "router-secret",
		JWTTTL:          time.Hour,
		MaxUploadBytes:  1 << 20,
		PreviewMaxBytes: 1 << 20,
		FrontendURL:     "http://localhost:3000",
		CORSOrigins:     []string{"http://localhost:3000"},
		ShareRate:       1000,
		ShareBurst:      1000,
	}
	t.Cleanup(func() {
		storage.Default, storage.Bucket, config.AppConfig = prevStore, prevBucket, prevCfg
	})
	return InitRouter()
}

func (c *apiClient) do(method, path string, body io.Reader, contentType string, headers ...string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	return w
}

func (c *apiClient) call(method, path string, payload interface{}, wantStatus int, out interface{}) envelope {
	c.t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(c.t, err)
		body = bytes.NewReader(data)
	}
	w := c.do(method, path, body, "application/json")
	require.Equal(c.t, wantStatus, w.Code, w.Body.String())
	var env envelope
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env))
	if out != nil {
		require.NoError(c.t, json.Unmarshal(env.Data, out))
	}
	return env
}

func (c *apiClient) upload(folderID uint64, name, content string) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(c.t, mw.WriteField("folderId", fmt.Sprint(folderID)))
	part, err := mw.CreateFormFile("file", name)
	require.NoError(c.t, err)
	_, err = part.Write([]byte(content))
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())
	return c.do(http.MethodPost, "/api/files/upload", &buf, mw.FormDataContentType())
}

func register(t *testing.T, r *gin.Engine, name string) *apiClient {
	t.Helper()
	anon := &apiClient{t: t, r: r}
	var auth struct {
		Token string `json:"token"`
	}
	anon.call(http.MethodPost, "/api/auth/register", gin.H{
		"username": name, "email": name + "@example.com", "password": "secret123",
	}, http.StatusCreated, &auth)
	require.NotEmpty(t, auth.Token)
	return &apiClient{t: t, r: r, token: auth.Token}
}

type idOnly struct {
	ID uint64 `json:"id"`
}

func TestHealth(t *testing.T) {
	r := setupRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestUploadAndPublicShareFlow(t *testing.T) {
	r := setupRouter(t)
	alice := register(t, r, "alice")
	anon := &apiClient{t: t, r: r}

	anon.call(http.MethodGet, "/api/folders", nil, http.StatusUnauthorized, nil)

	var docs, year idOnly
	alice.call(http.MethodPost, "/api/folders", gin.H{"name": "Docs"}, http.StatusCreated, &docs)
	alice.call(http.MethodPost, "/api/folders", gin.H{"name": "Docs"}, http.StatusConflict, nil)
	alice.call(http.MethodPost, "/api/folders", gin.H{"name": "2024", "parentId": docs.ID}, http.StatusCreated, &year)

	w := alice.upload(docs.ID, "report.txt", "quarterly numbers")
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = alice.upload(year.ID, "report.txt", "quarterly numbers")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var file struct {
		ID          uint64 `json:"id"`
		DisplayType string `json:"displayType"`
	}
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, &file))
	assert.Equal(t, "document", file.DisplayType)

	w = alice.upload(year.ID, "report.txt", "again")
	assert.Equal(t, http.StatusConflict, w.Code)

	alice.call(http.MethodPost, "/api/shares", gin.H{"fileId": file.ID, "expiresAt": "2weeks"}, http.StatusBadRequest, nil)

	var share struct {
		Token    string `json:"token"`
		ShareURL string `json:"shareUrl"`
	}
	alice.call(http.MethodPost, "/api/shares", gin.H{
		"fileId": file.ID, "expiresAt": "1day", "password": "pw", "maxDownloads": 1,
	}, http.StatusCreated, &share)
	assert.Equal(t, "http://localhost:3000/share/"+share.Token, share.ShareURL)

	anon.call(http.MethodGet, "/api/shares/token/"+share.Token, nil, http.StatusUnauthorized, nil)
	w = anon.do(http.MethodGet, "/api/shares/token/"+share.Token, nil, "", "X-Share-Password", "pw")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"name":"report.txt"`)

	w = anon.do(http.MethodGet, "/api/shares/token/"+share.Token+"/download", nil, "", "X-Share-Password", "pw")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "quarterly numbers", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="report.txt"`)

	w = anon.do(http.MethodGet, "/api/shares/token/"+share.Token+"/download", nil, "", "X-Share-Password", "pw")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "download limit reached")

	anon.call(http.MethodGet, "/api/shares/token/unknown", nil, http.StatusNotFound, nil)
}

func TestPreviewAndTrashEndpoints(t *testing.T) {
	r := setupRouter(t)
	alice := register(t, r, "alice")

	var docs, year idOnly
	alice.call(http.MethodPost, "/api/folders", gin.H{"name": "Docs"}, http.StatusCreated, &docs)
	alice.call(http.MethodPost, "/api/folders", gin.H{"name": "2024", "parentId": docs.ID}, http.StatusCreated, &year)
	w := alice.upload(year.ID, "notes.md", "# title")
	require.Equal(t, http.StatusCreated, w.Code)
	var env envelope
	var file idOnly
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, &file))

	var preview struct {
		Type    string `json:"type"`
		Content string `json:"content"`
	}
	alice.call(http.MethodGet, fmt.Sprintf("/api/files/%d/preview", file.ID), nil, http.StatusOK, &preview)
	assert.Equal(t, "text", preview.Type)
	assert.Equal(t, "# title", preview.Content)

	alice.call(http.MethodDelete, fmt.Sprintf("/api/files/%d", file.ID), nil, http.StatusOK, nil)
	alice.call(http.MethodDelete, fmt.Sprintf("/api/files/%d", file.ID), nil, http.StatusNotFound, nil)
	alice.call(http.MethodGet, "/api/files/abc", nil, http.StatusBadRequest, nil)

	var items []struct {
		ID           uint64 `json:"id"`
		OriginalPath string `json:"originalPath"`
	}
	alice.call(http.MethodGet, "/api/trash", nil, http.StatusOK, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "/Docs/2024/notes.md", items[0].OriginalPath)

	var count struct {
		Count int64 `json:"count"`
	}
	alice.call(http.MethodDelete, "/api/trash/empty", nil, http.StatusOK, &count)
	assert.Equal(t, int64(1), count.Count)
}

func TestCleanupRequiresAdmin(t *testing.T) {
	r := setupRouter(t)
	alice := register(t, r, "alice")
	alice.call(http.MethodPost, "/api/system/cleanup", gin.H{"type": "empty_folders"}, http.StatusForbidden, nil)
}
