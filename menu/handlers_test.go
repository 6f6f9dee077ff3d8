package menu

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"servecart/models"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type events struct{ names []string }

func (e *events) Emit(_ context.Context, ev models.Event) { e.names = append(e.names, ev.Name) }

func newRouter(t *testing.T) (*httprouter.Router, *memRepo, *memCache, *events) {
	t.Helper()
	repo := &memRepo{items: []models.MenuItem{latte(), croissant()}}
	cache := newMemCache()
	cached := NewCachedSource(repo, cache, time.Minute)
	ev := &events{}
	h := &Handler{
		Source:      cached,
		Repo:        repo,
		Cache:       cached,
		Events:      ev,
		Placeholder: func(context.Context) string { return "/static/placeholder.jpg" },
		PicDir:      t.TempDir(),
	}

	router := httprouter.New()
	router.GET("/api/menu", h.ListItems)
	router.GET("/api/menu/:itemid", h.GetItem)
	router.POST("/api/menu", h.CreateItem)
	router.PUT("/api/menu/:itemid", h.UpdateItem)
	router.DELETE("/api/menu/:itemid", h.DeleteItem)
	router.POST("/api/menu/:itemid/image", h.UploadImage)
	return router, repo, cache, ev
}

func do(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListItems(t *testing.T) {
	router, _, _, _ := newRouter(t)

	rec := do(router, http.MethodGet, "/api/menu", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Coffee", "Pastry"}, resp.Categories)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "/static/placeholder.jpg", resp.Items[0].Image)

	rec = do(router, http.MethodGet, "/api/menu?category=Pastry", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "croissant", resp.Items[0].ID)
	assert.Equal(t, []string{"Coffee", "Pastry"}, resp.Categories)
}

func TestGetItem(t *testing.T) {
	router, _, _, _ := newRouter(t)

	rec := do(router, http.MethodGet, "/api/menu/latte", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var item models.MenuItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, "Cafe Latte", item.Name)

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/api/menu/nope", nil).Code)
}

func TestCreateUpdateDelete(t *testing.T) {
	router, repo, cache, ev := newRouter(t)

	// warm the cache so writes must invalidate it
	do(router, http.MethodGet, "/api/menu", nil)
	require.Contains(t, cache.data, allKey)

	mocha := models.MenuItem{ID: "mocha", Name: "Mocha", Category: "Coffee", BasePrice: money("140"), Available: true}
	rec := do(router, http.MethodPost, "/api/menu", mocha)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, cache.data, allKey)
	assert.Equal(t, http.StatusConflict, do(router, http.MethodPost, "/api/menu", mocha).Code)

	mocha.BasePrice = money("150")
	rec = do(router, http.MethodPut, "/api/menu/mocha", mocha)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got, err := repo.Get(context.Background(), "mocha")
	require.NoError(t, err)
	assert.True(t, got.BasePrice.Equal(money("150")))
	assert.False(t, got.CreatedAt.IsZero())

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodPut, "/api/menu/nope", mocha).Code)

	rec = do(router, http.MethodDelete, "/api/menu/mocha", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/api/menu/mocha", nil).Code)

	assert.Equal(t, []string{"menu-created", "menu-edited", "menu-deleted"}, ev.names)
}

func TestCreateRejectsInvalidItems(t *testing.T) {
	router, _, _, ev := newRouter(t)

	rec := do(router, http.MethodPost, "/api/menu", models.MenuItem{Name: "", BasePrice: money("10")})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/api/menu", models.MenuItem{Name: "Cheap", BasePrice: money("0.001")})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/menu", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, ev.names)
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func upload(t *testing.T, router http.Handler, path, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="latte.png"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	part.Write(data)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUploadImage(t *testing.T) {
	router, repo, _, ev := newRouter(t)

	rec := upload(t, router, "/api/menu/latte/image", "image/png", testPNG(t, 600, 400))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	item, err := repo.Get(context.Background(), "latte")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(item.Image, "/menupic/latte-"))
	assert.True(t, strings.HasPrefix(item.Thumbnail, "/menupic/thumb/latte-"))
	assert.Equal(t, []string{"menu-image-uploaded"}, ev.names)

	assert.Equal(t, http.StatusUnsupportedMediaType, upload(t, router, "/api/menu/latte/image", "text/plain", []byte("hi")).Code)
	assert.Equal(t, http.StatusBadRequest, upload(t, router, "/api/menu/latte/image", "image/png", []byte("not a png")).Code)
	assert.Equal(t, http.StatusNotFound, upload(t, router, "/api/menu/nope/image", "image/png", testPNG(t, 10, 10)).Code)
}

func TestSaveImageWritesThumbnail(t *testing.T) {
	dir := t.TempDir()
	full, thumb, err := SaveImage(bytes.NewReader(testPNG(t, 600, 400)), dir, "iced latte")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(full, "/menupic/iced_latte-"))

	img, err := imaging.Open(filepath.Join(dir, "thumb", filepath.Base(thumb)))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())

	_, err = imaging.Open(filepath.Join(dir, filepath.Base(full)))
	assert.NoError(t, err)
}
