package storeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuslink/internal/collection"
	"campuslink/internal/metrics"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(collection.Restrict(collection.NewMemory(), []string{"events", "users"})).Register(r)
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestCRUD(t *testing.T) {
	r := newRouter()

	w, out := do(t, r, http.MethodGet, "/events", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, out)

	w, out = do(t, r, http.MethodPost, "/events", `{"title":"Career Fair","date":"2025-04-10"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := out.(map[string]any)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	w, out = do(t, r, http.MethodGet, "/events/"+id, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Career Fair", out.(map[string]any)["title"])

	w, out = do(t, r, http.MethodPut, "/events/"+id, `{"title":"Career Fair 2"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, out.(map[string]any)["id"])

	w, out = do(t, r, http.MethodGet, "/events?title=Career+Fair+2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out, 1)

	w, out = do(t, r, http.MethodGet, "/events?title=Career+Fair", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out, 0)

	w, _ = do(t, r, http.MethodDelete, "/events/"+id, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/events/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrors(t *testing.T) {
	r := newRouter()

	w, _ := do(t, r, http.MethodGet, "/secrets", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodPost, "/events", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPut, "/events/nope", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodDelete, "/events/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodPost, "/users", `{"id":"u1","email":"a@b.co"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	w, _ = do(t, r, http.MethodPost, "/users", `{"id":"u1","email":"c@d.co"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUnknownCollectionsShareOneMetricLabel(t *testing.T) {
	r := newRouter()
	before := testutil.ToFloat64(metrics.CollectionOps.WithLabelValues(unknownLabel, "list", "404"))

	for _, path := range []string{"/nope", "/random-1", "/random-2"} {
		w, _ := do(t, r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	}

	assert.Equal(t, before+3, testutil.ToFloat64(metrics.CollectionOps.WithLabelValues(unknownLabel, "list", "404")))
	assert.Zero(t, testutil.ToFloat64(metrics.CollectionOps.WithLabelValues("random-1", "list", "404")))
}
