package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
}

func TestClientRoundTrip(t *testing.T) {
	var gotQuery, gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotQuery = r.Method, r.URL.Path, r.URL.RawQuery
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode([]item{{ID: "1", Title: "Career Fair"}})
		case http.MethodPost, http.MethodPut:
			var in item
			_ = json.NewDecoder(r.Body).Decode(&in)
			if in.ID == "" {
				in.ID = "42"
			}
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(in)
		case http.MethodDelete:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second)
	ctx := context.Background()

	items, err := ListOf[item](ctx, c, "events", url.Values{"email": {"a@b.c"}})
	require.NoError(t, err)
	assert.Equal(t, []item{{ID: "1", Title: "Career Fair"}}, items)
	assert.Equal(t, "/events", gotPath)
	assert.Equal(t, "email=a%40b.c", gotQuery)

	created, err := CreateOf(ctx, c, "events", item{Title: "Hackathon"})
	require.NoError(t, err)
	assert.Equal(t, "42", created.ID)
	assert.Equal(t, http.MethodPost, gotMethod)

	updated, err := UpdateOf(ctx, c, "events", "7", item{ID: "7", Title: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "/events/7", gotPath)

	require.NoError(t, c.Delete(ctx, "events", "7"))
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestClientHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New(srv.URL, time.Second).Delete(context.Background(), "events", "1")
	require.Error(t, err)
	assert.True(t, IsHTTP(err))
	assert.False(t, IsNetwork(err))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestClientNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := ListOf[item](context.Background(), New(base, time.Second), "events", nil)
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.Equal(t, 0, StatusCode(err))
}

func TestClientSingleAttempt(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := ListOf[item](context.Background(), New(srv.URL, time.Second), "events", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientDecodeFailureIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	_, err := ListOf[item](context.Background(), New(srv.URL, time.Second), "events", nil)
	assert.True(t, IsNetwork(err))
}

func TestListOfEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	}))
	defer srv.Close()

	items, err := ListOf[item](context.Background(), New(srv.URL, time.Second), "events", nil)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
