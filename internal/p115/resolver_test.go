package p115

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzhii/p115gate/internal/errors"
)

func TestPickcodeByIDCachesResult(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/files/file", r.URL.Path)
		require.Equal(t, "12345", r.URL.Query().Get("file_id"))
		calls.Add(1)
		fmt.Fprint(w, `{"state":true,"data":[{"pick_code":"abcdefghij0123456"}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	for i := 0; i < 2; i++ {
		pickcode, err := c.PickcodeByID(context.Background(), 12345)
		require.NoError(t, err)
		assert.Equal(t, "abcdefghij0123456", pickcode)
	}
	assert.Equal(t, int32(1), calls.Load(), "second lookup served from cache")
}

func TestPickcodeByIDNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"state":false,"errno":2,"error":"file not exists"}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	_, err := c.PickcodeByID(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, errors.Code(err))
	assert.Equal(t, 0, c.cache.idToPickcode.Len(), "miss leaves no cache entry")
}

func TestPickcodeBySHA1Uppercases(t *testing.T) {
	var calls atomic.Int32
	sha1 := "da39a3ee5e6b4b0d3255bfef95601890afd80709"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/files/shasearch", r.URL.Path)
		require.Equal(t, "DA39A3EE5E6B4B0D3255BFEF95601890AFD80709", r.URL.Query().Get("sha1"))
		calls.Add(1)
		fmt.Fprint(w, `{"state":true,"data":{"pick_code":"sha1pickcode00001"}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	pickcode, err := c.PickcodeBySHA1(context.Background(), sha1)
	require.NoError(t, err)
	assert.Equal(t, "sha1pickcode00001", pickcode)

	// 大小写不同的同一 sha1 命中同一缓存项
	_, err = c.PickcodeBySHA1(context.Background(), "DA39A3EE5E6B4B0D3255BFEF95601890AFD80709")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPickcodeByNameZeroMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"state":true,"count":0,"data":[]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	_, err := c.PickcodeByName(context.Background(), "a.mp4", false)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, errors.Code(err))
	assert.Equal(t, 0, c.cache.nameToPickcode.Len(), "no cache write on zero matches")
}

func TestPickcodeByNameFuzzyMatchRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"state":true,"count":1,"data":[{"n":"a (1).mp4","pc":"fuzzypickcode0001"}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	_, err := c.PickcodeByName(context.Background(), "a.mp4", false)
	require.Error(t, err, "upstream returned a different name")
	assert.Equal(t, http.StatusNotFound, errors.Code(err))
	assert.Equal(t, 0, c.cache.nameToPickcode.Len())
}

func TestPickcodeByNameSuffixRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		require.Equal(t, "/files/search", r.URL.Path)
		require.Equal(t, "a.mp4", r.URL.Query().Get("search_value"))
		if n == 1 {
			require.Equal(t, "mp4", r.URL.Query().Get("suffix"))
			fmt.Fprint(w, `{"state":false,"errNo":20021}`)
			return
		}
		require.False(t, r.URL.Query().Has("suffix"), "retry drops the suffix filter")
		fmt.Fprint(w, `{"state":true,"count":1,"data":[{"n":"a.mp4","pc":"retrypickcode0001"}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	pickcode, err := c.PickcodeByName(context.Background(), "a.mp4", false)
	require.NoError(t, err)
	assert.Equal(t, "retrypickcode0001", pickcode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPickcodeByNameRefreshBypassesCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"state":true,"count":1,"data":[{"n":"a.mp4","pc":"namepickcode00001"}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	_, err := c.PickcodeByName(context.Background(), "a.mp4", false)
	require.NoError(t, err)
	_, err = c.PickcodeByName(context.Background(), "a.mp4", true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "refresh goes upstream even on cache hit")
}

func TestResolverCachesAreIndependent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/files/file":
			fmt.Fprint(w, `{"state":true,"data":[{"pick_code":"samepickcode00001"}]}`)
		case "/files/shasearch":
			fmt.Fprint(w, `{"state":true,"data":{"pick_code":"samepickcode00001"}}`)
		case "/files/search":
			fmt.Fprint(w, `{"state":true,"count":1,"data":[{"n":"a.mp4","pc":"samepickcode00001"}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	ctx := context.Background()
	_, err := c.PickcodeByID(ctx, 7)
	require.NoError(t, err)
	_, err = c.PickcodeBySHA1(ctx, "da39a3ee5e6b4b0d3255bfef95601890afd80709")
	require.NoError(t, err)
	_, err = c.PickcodeByName(ctx, "a.mp4", false)
	require.NoError(t, err)

	// 同一文件的三种定位方式各查一次上游，各写各的表
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 1, c.cache.idToPickcode.Len())
	assert.Equal(t, 1, c.cache.sha1ToPickcode.Len())
	assert.Equal(t, 1, c.cache.nameToPickcode.Len())
}

func TestShareFileID(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/share/search", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "scode01", q.Get("share_code"))
		require.Equal(t, "abcd", q.Get("receive_code"))
		require.Equal(t, "b.mkv", q.Get("search_value"))
		fmt.Fprint(w, `{"state":true,"data":{"count":1,"list":[{"n":"b.mkv","fid":"998877"}]}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	for i := 0; i < 2; i++ {
		id, err := c.ShareFileID(context.Background(), "scode01", "abcd", "b.mkv", false)
		require.NoError(t, err)
		assert.Equal(t, int64(998877), id)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestShareFileIDNameMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"state":true,"data":{"count":1,"list":[{"n":"b (1).mkv","fid":"998877"}]}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	_, err := c.ShareFileID(context.Background(), "scode01", "abcd", "b.mkv", false)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, errors.Code(err))
	assert.Equal(t, 0, c.cache.shareNameToID.Len())
}

func TestReceiveCodeCaches(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/share/shareinfo", r.URL.Path)
		require.Equal(t, "scode01", r.URL.Query().Get("share_code"))
		fmt.Fprint(w, `{"state":true,"data":{"receive_code":"abcd"}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, srv.URL)
	for i := 0; i < 3; i++ {
		code, err := c.ReceiveCode(context.Background(), "scode01")
		require.NoError(t, err)
		assert.Equal(t, "abcd", code)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearchSuffix(t *testing.T) {
	assert.Equal(t, "mp4", searchSuffix("a.mp4"))
	assert.Equal(t, "noext", searchSuffix("noext"))
	assert.Equal(t, "", searchSuffix("archive.tar.gz "))
	assert.Equal(t, "", searchSuffix("a."))
	assert.Equal(t, "", searchSuffix("weird.mp-4"))
}
