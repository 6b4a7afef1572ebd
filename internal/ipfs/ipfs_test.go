package ipfs

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacopkm/tpkm/internal/errs"
)

const testCID = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"

// fakeDaemon implements just enough of the Kubo RPC surface for the client.
func fakeDaemon(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v0/version", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"Version": "0.26.0"})
	})
	mux.HandleFunc("/api/v0/add", func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		json.NewEncoder(w).Encode(map[string]string{"Name": "blob", "Hash": testCID, "Size": "42"})
	})
	mux.HandleFunc("/api/v0/cat", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("arg") != testCID {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"Message": "merkledag: not found", "Type": "error"})
			return
		}
		w.Write([]byte("archive bytes"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestProbe(t *testing.T) {
	srv := fakeDaemon(t)
	c := Dial(srv.URL + "/api/v0")
	assert.NoError(t, c.Probe(context.Background()))
}

func TestProbeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := Dial(srv.URL)
	err := c.Probe(context.Background())
	require.Error(t, err)
	assert.Equal(t, errs.KindIPFSUnreachable, errs.KindOf(err))
}

func TestAdd(t *testing.T) {
	srv := fakeDaemon(t)
	c := Dial(srv.URL)

	cid, err := c.Add(context.Background(), strings.NewReader("archive bytes"))
	require.NoError(t, err)
	assert.Equal(t, testCID, cid)
}

func TestCat(t *testing.T) {
	srv := fakeDaemon(t)
	c := Dial(srv.URL)

	rc, err := c.Cat(context.Background(), testCID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "archive bytes", string(data))
}

func TestCatNotFound(t *testing.T) {
	srv := fakeDaemon(t)
	c := Dial(srv.URL)

	_, err := c.Cat(context.Background(), "QmMissing")
	require.Error(t, err)
	assert.Equal(t, errs.KindIPFSNotFound, errs.KindOf(err))
	assert.Contains(t, err.Error(), "QmMissing")
}
