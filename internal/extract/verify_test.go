package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestURLVerifierCachesAnswers(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := NewURLVerifier(srv.Client(), time.Second, time.Minute, 8)
	ctx := context.Background()
	require.True(t, v.Verify(ctx, srv.URL+"/t-1-23.docx"))
	require.True(t, v.Verify(ctx, srv.URL+"/t-1-23.docx"))
	require.False(t, v.Verify(ctx, srv.URL+"/missing"))
	require.False(t, v.Verify(ctx, srv.URL+"/missing"))
	require.Equal(t, int32(2), hits.Load())
}
