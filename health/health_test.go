package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestAlwaysOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter()

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/"},
		{http.MethodGet, "/healthz"},
		{http.MethodGet, "/some/deep/path"},
		{http.MethodPost, "/"},
		{http.MethodHead, "/"},
	}

	for _, c := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(c.method, c.path, nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, "%s %s", c.method, c.path)
		if c.method != http.MethodHead {
			require.Equal(t, "OK", w.Body.String(), "%s %s", c.method, c.path)
		}
	}
}
