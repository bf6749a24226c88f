package main

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/issafronov/redirectmap/internal/app/config"
	"github.com/issafronov/redirectmap/internal/app/handlers"
	"github.com/issafronov/redirectmap/internal/app/models"
	"github.com/issafronov/redirectmap/internal/app/service"
	"github.com/issafronov/redirectmap/internal/app/storage"
	"github.com/issafronov/redirectmap/internal/middleware/auth"
	"github.com/issafronov/redirectmap/internal/middleware/trustedsubnet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		FileStoragePath:     filepath.Join(t.TempDir(), "runs.json"),
		SecretKey:           "test-secret",
		TrustedSubnet:       "10.0.0.0/8",
		RequestTimeoutMs:    2000,
		MaxCompare:          200,
		VerifyConcurrency:   4,
		SameRegDomainOnly:   true,
		MaxSitemapChildren:  10,
		AllowPrivateTargets: true,
	}
	store, err := storage.NewFileStorage(cfg.FileStoragePath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	trustedNet, err := trustedsubnet.ParseSubnet(cfg.TrustedSubnet)
	require.NoError(t, err)

	h, err := handlers.NewHandler(cfg, service.NewService(store, newLoader(cfg), cfg))
	require.NoError(t, err)

	srv := httptest.NewServer(Router(h, cfg, trustedNet))
	t.Cleanup(srv.Close)
	return srv
}

func TestPing(t *testing.T) {
	srv := newTestServer(t)
	res, err := resty.New().R().Get(srv.URL + "/ping")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode())
}

func TestMappingFlow(t *testing.T) {
	srv := newTestServer(t)

	sitemaps := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		switch r.URL.Path {
		case "/old.xml":
			_, _ = io.WriteString(w, `<urlset><url><loc>https://a.com/blog/hello-world</loc></url><url><loc>https://a.com/legacy</loc></url></urlset>`)
		case "/new.xml":
			_, _ = io.WriteString(w, `<urlset><url><loc>https://a.com/articles/hello-world</loc></url></urlset>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer sitemaps.Close()

	client := resty.New()

	var result models.MappingResult
	res, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(models.MappingRequest{OldSitemap: sitemaps.URL + "/old.xml", NewSitemap: sitemaps.URL + "/new.xml"}).
		SetResult(&result).
		Post(srv.URL + "/api/mappings")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())

	var authCookie bool
	for _, c := range res.Cookies() {
		authCookie = authCookie || c.Name == auth.CookieName
	}
	assert.True(t, authCookie, "anonymous caller gets a token")

	assert.NotEmpty(t, result.ID)
	require.Len(t, result.Pairs, 1)
	assert.Equal(t, "https://a.com/articles/hello-world", result.Pairs[0].To)
	assert.Equal(t, []string{"https://a.com/legacy"}, result.Unmapped)

	var stored models.MappingResult
	res, err = client.R().SetResult(&stored).Get(srv.URL + "/api/runs/" + result.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())
	assert.Equal(t, result.Pairs, stored.Pairs)

	res, err = client.R().SetQueryParam("format", "csv").Get(srv.URL + "/api/runs/" + result.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode())
	assert.Contains(t, res.String(), "https://a.com/blog/hello-world,https://a.com/articles/hello-world,0.95,slug_exact,301")

	var runs []models.RunSummary
	res, err = client.R().SetResult(&runs).Get(srv.URL + "/api/user/runs")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())
	require.Len(t, runs, 1)
	assert.Equal(t, result.ID, runs[0].ID)

	res, err = resty.New().R().Get(srv.URL + "/api/user/runs")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, res.StatusCode(), "a fresh user has no runs")

	res, err = client.R().Get(srv.URL + "/api/runs/unknown")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode())
}

func TestMappingBadRequest(t *testing.T) {
	srv := newTestServer(t)
	res, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(`{"oldUrls":["https://a.com/"]}`).
		Post(srv.URL + "/api/mappings")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode())
}

func TestInvalidToken(t *testing.T) {
	srv := newTestServer(t)
	res, err := resty.New().R().
		SetCookie(&http.Cookie{Name: auth.CookieName, Value: "garbage"}).
		Get(srv.URL + "/api/user/runs")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode())
}

func TestStatsTrustedSubnet(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		ip   string
		want int
	}{
		{name: "trusted", ip: "10.1.2.3", want: http.StatusOK},
		{name: "untrusted", ip: "192.168.1.1", want: http.StatusForbidden},
		{name: "missing header", want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := resty.New().R()
			if tt.ip != "" {
				req.SetHeader("X-Real-IP", tt.ip)
			}
			res, err := req.Get(srv.URL + "/api/internal/stats")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.StatusCode())
		})
	}
}

func TestGzipCompression(t *testing.T) {
	srv := newTestServer(t)
	requestBody := `{"oldUrls":["https://a.com/blog/hello-world"],"newUrls":["https://a.com/articles/hello-world"]}`

	t.Run("sends_gzip", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		zb := gzip.NewWriter(buf)
		_, err := zb.Write([]byte(requestBody))
		require.NoError(t, err)
		require.NoError(t, zb.Close())

		r := httptest.NewRequest(http.MethodPost, srv.URL+"/api/mappings", buf)
		r.RequestURI = ""
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("Content-Encoding", "gzip")
		r.Header.Set("Accept-Encoding", "identity")

		resp, err := http.DefaultClient.Do(r)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		_, err = io.ReadAll(resp.Body)
		require.NoError(t, err)
	})

	t.Run("accepts_gzip", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, srv.URL+"/api/mappings", bytes.NewBufferString(requestBody))
		r.RequestURI = ""
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("Accept-Encoding", "gzip")

		resp, err := http.DefaultClient.Do(r)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))

		zr, err := gzip.NewReader(resp.Body)
		require.NoError(t, err)

		body, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Contains(t, string(body), "slug_exact")
	})
}
