package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
)

const (
	apiPrefix     = "/api/"
	jobStatusPath = "/api/v1/jobs/"
	cacheHeader   = "X-Cache"

	// maxCachedBody bounds how much of a job status body is buffered for caching.
	maxCachedBody = 1 << 20
)

// JobCache stores terminal job status bodies between polls.
type JobCache interface {
	Lookup(ctx context.Context, jobID string) []byte
	Store(ctx context.Context, jobID string, body []byte) (bool, error)
}

// ProxyOptions bundles dependencies for NewAPIProxy.
type ProxyOptions struct {
	// Target is the backend origin; the incoming /api/... path is appended to it.
	Target *url.URL
	// Cache is optional. When set, completed job statuses are served from it.
	Cache     JobCache
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// NewAPIProxy forwards /api/* to the backend unchanged, cookies and CSRF
// header included, so the browser sees a single origin.
func NewAPIProxy(opts ProxyOptions) (http.Handler, error) {
	if opts.Target == nil || !opts.Target.IsAbs() {
		return nil, errors.New("api proxy target must be an absolute URL")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "api_proxy")
	target := opts.Target

	p := &apiProxy{cache: opts.Cache, logger: logger}
	p.rp = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			if p.cache != nil && jobIDFromPath(pr.In.URL.Path) != "" {
				// Let the transport negotiate and decode gzip so the body can be inspected.
				pr.Out.Header.Del("Accept-Encoding")
			}
		},
		Transport:      opts.Transport,
		ModifyResponse: p.modifyResponse,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.ErrorContext(r.Context(), "backend unreachable", "path", r.URL.Path, "error", err)
			WriteDetail(w, http.StatusBadGateway, "backend unavailable")
		},
	}
	return p, nil
}

type apiProxy struct {
	rp     *httputil.ReverseProxy
	cache  JobCache
	logger *slog.Logger
}

func (p *apiProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if p.cache != nil && r.Method == http.MethodGet {
		if id := jobIDFromPath(r.URL.Path); id != "" {
			if body := p.cache.Lookup(r.Context(), id); body != nil {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set(cacheHeader, "HIT")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(body)
				return
			}
		}
	}
	p.rp.ServeHTTP(w, r)
}

func (p *apiProxy) modifyResponse(resp *http.Response) error {
	req := resp.Request
	if p.cache == nil || req == nil || req.Method != http.MethodGet || resp.StatusCode != http.StatusOK {
		return nil
	}
	id := jobIDFromPath(req.URL.Path)
	if id == "" || resp.Header.Get("Content-Encoding") != "" {
		return nil
	}

	orig := resp.Body
	body, err := io.ReadAll(io.LimitReader(orig, maxCachedBody+1))
	if err != nil {
		_ = orig.Close()
		return fmt.Errorf("read job status: %w", err)
	}
	resp.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(body), orig), Closer: orig}
	resp.Header.Set(cacheHeader, "MISS")
	if len(body) > maxCachedBody {
		return nil
	}

	if _, err := p.cache.Store(req.Context(), id, body); err != nil {
		p.logger.WarnContext(req.Context(), "job status not cached", "job_id", id, "error", err)
	}
	return nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// jobIDFromPath extracts {id} from /api/v1/jobs/{id}; nested paths do not match.
func jobIDFromPath(path string) string {
	id, ok := strings.CutPrefix(path, jobStatusPath)
	if !ok || id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}
