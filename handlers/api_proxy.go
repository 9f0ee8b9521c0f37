package handlers

import (
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/upb/parking-console/credential"
	"github.com/upb/parking-console/middleware"
	"github.com/upb/parking-console/utils"
	"go.uber.org/zap"
)

// APIProxy forwards /api calls from the SPA to the parking backend and
// attaches the session's bearer token
type APIProxy struct {
	stores StoreOpener
	proxy  *httputil.ReverseProxy
	logger *zap.Logger
}

// NewAPIProxy creates a proxy to the backend rooted at backendURL
func NewAPIProxy(backendURL string, stores StoreOpener, logger *zap.Logger) (*APIProxy, error) {
	target, err := url.Parse(backendURL)
	if err != nil {
		return nil, err
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, errors.New("backend URL must be absolute")
	}

	p := &APIProxy{
		stores: stores,
		logger: logger,
	}
	p.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			// Browser session cookies stay with the console
			pr.Out.Header.Del("Cookie")
		},
		ErrorHandler: p.handleError,
	}
	return p, nil
}

// ServeHTTP proxies one API call
func (p *APIProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// An explicit Authorization header from the client wins
	if r.Header.Get("Authorization") == "" {
		cred, err := p.stores.Store(w, r).Get(ctx)
		switch {
		case err == nil && cred.Present():
			r = r.Clone(ctx)
			r.Header.Set("Authorization", "Bearer "+cred.Token)
		case err != nil && !errors.Is(err, credential.ErrNotFound):
			p.logger.Warn("credential store read failed, proxying without token",
				zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
				zap.Error(err))
		}
	}

	p.proxy.ServeHTTP(w, r)
}

func (p *APIProxy) handleError(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.Warn("backend proxy error",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	_ = utils.WriteBadGateway(w, "", nil)
}
