// Package handle serves the HTTP router from an AWS Lambda function URL.
package handle

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/dmorgan81/stickerbot/internal/fault"
	"github.com/dmorgan81/stickerbot/internal/log"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/do"
	"github.com/samber/lo"
)

type URLHandler struct {
	router http.Handler
}

func NewURLHandler(i *do.Injector) (*URLHandler, error) {
	return &URLHandler{router: do.MustInvoke[http.Handler](i)}, nil
}

func (h *URLHandler) Handle(ctx context.Context, req events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("URLHandler").With(
		"method", req.RequestContext.HTTP.Method,
		"path", req.RawPath,
		"lambda_request_id", req.RequestContext.RequestID)
	log.Info("handling lambda invocation")

	r, err := toRequest(ctx, req)
	if err != nil {
		log.Error("could not translate request", "error", err)
		return events.LambdaFunctionURLResponse{StatusCode: http.StatusBadRequest}, nil
	}

	w := newResponseWriter()
	h.router.ServeHTTP(w, r)
	return w.toResponse(), nil
}

func toRequest(ctx context.Context, req events.LambdaFunctionURLRequest) (*http.Request, error) {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: body: %v", fault.ErrTransportEncoding, err)
		}
		body = decoded
	}

	rawPath := lo.Ternary(req.RawPath != "", req.RawPath, "/")
	path, err := url.PathUnescape(rawPath)
	if err != nil {
		return nil, fmt.Errorf("%w: path: %v", fault.ErrTransportEncoding, err)
	}
	u := url.URL{Path: path, RawPath: rawPath, RawQuery: req.RawQueryString}
	r, err := http.NewRequestWithContext(ctx, req.RequestContext.HTTP.Method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}
	for _, c := range req.Cookies {
		r.Header.Add("Cookie", c)
	}
	if r.Header.Get(middleware.RequestIDHeader) == "" && req.RequestContext.RequestID != "" {
		r.Header.Set(middleware.RequestIDHeader, req.RequestContext.RequestID)
	}
	r.Host = req.RequestContext.DomainName
	r.RemoteAddr = req.RequestContext.HTTP.SourceIP
	r.RequestURI = u.RequestURI()
	r.ContentLength = int64(len(body))
	return r, nil
}

type responseWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponseWriter() *responseWriter {
	return &responseWriter{header: http.Header{}}
}

func (w *responseWriter) Header() http.Header {
	return w.header
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.Write(b)
}

func (w *responseWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *responseWriter) toResponse() events.LambdaFunctionURLResponse {
	cookies := w.header.Values("Set-Cookie")
	w.header.Del("Set-Cookie")

	resp := events.LambdaFunctionURLResponse{
		StatusCode: lo.Ternary(w.status != 0, w.status, http.StatusOK),
		Headers: lo.MapValues(w.header, func(v []string, _ string) string {
			return strings.Join(v, ",")
		}),
		Cookies: cookies,
	}
	if textual(w.header.Get("Content-Type")) {
		resp.Body = w.body.String()
	} else {
		resp.Body = base64.StdEncoding.EncodeToString(w.body.Bytes())
		resp.IsBase64Encoded = true
	}
	return resp
}

func textual(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "text/") ||
		mediaType == "application/json" ||
		strings.HasSuffix(mediaType, "+json")
}
