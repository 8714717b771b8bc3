package http

import (
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type logTransport struct {
	transport http.RoundTripper
}

func (t *logTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctxzap.Debug(req.Context(), "HTTP outbound request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	)

	return t.transport.RoundTrip(req)
}

// WithRequestLogging wraps the HTTP transport with debug logging of method
// and URL.
func WithRequestLogging() HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &logTransport{
			transport: rt,
		}
	})
}
