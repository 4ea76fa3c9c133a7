package server

import (
	"context"
	"net/http"

	"github.com/oshokin/watermark-tool/internal/logger"
)

// statusRecorder captures the response code for the access log.
type statusRecorder struct {
	http.ResponseWriter

	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// newHandler serves the release folder and writes an access log line per request.
// Directory listings stay enabled so operators can eyeball the published files.
func newHandler(ctx context.Context, folder string) http.Handler {
	fileServer := http.FileServer(http.Dir(folder))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		fileServer.ServeHTTP(recorder, r)

		logger.InfoKV(ctx, "Served request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"remote", r.RemoteAddr)
	})
}
