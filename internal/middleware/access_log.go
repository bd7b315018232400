package middleware

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"vet-registry/internal/platform/logger"
)

const failureKey ctxKey = "failure"

type failure struct {
	err error
}

// AccessLog registra cada request en Debug. Si un handler reportó una falla
// con ReportError, la línea sale en Error con la causa.
func AccessLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			f := &failure{}
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), failureKey, f)))

			fields := map[string]any{
				"request_id":  GetRequestID(r.Context()),
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if f.err != nil {
				fields["err"] = f.err.Error()
				log.Error("request failed", fields)
				return
			}
			log.Debug("request", fields)
		})
	}
}

// ReportError deja err asociado al request para que AccessLog lo registre.
// Fuera de AccessLog no hace nada.
func ReportError(r *http.Request, err error) {
	if f, ok := r.Context().Value(failureKey).(*failure); ok && err != nil {
		f.err = err
	}
}
