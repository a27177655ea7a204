package middleware

import (
	"log"
	"net/http"
	"strconv"
	"time"
)

// ErrorReporter reçoit les erreurs serveur (Slack en production)
type ErrorReporter interface {
	SendCriticalError(method, path, statusCode, errorMessage, origin, userAgent string)
}

// responseWriter wrapper pour capturer le code de statut
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Logging enregistre les requêtes en erreur et signale les erreurs serveur
func Logging(reporter ErrorReporter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			statusCode := rw.statusCode

			if statusCode < http.StatusBadRequest {
				return
			}

			log.Printf("⚠️ %s %s -> %d (%s)", r.Method, r.RequestURI, statusCode, duration)

			// Les erreurs utilisateur (validation, mauvais mot de passe...) ne sont pas remontées
			if statusCode >= http.StatusInternalServerError && reporter != nil {
				go reporter.SendCriticalError(
					r.Method,
					r.RequestURI,
					strconv.Itoa(statusCode),
					http.StatusText(statusCode),
					r.Header.Get("Origin"),
					r.Header.Get("User-Agent"),
				)
			}
		})
	}
}
