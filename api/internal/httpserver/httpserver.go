package httpserver

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"
)

// StartHealth поднимает /healthz на DefaultServeMux. db может быть nil —
// тогда проверяется только живость процесса.
func StartHealth(addr string, db *sql.DB) error {
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("db: not ok\n" + err.Error()))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	log.Printf("health server listening on %s/healthz", addr)
	return http.ListenAndServe(addr, nil)
}
