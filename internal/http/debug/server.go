// Package debug serves pprof profiles on a separate listener.
package debug

import (
	"crypto/subtle"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
)

// Credentials guard non-loopback access. Without them only loopback clients are served.
type Credentials struct {
	User string
	Pass string
}

var profiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// Handler returns the pprof routes under /debug/pprof.
func Handler(creds Credentials) http.Handler {
	r := chi.NewRouter()
	r.Use(guard(creds))
	r.Route("/debug/pprof", func(r chi.Router) {
		r.Get("/", pprof.Index)
		r.Get("/cmdline", pprof.Cmdline)
		r.Get("/profile", pprof.Profile)
		r.Get("/symbol", pprof.Symbol)
		r.Post("/symbol", pprof.Symbol)
		r.Get("/trace", pprof.Trace)
		for _, name := range profiles {
			r.Handle("/"+name, pprof.Handler(name))
		}
	})
	return r
}

// NewServer returns a server for Handler on addr. Profile downloads may take
// tens of seconds, so the write timeout is generous.
func NewServer(addr string, creds Credentials) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           Handler(creds),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}
}

func guard(creds Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isLoopback(r.RemoteAddr) || authorized(r, creds) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="pprof"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		})
	}
}

func authorized(r *http.Request, creds Credentials) bool {
	if creds.User == "" || creds.Pass == "" {
		return false
	}
	u, p, ok := r.BasicAuth()
	return ok && equal(u, creds.User) && equal(p, creds.Pass)
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func isLoopback(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
