package app

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/km-arc/go-capability/framework/binding"
	gohttp "github.com/km-arc/go-capability/framework/http"
	"github.com/km-arc/go-capability/framework/routing"
)

// MountDiagnostics registers:
//
//	GET /healthz       → status, binding state and version
//	GET /capabilities  → what the host bound, per capability type
//	GET /metrics       → Prometheus exposition
//
// Only the first call mounts anything.
func (a *Application) MountDiagnostics(r *routing.Router) {
	if a.mounted {
		return
	}
	a.mounted = true
	r.Group(func(g *routing.Router) {
		g.Middleware(middleware.NoCache)
		g.Get("/healthz", a.healthz)
		g.Get("/capabilities", a.capabilities)
	})
	r.Mount("/metrics", a.Metrics().Handler())
}

func (a *Application) healthz(w http.ResponseWriter, _ *http.Request) {
	res := gohttp.NewResponse(w)
	status := http.StatusOK
	if a.Host.State() != binding.Bound {
		status = http.StatusServiceUnavailable
	}
	res.JSON(status, map[string]any{
		"status":  http.StatusText(status),
		"binding": a.Host.State().String(),
		"env":     a.Environment(),
		"version": Version,
	})
}

func (a *Application) capabilities(w http.ResponseWriter, _ *http.Request) {
	gohttp.NewResponse(w).Success(map[string]any{
		"required": a.Host.Types(),
		"bindings": a.Host.Bindings(),
	})
}
