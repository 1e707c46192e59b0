package controllers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/shophub-backend/api/responses"
	"github.com/angelmondragon/shophub-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/shophub-backend/pkg/errors"
	"github.com/angelmondragon/shophub-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is satisfied by the database and redis clients.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ShopHub-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every registered dependency concurrently. Nil pingers are
// skipped so optional dependencies can be passed unconditionally.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ShopHub-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		type check struct {
			name string
			dep  Pinger
		}
		var pending []check
		for name, dep := range deps {
			if dep != nil {
				pending = append(pending, check{name: name, dep: dep})
			}
		}

		results := make([]string, len(pending))
		g, gctx := errgroup.WithContext(ctx)
		for i, c := range pending {
			g.Go(func() error {
				if err := c.dep.Ping(gctx); err != nil {
					results[i] = "down"
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, c.name+" unavailable")
				}
				results[i] = "up"
				return nil
			})
		}
		err := g.Wait()

		checks := make(map[string]string, len(pending))
		for i, c := range pending {
			status := results[i]
			if status == "" {
				status = "unknown"
			}
			checks[c.name] = status
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.As(err).WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
