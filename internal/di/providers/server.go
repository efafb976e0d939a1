package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/mirrorlog/mirrorlog-server/internal/api"
	"github.com/mirrorlog/mirrorlog-server/internal/auth"
	"github.com/mirrorlog/mirrorlog-server/internal/config"
	"github.com/mirrorlog/mirrorlog-server/internal/logger"
	"github.com/mirrorlog/mirrorlog-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)

	handler := api.NewServer(api.Config{
		Store:          storeHandle.Store,
		Tokens:         tokenService,
		AuthService:    do.MustInvoke[*service.AuthService](i),
		UserService:    do.MustInvoke[*service.UserService](i),
		PageService:    do.MustInvoke[*service.PageService](i),
		TagService:     do.MustInvoke[*service.TagService](i),
		LogService:     do.MustInvoke[*service.LogService](i),
		RoadmapService: do.MustInvoke[*service.RoadmapService](i),
		CORSOrigins:    cfg.Server.CORSOrigins,
		Logger:         log.Logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
