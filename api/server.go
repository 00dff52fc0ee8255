package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cosmossdk.io/log"
	"github.com/gin-gonic/gin"

	"github.com/sygmaprotocol/bridge-indexer/store"
)

// Reader is the read side of the store served by the API.
type Reader interface {
	Domains(ctx context.Context) ([]store.Domain, error)
	Domain(ctx context.Context, id string) (store.Domain, error)
	TokensByDomain(ctx context.Context, domainID string) ([]store.Token, error)
	Resources(ctx context.Context) ([]store.Resource, error)
	Resource(ctx context.Context, id string) (store.Resource, error)
}

type Server struct {
	engine *gin.Engine
	store  Reader
	logger log.Logger
}

func NewServer(r Reader, logger log.Logger, trustedProxies []string) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	if err := engine.SetTrustedProxies(trustedProxies); err != nil {
		return nil, err
	}

	s := &Server{
		engine: engine,
		store:  r,
		logger: logger,
	}
	engine.Use(gin.Recovery(), requestLogger(logger), CORSMiddleware())

	v1 := engine.Group("/api")
	{
		v1.GET("/domains", s.getDomains)
		v1.GET("/domains/:id", s.getDomain)
		v1.GET("/domains/:id/tokens", s.getDomainTokens)
		v1.GET("/resources", s.getResources)
		v1.GET("/resources/:id", s.getResource)
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves the API on listen until ctx is done.
func (s *Server) Run(ctx context.Context, listen string) error {
	srv := &http.Server{
		Addr:              listen,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Serving api", "listen", listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
