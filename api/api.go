package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sygmaprotocol/bridge-indexer/store"
	"github.com/sygmaprotocol/bridge-indexer/types"
)

type RespErr struct {
	Err string `json:"error"`
}

func (s *Server) getDomains(c *gin.Context) {
	domains, err := s.store.Domains(c.Request.Context())
	if err != nil {
		s.internalErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, domains)
}

func (s *Server) getDomain(c *gin.Context) {
	id, ok := domainParam(c)
	if !ok {
		return
	}
	domain, err := s.store.Domain(c.Request.Context(), id.String())
	if err != nil {
		s.storeErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, domain)
}

func (s *Server) getDomainTokens(c *gin.Context) {
	id, ok := domainParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := s.store.Domain(ctx, id.String()); err != nil {
		s.storeErrorResponse(c, err)
		return
	}
	tokens, err := s.store.TokensByDomain(ctx, id.String())
	if err != nil {
		s.internalErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func (s *Server) getResources(c *gin.Context) {
	resources, err := s.store.Resources(c.Request.Context())
	if err != nil {
		s.internalErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, resources)
}

func (s *Server) getResource(c *gin.Context) {
	resource, err := s.store.Resource(c.Request.Context(), strings.ToLower(c.Param("id")))
	if err != nil {
		s.storeErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, resource)
}

func domainParam(c *gin.Context) (types.DomainID, bool) {
	id, err := types.ParseDomainID(c.Param("id"))
	if err != nil {
		errorResponse(c, "domain id must be a number")
		return 0, false
	}
	return id, true
}

func (s *Server) storeErrorResponse(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, RespErr{Err: err.Error()})
		return
	}
	s.internalErrorResponse(c, err)
}

func errorResponse(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, RespErr{Err: err})
}

func (s *Server) internalErrorResponse(c *gin.Context, err error) {
	s.logger.Error("Request failed", "path", c.Request.URL.Path, "err", err)
	c.JSON(http.StatusInternalServerError, RespErr{Err: err.Error()})
}
