package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tableflip.dev/tmpl/pkg/store"
	"tableflip.dev/tmpl/pkg/template"
)

// createRequest is the body of a create call. Any id sent by the caller is
// ignored.
type createRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (s *Server) selectTemplates(c *gin.Context) {
	list, err := s.store.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if list == nil {
		list = []template.Template{}
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) readTemplate(c *gin.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	t, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) createTemplate(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "invalid body: %v", err)
		return
	}
	t, err := s.store.Create(c.Request.Context(), template.Template{Subject: req.Subject, Body: req.Body})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) updateTemplate(c *gin.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	var t template.Template
	if err := c.ShouldBindJSON(&t); err != nil {
		c.String(http.StatusBadRequest, "invalid body: %v", err)
		return
	}
	t.ID = id
	updated, err := s.store.Update(c.Request.Context(), t)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteTemplate(c *gin.Context) {
	id, ok := queryID(c)
	if !ok {
		return
	}
	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func queryID(c *gin.Context) (template.ID, bool) {
	id, err := template.ParseID(c.Query("id"))
	if err != nil {
		c.String(http.StatusBadRequest, "%s", err)
		return 0, false
	}
	return id, true
}

func (s *Server) fail(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.String(http.StatusNotFound, "%s", err)
		return
	}
	s.logger.Error("request failed", "path", c.FullPath(), "request_id", c.GetString(requestIDKey), "err", err)
	c.String(http.StatusInternalServerError, "Something went wrong: %s", err)
}
