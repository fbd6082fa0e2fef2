package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"job-board-go/internal/apply"
	"job-board-go/internal/auth"
	"job-board-go/internal/filter"
	"job-board-go/internal/models"
	"job-board-go/internal/surface"
)

type surfaceEdit struct {
	Dimension string `json:"dimension" binding:"required"`
	Value     string `json:"value"`
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (s *Server) health(c *gin.Context) {
	snap := s.deps.Engine.Snapshot()

	status := "ok"
	switch {
	case snap.Loading:
		status = "loading"
	case snap.Error != "":
		status = "degraded"
	}

	body := gin.H{"status": status, "total": snap.Total}
	if snap.Error != "" {
		body["error"] = snap.Error
	}
	if s.deps.Metrics != nil {
		body["metrics"] = s.deps.Metrics.GetMetrics()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) listJobs(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Engine.Snapshot())
}

func (s *Server) getJob(c *gin.Context) {
	job, err := s.deps.Engine.JobByID(c.Param("id"))
	switch {
	case errors.Is(err, filter.ErrNotLoaded):
		abort(c, http.StatusServiceUnavailable, err.Error())
	case err != nil:
		abort(c, http.StatusNotFound, err.Error())
	default:
		c.JSON(http.StatusOK, job)
	}
}

func (s *Server) refetch(c *gin.Context) {
	if err := s.deps.Engine.Refetch(c.Request.Context()); err != nil {
		abort(c, http.StatusBadGateway, err.Error())
		return
	}
	c.JSON(http.StatusOK, s.deps.Engine.Snapshot())
}

func (s *Server) applyFilters(c *gin.Context) {
	var body map[string]string
	if err := c.ShouldBindJSON(&body); err != nil {
		abort(c, http.StatusBadRequest, "Invalid JSON format: "+err.Error())
		return
	}

	spec := filter.Spec{}
	for name, value := range body {
		d, err := filter.ParseDimension(name)
		if err != nil {
			abort(c, http.StatusBadRequest, err.Error())
			return
		}
		spec[d] = value
	}

	s.deps.Engine.ApplyFilters(spec)
	c.JSON(http.StatusOK, s.deps.Engine.Snapshot())
}

func (s *Server) clearFilters(c *gin.Context) {
	s.deps.Engine.ClearFilters()
	c.JSON(http.StatusOK, s.deps.Engine.Snapshot())
}

func (s *Server) clearFilter(c *gin.Context) {
	d, err := filter.ParseDimension(c.Param("dimension"))
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	s.deps.Engine.ClearSingleFilter(d)
	c.JSON(http.StatusOK, s.deps.Engine.Snapshot())
}

func (s *Server) dashboardState(c *gin.Context) {
	snap := s.deps.Engine.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"search":    s.deps.Dashboard.Search.Draft(),
		"sidebar":   s.deps.Dashboard.Sidebar.Selections(),
		"effective": s.deps.Dashboard.Effective(),
		"pending":   s.deps.Dashboard.Search.Pending(),
		"jobs":      snap.Jobs,
		"total":     snap.Total,
	})
}

func (s *Server) bindEdit(c *gin.Context) (filter.Dimension, string, bool) {
	var req surfaceEdit
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Invalid JSON format: "+err.Error())
		return "", "", false
	}
	d, err := filter.ParseDimension(req.Dimension)
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	return d, req.Value, true
}

func (s *Server) editSearch(c *gin.Context) {
	d, value, ok := s.bindEdit(c)
	if !ok {
		return
	}
	s.deps.Dashboard.Search.Edit(d, value)
	s.dashboardState(c)
}

func (s *Server) submitSearch(c *gin.Context) {
	s.deps.Dashboard.Search.Submit()
	s.dashboardState(c)
}

func (s *Server) clearSearch(c *gin.Context) {
	s.deps.Dashboard.Search.Clear()
	s.dashboardState(c)
}

func (s *Server) getSidebar(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sections":   surface.Catalog(),
		"selections": s.deps.Dashboard.Sidebar.Selections(),
		"active":     s.deps.Dashboard.Sidebar.ActiveCount(),
	})
}

func (s *Server) toggleSidebar(c *gin.Context) {
	d, value, ok := s.bindEdit(c)
	if !ok {
		return
	}
	if err := s.deps.Dashboard.Sidebar.Toggle(d, value); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	s.dashboardState(c)
}

func (s *Server) clearSidebarSection(c *gin.Context) {
	d, err := filter.ParseDimension(c.Param("dimension"))
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	s.deps.Dashboard.Sidebar.ClearSection(d)
	s.dashboardState(c)
}

func (s *Server) resetSidebar(c *gin.Context) {
	s.deps.Dashboard.Sidebar.Reset()
	s.dashboardState(c)
}

func (s *Server) clearDashboard(c *gin.Context) {
	s.deps.Dashboard.ClearAll()
	s.dashboardState(c)
}

func (s *Server) applyToJob(c *gin.Context) {
	if s.deps.Apply == nil {
		abort(c, http.StatusServiceUnavailable, "applications are disabled")
		return
	}

	form := apply.Form{
		FullName:    c.PostForm("fullname"),
		Email:       c.PostForm("email"),
		Phone:       c.PostForm("mobile"),
		CoverLetter: c.PostForm("coverLetter"),
	}

	if fh, err := c.FormFile("resume"); err == nil {
		f, err := fh.Open()
		if err != nil {
			abort(c, http.StatusBadRequest, "failed to read resume")
			return
		}
		defer f.Close()

		// one extra byte is enough to report an oversized file
		data, err := io.ReadAll(io.LimitReader(f, int64(s.deps.Apply.MaxResumeBytes())+1))
		if err != nil {
			abort(c, http.StatusBadRequest, "failed to read resume")
			return
		}
		form.Resume = &apply.Resume{Filename: fh.Filename, Data: data}
	}

	receipt, err := s.deps.Apply.Submit(c.Request.Context(), c.Param("id"), form)
	if err != nil {
		var verr *apply.ValidationError
		var serr *apply.SubmitError
		switch {
		case errors.As(err, &verr):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid application", "fields": verr.Fields})
		case errors.As(err, &serr):
			abort(c, upstreamStatus(serr.StatusCode), serr.Message)
		default:
			abort(c, http.StatusBadGateway, err.Error())
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Application submitted successfully", "receipt": receipt})
}

func (s *Server) login(c *gin.Context) {
	if s.deps.Auth == nil {
		abort(c, http.StatusServiceUnavailable, "auth is disabled")
		return
	}

	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		abort(c, http.StatusBadRequest, "Invalid JSON format: "+err.Error())
		return
	}

	resp, err := s.deps.Auth.Login(c.Request.Context(), creds)
	if err != nil {
		s.authFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) register(c *gin.Context) {
	if s.deps.Auth == nil {
		abort(c, http.StatusServiceUnavailable, "auth is disabled")
		return
	}

	var reg models.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		abort(c, http.StatusBadRequest, "Invalid JSON format: "+err.Error())
		return
	}

	resp, err := s.deps.Auth.Register(c.Request.Context(), reg)
	if err != nil {
		s.authFailure(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) logout(c *gin.Context) {
	if s.deps.Auth == nil {
		abort(c, http.StatusServiceUnavailable, "auth is disabled")
		return
	}
	if err := s.deps.Auth.Logout(); err != nil {
		abort(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (s *Server) authStatus(c *gin.Context) {
	if s.deps.Auth == nil {
		abort(c, http.StatusServiceUnavailable, "auth is disabled")
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": s.deps.Auth.Authenticated()})
}

func (s *Server) authFailure(c *gin.Context, err error) {
	var rerr *auth.RemoteError
	if errors.As(err, &rerr) {
		abort(c, upstreamStatus(rerr.StatusCode), rerr.Message)
		return
	}
	abort(c, http.StatusBadRequest, err.Error())
}

// upstreamStatus passes client errors through and maps everything else
// to 502.
func upstreamStatus(code int) int {
	if code >= 400 && code < 500 {
		return code
	}
	return http.StatusBadGateway
}
