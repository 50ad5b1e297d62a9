package ui

import (
	"fmt"
	"net/http"

	"gokinet/domain/core"
	"gokinet/domain/kinetics"
	"gokinet/internal/errors"
	"gokinet/internal/report"

	"github.com/gin-gonic/gin"
)

// handleAnalysis renders the results page for one analysis
func (s *Server) handleAnalysis(c *gin.Context) {
	analysis, ok := s.loadAnalysis(c)
	if !ok {
		return
	}

	selStart, selEnd := analysis.SelectedTimeRange()
	s.render(c, http.StatusOK, "result.html", gin.H{
		"Analysis":      analysis,
		"Summary":       analysis.Summary,
		"SummaryRows":   report.Summary(analysis),
		"DetailRows":    report.Details(analysis),
		"SelectedCount": len(analysis.SelectedIndices),
		"SelStart":      selStart,
		"SelEnd":        selEnd,
		"BetterModel":   string(analysis.BetterModel()),
	})
}

// handlePlot renders the two-panel model figure
func (s *Server) handlePlot(c *gin.Context) {
	analysis, ok := s.loadAnalysis(c)
	if !ok {
		return
	}

	png, err := s.renderer.Figure(analysis)
	if err != nil {
		s.renderError(c, errors.Wrap(err, "failed to render figure"))
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// handleExport streams the results workbook
func (s *Server) handleExport(c *gin.Context) {
	analysis, ok := s.loadAnalysis(c)
	if !ok {
		return
	}

	workbook, err := s.exporter.Workbook(analysis)
	if err != nil {
		s.renderError(c, errors.Wrap(err, "failed to build workbook"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "kinetic_modeling_results.xlsx"))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}

// handleDelete removes an analysis from history
func (s *Server) handleDelete(c *gin.Context) {
	id, err := core.ParseAnalysisID(c.Param("id"))
	if err != nil {
		s.renderError(c, errors.InvalidInput(err.Error()))
		return
	}

	if err := s.service.Delete(c.Request.Context(), id); err != nil {
		s.renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// loadAnalysis resolves the :id parameter; renders the error page and
// returns false when it cannot
func (s *Server) loadAnalysis(c *gin.Context) (*kinetics.Analysis, bool) {
	id, err := core.ParseAnalysisID(c.Param("id"))
	if err != nil {
		s.renderError(c, errors.InvalidInput(err.Error()))
		return nil, false
	}

	a, err := s.service.Get(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return nil, false
	}
	return a, true
}
