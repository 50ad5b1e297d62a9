package ui

import (
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"gokinet/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// handleIndex renders the upload and manual-entry page with recent history
func (s *Server) handleIndex(c *gin.Context) {
	recent, err := s.service.List(c.Request.Context(), 10)
	if err != nil {
		log.Printf("[UI] Failed to list recent analyses: %v", err)
		recent = nil
	}

	s.render(c, http.StatusOK, "index.html", gin.H{
		"Recent": recent,
	})
}

// handleUpload accepts an xlsx/csv upload and runs the analysis
func (s *Server) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("datafile")
	if err != nil {
		s.renderError(c, errors.InvalidInput("no file uploaded"))
		return
	}
	if fileHeader.Size > s.maxUpload {
		s.renderError(c, errors.InvalidInput("file is too large"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.renderError(c, errors.Wrap(err, "failed to open upload"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxUpload+1))
	if err != nil {
		s.renderError(c, errors.Wrap(err, "failed to read upload"))
		return
	}
	if int64(len(data)) > s.maxUpload {
		s.renderError(c, errors.InvalidInput("file is too large"))
		return
	}

	sheet := c.PostForm("sheet")
	analysis, err := s.service.AnalyzeUpload(c.Request.Context(), fileHeader.Filename, data, sheet)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/analyses/"+analysis.ID.String())
}

// handleManual accepts manually entered rows, one "time, concentration"
// pair per line, with an optional shared A0
func (s *Server) handleManual(c *gin.Context) {
	times, concs, err := parseManualRows(c.PostForm("rows"))
	if err != nil {
		s.renderError(c, err)
		return
	}

	conc0 := 0.0
	if raw := strings.TrimSpace(c.PostForm("conc0")); raw != "" {
		conc0, err = strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
		if err != nil {
			s.renderError(c, errors.InvalidInput("initial concentration must be a number"))
			return
		}
	}

	analysis, err := s.service.AnalyzePoints(c.Request.Context(), "manual", times, concs, conc0)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/analyses/"+analysis.ID.String())
}

// handleMethodology renders the embedded methodology markdown
func (s *Server) handleMethodology(c *gin.Context) {
	src, err := embeddedFiles.ReadFile("docs/methodology.md")
	if err != nil {
		s.renderError(c, errors.Wrap(err, "methodology document unavailable"))
		return
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	rendered := markdown.ToHTML(src, p, renderer)

	s.render(c, http.StatusOK, "methodology.html", gin.H{
		"Content": templateHTML(rendered),
	})
}

// handleHealth reports liveness
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
