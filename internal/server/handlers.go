package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PolicyEngine/forecast-sources/internal/chart"
	"github.com/PolicyEngine/forecast-sources/internal/fetch"
	"github.com/PolicyEngine/forecast-sources/internal/model"
)

// Response is the API envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Code:    status,
		Message: message,
	})
}

func failErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, fetch.ErrUnknownEdition):
		fail(c, http.StatusNotFound, err.Error())
	default:
		fail(c, http.StatusBadGateway, err.Error())
	}
}

// handleChartPage serves the comparison chart for the configured edition
// pair.
func (s *Server) handleChartPage(c *gin.Context) {
	base, err := s.snapshot(s.cfg.Forecast.BaseEdition)
	if err != nil {
		failErr(c, err)
		return
	}
	comparison, err := s.snapshot(s.cfg.Forecast.ComparisonEdition)
	if err != nil {
		failErr(c, err)
		return
	}

	html, err := chart.Generate(base, comparison, s.cfg.Forecast.Years())
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// handleEditions lists the registry together with stored-state information.
func (s *Server) handleEditions(c *gin.Context) {
	stored, err := s.store.ListEditions()
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	storedByName := make(map[string]any, len(stored))
	for _, info := range stored {
		storedByName[info.Edition] = info
	}

	type editionEntry struct {
		Edition   string `json:"edition"`
		SourceURL string `json:"sourceUrl"`
		Stored    any    `json:"stored,omitempty"`
	}

	entries := make([]editionEntry, 0, len(fetch.Editions()))
	for _, edition := range fetch.Editions() {
		url, _ := fetch.EditionURL(edition)
		entries = append(entries, editionEntry{
			Edition:   edition,
			SourceURL: url,
			Stored:    storedByName[edition],
		})
	}
	success(c, entries)
}

// handleForecast reports the metrics available in one loaded edition.
func (s *Server) handleForecast(c *gin.Context) {
	snap, err := s.snapshot(c.Param("edition"))
	if err != nil {
		failErr(c, err)
		return
	}
	success(c, gin.H{
		"edition": snap.Edition(),
		"metrics": snap.AvailableMetrics(),
	})
}

// handleSeries returns one metric's series over the requested (or default)
// year window. Absent years are null.
func (s *Server) handleSeries(c *gin.Context) {
	metricName := c.Param("metric")
	metric, ok := model.MetricByName(metricName)
	if !ok {
		fail(c, http.StatusNotFound, fmt.Sprintf("unknown metric: %s", metricName))
		return
	}

	years, err := parseYears(c.Query("years"))
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if years == nil {
		years = s.cfg.Forecast.Years()
	}

	snap, err := s.snapshot(c.Param("edition"))
	if err != nil {
		failErr(c, err)
		return
	}

	success(c, gin.H{
		"edition": snap.Edition(),
		"metric":  metric.Name,
		"title":   metric.Title,
		"usage":   metric.Usage,
		"series":  snap.Series(metric.Name, years),
	})
}

// handleCompare compares one metric between two editions.
func (s *Server) handleCompare(c *gin.Context) {
	metricName := c.Query("metric")
	if _, ok := model.MetricByName(metricName); !ok {
		fail(c, http.StatusNotFound, fmt.Sprintf("unknown metric: %s", metricName))
		return
	}

	baseEdition := c.DefaultQuery("base", s.cfg.Forecast.BaseEdition)
	comparisonEdition := c.DefaultQuery("comparison", s.cfg.Forecast.ComparisonEdition)

	years, err := parseYears(c.Query("years"))
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if years == nil {
		years = s.cfg.Forecast.Years()
	}

	base, err := s.snapshot(baseEdition)
	if err != nil {
		failErr(c, err)
		return
	}
	comparison, err := s.snapshot(comparisonEdition)
	if err != nil {
		failErr(c, err)
		return
	}

	success(c, base.Compare(comparison, metricName, years))
}

// handleExport renders the chart to the export directory and hands back a
// download token.
func (s *Server) handleExport(c *gin.Context) {
	base, err := s.snapshot(s.cfg.Forecast.BaseEdition)
	if err != nil {
		failErr(c, err)
		return
	}
	comparison, err := s.snapshot(s.cfg.Forecast.ComparisonEdition)
	if err != nil {
		failErr(c, err)
		return
	}

	token := uuid.NewString()
	path := filepath.Join(s.cfg.Data.ExportDir, fmt.Sprintf("obr-comparison-%s.html", token))
	if err := chart.WriteFile(path, base, comparison, s.cfg.Forecast.Years()); err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	s.exportsMu.Lock()
	s.exports[token] = path
	s.exportsMu.Unlock()

	success(c, gin.H{"token": token})
}

// handleDownloadExport streams a previously exported chart.
func (s *Server) handleDownloadExport(c *gin.Context) {
	token := c.Param("token")

	s.exportsMu.RLock()
	path, ok := s.exports[token]
	s.exportsMu.RUnlock()
	if !ok {
		fail(c, http.StatusNotFound, "unknown export token")
		return
	}
	if _, err := os.Stat(path); err != nil {
		fail(c, http.StatusNotFound, "export file no longer exists")
		return
	}

	c.FileAttachment(path, "obr-comparison.html")
}

// parseYears accepts "2025-2030" ranges or "2025,2026" lists. An empty input
// selects the caller's default.
func parseYears(value string) ([]int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if from, to, found := strings.Cut(value, "-"); found {
		fromYear, err1 := strconv.Atoi(strings.TrimSpace(from))
		toYear, err2 := strconv.Atoi(strings.TrimSpace(to))
		if err1 != nil || err2 != nil || toYear < fromYear {
			return nil, fmt.Errorf("invalid year range: %s", value)
		}
		years := make([]int, 0, toYear-fromYear+1)
		for y := fromYear; y <= toYear; y++ {
			years = append(years, y)
		}
		return years, nil
	}

	parts := strings.Split(value, ",")
	years := make([]int, 0, len(parts))
	for _, part := range parts {
		year, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid year: %s", part)
		}
		years = append(years, year)
	}
	return years, nil
}
