package admin

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetReportOverview 仪表盘总览
func (h *Handler) GetReportOverview(c *gin.Context) {
	query, err := parseReportQuery(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	overview, err := h.ReportService.Overview(c.Request.Context(), query)
	if err != nil {
		respondWithMappedError(c, err, reportErrorRules, response.CodeInternal, "error.report_fetch_failed")
		return
	}
	response.Success(c, overview)
}

// GetReport 按维度获取报表，format=csv 时直接下载
func (h *Handler) GetReport(c *gin.Context) {
	query, err := parseReportQuery(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	format, err := service.NormalizeExportFormat(c.Query("format"))
	if err != nil {
		respondWithMappedError(c, err, reportErrorRules, response.CodeInternal, "error.report_fetch_failed")
		return
	}

	kind := strings.ToLower(strings.TrimSpace(c.Param("kind")))
	result, err := h.ReportService.Report(c.Request.Context(), kind, query)
	if err != nil {
		respondWithMappedError(c, err, reportErrorRules, response.CodeInternal, "error.report_fetch_failed")
		return
	}
	if format == constants.ExportFormatJSON {
		response.Success(c, result)
		return
	}

	var buf bytes.Buffer
	if err := result.WriteCSV(&buf); err != nil {
		respondError(c, response.CodeInternal, "error.report_export_failed", err)
		return
	}
	filename := fmt.Sprintf("%s_%s_%s.csv", result.Kind, result.From[:10], result.To[:10])
	requestLog(c).Infow("admin_report_exported", "kind", result.Kind, "rows", len(result.Rows))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func parseReportQuery(c *gin.Context) (service.ReportQuery, error) {
	from, err := parseTimeNullable(c.Query("from"))
	if err != nil {
		return service.ReportQuery{}, err
	}
	to, err := parseTimeNullable(c.Query("to"))
	if err != nil {
		return service.ReportQuery{}, err
	}

	query := service.ReportQuery{
		Range:    strings.TrimSpace(c.DefaultQuery("range", "7d")),
		From:     from,
		To:       to,
		Timezone: strings.TrimSpace(c.Query("tz")),
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return service.ReportQuery{}, err
		}
		query.Limit = limit
	}
	if raw := strings.TrimSpace(c.Query("force_refresh")); raw != "" {
		forceRefresh, err := strconv.ParseBool(raw)
		if err != nil {
			return service.ReportQuery{}, err
		}
		query.ForceRefresh = forceRefresh
	}
	return query, nil
}
