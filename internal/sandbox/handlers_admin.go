package sandbox

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"payportal/internal/domain" // Domain models
)

// analyticsHandler binds the analytics query and calls fn
func analyticsHandler[T any](fn func(*gin.Context, domain.AnalyticsQuery) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q domain.AnalyticsQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid analytics query"})
			return
		}
		out, err := fn(c, q)
		respond(c, http.StatusOK, out, err)
	}
}

// RevenueAnalyticsHandler sums completed payments
func RevenueAnalyticsHandler(svc *Service) gin.HandlerFunc {
	return analyticsHandler(func(c *gin.Context, q domain.AnalyticsQuery) (*domain.RevenueAnalytics, error) {
		return svc.RevenueAnalytics(c.Request.Context(), q)
	})
}

// PaymentAnalyticsHandler breaks payments down by status and method
func PaymentAnalyticsHandler(svc *Service) gin.HandlerFunc {
	return analyticsHandler(func(c *gin.Context, q domain.AnalyticsQuery) (*domain.PaymentAnalytics, error) {
		return svc.PaymentAnalytics(c.Request.Context(), q)
	})
}

// UserAnalyticsHandler counts users
func UserAnalyticsHandler(svc *Service) gin.HandlerFunc {
	return analyticsHandler(func(c *gin.Context, q domain.AnalyticsQuery) (*domain.UserAnalytics, error) {
		return svc.UserAnalytics(c.Request.Context(), q)
	})
}

// FraudAnalyticsHandler lists flagged payments
func FraudAnalyticsHandler(svc *Service) gin.HandlerFunc {
	return analyticsHandler(func(c *gin.Context, q domain.AnalyticsQuery) (*domain.FraudAnalytics, error) {
		return svc.FraudAnalytics(c.Request.Context(), q)
	})
}

func bindAudit(c *gin.Context) (domain.AuditFilter, bool) {
	var f domain.AuditFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid audit filter"})
		return f, false
	}
	return f, true
}

// AuditLogsHandler pages through the audit log
func AuditLogsHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := bindAudit(c)
		if !ok {
			return
		}
		page, err := svc.AuditLogs(c.Request.Context(), f)
		respond(c, http.StatusOK, page, err)
	}
}

// ExportAuditLogsHandler returns every matching audit record
func ExportAuditLogsHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := bindAudit(c)
		if !ok {
			return
		}
		export, err := svc.ExportAuditLogs(c.Request.Context(), f)
		respond(c, http.StatusOK, export, err)
	}
}

// GenerateComplianceReportHandler builds a compliance report
func GenerateComplianceReportHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.ComplianceReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "report_type must be one of: aml, kyc, transactions, audit"})
			return
		}
		r, err := svc.GenerateComplianceReport(c.Request.Context(), actorOf(c), req)
		respond(c, http.StatusCreated, r, err)
	}
}

// ComplianceReportsHandler pages through generated reports
func ComplianceReportsHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := bindPage(c)
		if !ok {
			return
		}
		page, err := svc.ComplianceReports(c.Request.Context(), q)
		respond(c, http.StatusOK, page, err)
	}
}

// SystemMetricsHandler reports process metrics
func SystemMetricsHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.SystemMetrics())
	}
}

// SystemStatusHandler reports dependency health
func SystemStatusHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.SystemStatus(c.Request.Context()))
	}
}

// SystemAlertsHandler lists alerts, filtered by ?status=
func SystemAlertsHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := bindPage(c)
		if !ok {
			return
		}
		page, err := svc.SystemAlerts(c.Request.Context(), c.Query("status"), q)
		respond(c, http.StatusOK, page, err)
	}
}

// CreateAlertHandler raises an alert
func CreateAlertHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.CreateAlertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "severity and title are required"})
			return
		}
		a, err := svc.CreateAlert(c.Request.Context(), actorOf(c), req)
		respond(c, http.StatusCreated, a, err)
	}
}

// ResolveAlertHandler resolves the alert in the path
func ResolveAlertHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := svc.ResolveAlert(c.Request.Context(), actorOf(c), c.Param("id"))
		respond(c, http.StatusOK, a, err)
	}
}

// DashboardMetricsHandler feeds the dashboards
func DashboardMetricsHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := svc.DashboardMetrics(c.Request.Context(), actorOf(c))
		respond(c, http.StatusOK, m, err)
	}
}

// HealthHandler reports liveness
func HealthHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Health())
	}
}

// ReadyHandler reports readiness
func ReadyHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h, err := svc.Ready(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Store unavailable"})
			return
		}
		c.JSON(http.StatusOK, h)
	}
}
