package api

import (
	"context" // Request contexts
	"net/url" // URL building

	"payportal/internal/domain" // Domain models
)

func analyticsValues(q domain.AnalyticsQuery) url.Values {
	v := url.Values{}
	setIf(v, "period", q.Period)
	setIf(v, "currency", q.Currency)
	return v
}

// RevenueAnalytics sums completed payments over a period
func (c *Client) RevenueAnalytics(ctx context.Context, q domain.AnalyticsQuery) (*domain.RevenueAnalytics, error) {
	var out domain.RevenueAnalytics
	if err := c.http.Get(ctx, "/analytics/revenue", analyticsValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PaymentAnalytics breaks payments down by status and method
func (c *Client) PaymentAnalytics(ctx context.Context, q domain.AnalyticsQuery) (*domain.PaymentAnalytics, error) {
	var out domain.PaymentAnalytics
	if err := c.http.Get(ctx, "/analytics/payments", analyticsValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserAnalytics counts users
func (c *Client) UserAnalytics(ctx context.Context, q domain.AnalyticsQuery) (*domain.UserAnalytics, error) {
	var out domain.UserAnalytics
	if err := c.http.Get(ctx, "/analytics/users", analyticsValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FraudAnalytics lists payments flagged for review
func (c *Client) FraudAnalytics(ctx context.Context, q domain.AnalyticsQuery) (*domain.FraudAnalytics, error) {
	var out domain.FraudAnalytics
	if err := c.http.Get(ctx, "/analytics/fraud", analyticsValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func auditValues(f domain.AuditFilter) url.Values {
	v := pageValues(f.PageQuery)
	setIf(v, "action", f.Action)
	setIf(v, "resource", f.Resource)
	setIf(v, "actor_id", f.ActorID)
	setTime(v, "from", f.From)
	setTime(v, "to", f.To)
	return v
}

// AuditLogs queries the audit log
func (c *Client) AuditLogs(ctx context.Context, f domain.AuditFilter) (*domain.Page[domain.AuditLog], error) {
	var out domain.Page[domain.AuditLog]
	if err := c.http.Get(ctx, "/audit/logs", auditValues(f), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportAuditLogs returns every audit record matching f
func (c *Client) ExportAuditLogs(ctx context.Context, f domain.AuditFilter) (*domain.AuditExport, error) {
	var out domain.AuditExport
	if err := c.http.Get(ctx, "/audit/export", auditValues(f), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateComplianceReport builds a compliance report for a period
func (c *Client) GenerateComplianceReport(ctx context.Context, req domain.ComplianceReportRequest) (*domain.ComplianceReport, error) {
	var out domain.ComplianceReport
	if err := c.http.Post(ctx, "/compliance/reports", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ComplianceReports lists generated reports
func (c *Client) ComplianceReports(ctx context.Context, q domain.PageQuery) (*domain.Page[domain.ComplianceReport], error) {
	var out domain.Page[domain.ComplianceReport]
	if err := c.http.Get(ctx, "/compliance/reports", pageValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SystemMetrics reports backend process metrics
func (c *Client) SystemMetrics(ctx context.Context) (*domain.SystemMetrics, error) {
	var out domain.SystemMetrics
	if err := c.http.Get(ctx, "/system/metrics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SystemStatus reports dependency health
func (c *Client) SystemStatus(ctx context.Context) (*domain.SystemStatus, error) {
	var out domain.SystemStatus
	if err := c.http.Get(ctx, "/system/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SystemAlerts lists alerts, optionally filtered by status
func (c *Client) SystemAlerts(ctx context.Context, status string, q domain.PageQuery) (*domain.Page[domain.Alert], error) {
	v := pageValues(q)
	setIf(v, "status", status)
	var out domain.Page[domain.Alert]
	if err := c.http.Get(ctx, "/system/alerts", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAlert raises an alert
func (c *Client) CreateAlert(ctx context.Context, req domain.CreateAlertRequest) (*domain.Alert, error) {
	var out domain.Alert
	if err := c.http.Post(ctx, "/system/alerts", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResolveAlert marks an alert resolved
func (c *Client) ResolveAlert(ctx context.Context, alertID string) (*domain.Alert, error) {
	var out domain.Alert
	if err := c.http.Post(ctx, "/system/alerts/"+id(alertID)+"/resolve", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DashboardMetrics feeds the dashboards
func (c *Client) DashboardMetrics(ctx context.Context) (*domain.DashboardMetrics, error) {
	var out domain.DashboardMetrics
	if err := c.http.Get(ctx, "/dashboard/metrics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health is the liveness probe
func (c *Client) Health(ctx context.Context) (*domain.HealthStatus, error) {
	var out domain.HealthStatus
	if err := c.http.Get(ctx, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ready is the readiness probe
func (c *Client) Ready(ctx context.Context) (*domain.HealthStatus, error) {
	var out domain.HealthStatus
	if err := c.http.Get(ctx, "/ready", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
