package sandbox

import (
	"context" // Request-scoped cancellation
	"runtime" // Process metrics

	"github.com/shopspring/decimal" // Exact revenue sums
	"github.com/sirupsen/logrus"    // Structured logging

	"payportal/internal/domain" // Domain models
)

// Version reported by /system/status
const Version = "sandbox"

// RevenueAnalytics sums completed payments in the period
func (s *Service) RevenueAnalytics(ctx context.Context, q domain.AnalyticsQuery) (*domain.RevenueAnalytics, error) {
	payments, err := s.store.PaymentsSince(ctx, s.since(q.Period))
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	byCurrency := map[string]decimal.Decimal{}
	out := &domain.RevenueAnalytics{Period: q.Period, ByCurrency: map[string]float64{}}
	for _, p := range payments {
		if p.Status != domain.PaymentCompleted || (q.Currency != "" && p.Currency != q.Currency) {
			continue
		}
		amt := decimal.NewFromFloat(p.Amount)
		total = total.Add(amt)
		byCurrency[p.Currency] = byCurrency[p.Currency].Add(amt)
		out.PaymentCount++
	}
	out.TotalRevenue = total.Round(2).InexactFloat64()
	for cur, v := range byCurrency {
		out.ByCurrency[cur] = v.Round(2).InexactFloat64()
	}
	return out, nil
}

// PaymentAnalytics breaks payments down by status and method
func (s *Service) PaymentAnalytics(ctx context.Context, q domain.AnalyticsQuery) (*domain.PaymentAnalytics, error) {
	payments, err := s.store.PaymentsSince(ctx, s.since(q.Period))
	if err != nil {
		return nil, err
	}
	out := &domain.PaymentAnalytics{Period: q.Period, ByStatus: map[string]int64{}, ByMethod: map[string]int64{}}
	var succeeded int64
	for _, p := range payments {
		if q.Currency != "" && p.Currency != q.Currency {
			continue
		}
		out.Total++
		out.ByStatus[p.Status]++
		out.ByMethod[p.Method]++
		if p.Status == domain.PaymentCompleted || p.Status == domain.PaymentRefunded {
			succeeded++
		}
	}
	if out.Total > 0 {
		out.SuccessRate = float64(succeeded) / float64(out.Total)
	}
	return out, nil
}

// UserAnalytics counts users
func (s *Service) UserAnalytics(ctx context.Context, q domain.AnalyticsQuery) (*domain.UserAnalytics, error) {
	st, err := s.store.UserStats(ctx, s.since(q.Period))
	if err != nil {
		return nil, err
	}
	return &domain.UserAnalytics{Period: q.Period, TotalUsers: st.Total, AdminUsers: st.Admins, NewUsers: st.New}, nil
}

// FraudAnalytics lists payments above FraudThreshold
func (s *Service) FraudAnalytics(ctx context.Context, q domain.AnalyticsQuery) (*domain.FraudAnalytics, error) {
	payments, err := s.store.PaymentsSince(ctx, s.since(q.Period))
	if err != nil {
		return nil, err
	}
	out := &domain.FraudAnalytics{Period: q.Period, Threshold: FraudThreshold}
	flagged := decimal.Zero
	for _, p := range payments {
		if p.Amount <= FraudThreshold || (q.Currency != "" && p.Currency != q.Currency) {
			continue
		}
		out.Flagged = append(out.Flagged, p)
		out.FlaggedPayments++
		flagged = flagged.Add(decimal.NewFromFloat(p.Amount))
	}
	out.FlaggedAmount = flagged.Round(2).InexactFloat64()
	return out, nil
}

// AnalyticsReport builds one report type, or all of them for "full"
func (s *Service) AnalyticsReport(ctx context.Context, reportType string, q domain.AnalyticsQuery) (*domain.AnalyticsReport, error) {
	out := &domain.AnalyticsReport{ReportType: reportType}
	var err error
	all := reportType == "full" || reportType == ""
	if all || reportType == "revenue" {
		if out.Revenue, err = s.RevenueAnalytics(ctx, q); err != nil {
			return nil, err
		}
	}
	if all || reportType == "payments" {
		if out.Payments, err = s.PaymentAnalytics(ctx, q); err != nil {
			return nil, err
		}
	}
	if all || reportType == "users" {
		if out.Users, err = s.UserAnalytics(ctx, q); err != nil {
			return nil, err
		}
	}
	if all || reportType == "fraud" {
		if out.Fraud, err = s.FraudAnalytics(ctx, q); err != nil {
			return nil, err
		}
	}
	if out.Revenue == nil && out.Payments == nil && out.Users == nil && out.Fraud == nil {
		return nil, invalid("Unknown report type: " + reportType)
	}
	return out, nil
}

// AuditLogs pages through audit records
func (s *Service) AuditLogs(ctx context.Context, f domain.AuditFilter) (*domain.Page[domain.AuditLog], error) {
	items, total, err := s.store.ListAudit(ctx, f)
	if err != nil {
		return nil, err
	}
	return &domain.Page[domain.AuditLog]{Data: items, Total: total}, nil
}

// ExportAuditLogs returns every record matching f
func (s *Service) ExportAuditLogs(ctx context.Context, f domain.AuditFilter) (*domain.AuditExport, error) {
	out := &domain.AuditExport{Format: "json", GeneratedAt: s.now(), Records: []domain.AuditLog{}}
	f.Limit = domain.MaxLimit
	for f.Page = 1; ; f.Page++ {
		items, total, err := s.store.ListAudit(ctx, f)
		if err != nil {
			return nil, err
		}
		out.Records = append(out.Records, items...)
		if len(items) == 0 || int64(len(out.Records)) >= total {
			return out, nil
		}
	}
}

// GenerateComplianceReport summarises activity in the requested window
func (s *Service) GenerateComplianceReport(ctx context.Context, actor Actor, req domain.ComplianceReportRequest) (*domain.ComplianceReport, error) {
	start, end := req.StartDate, req.EndDate
	if end.IsZero() {
		end = s.now()
	}
	if start.IsZero() {
		start = end.AddDate(0, -1, 0)
	}
	if end.Before(start) {
		return nil, invalid("end_date must not be before start_date")
	}
	summary := map[string]int64{}
	switch req.ReportType {
	case "transactions", "aml":
		payments, err := s.store.PaymentsSince(ctx, start)
		if err != nil {
			return nil, err
		}
		for _, p := range payments {
			if p.CreatedAt.After(end) {
				continue
			}
			summary["payments"]++
			summary[p.Status]++
			if p.Amount > FraudThreshold {
				summary["flagged"]++
			}
		}
	case "kyc":
		st, err := s.store.UserStats(ctx, start)
		if err != nil {
			return nil, err
		}
		summary["users"] = st.Total
		summary["new_users"] = st.New
	case "audit":
		_, total, err := s.store.ListAudit(ctx, domain.AuditFilter{From: start, To: end})
		if err != nil {
			return nil, err
		}
		summary["audit_records"] = total
	default:
		return nil, invalid("Unknown report type: " + req.ReportType)
	}
	r := &domain.ComplianceReport{
		ID:          newID("rpt"),
		ReportType:  req.ReportType,
		Status:      "completed",
		StartDate:   start,
		EndDate:     end,
		GeneratedAt: s.now(),
		Summary:     summary,
	}
	if err := s.store.CreateReport(ctx, r); err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "generate_report", "compliance", r.ID, "success", req.ReportType)
	return r, nil
}

// ComplianceReports pages through generated reports
func (s *Service) ComplianceReports(ctx context.Context, q domain.PageQuery) (*domain.Page[domain.ComplianceReport], error) {
	items, total, err := s.store.ListReports(ctx, q)
	if err != nil {
		return nil, err
	}
	return &domain.Page[domain.ComplianceReport]{Data: items, Total: total}, nil
}

// SystemMetrics reports process metrics
func (s *Service) SystemMetrics() *domain.SystemMetrics {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return &domain.SystemMetrics{
		UptimeSeconds:    s.now().Sub(s.started).Seconds(),
		Goroutines:       runtime.NumGoroutine(),
		MemoryAllocBytes: mem.Alloc,
		RequestsServed:   s.requests.Load(),
	}
}

// SystemStatus reports dependency health
func (s *Service) SystemStatus(ctx context.Context) *domain.SystemStatus {
	out := &domain.SystemStatus{Status: "ok", Version: Version, Services: map[string]string{"api": "ok", "database": "ok"}}
	if err := s.store.Ping(ctx); err != nil {
		out.Status = "degraded"
		out.Services["database"] = "unavailable"
	}
	return out
}

// raise creates an alert on behalf of the system
func (s *Service) raise(ctx context.Context, severity, title, msg, resource string) {
	a := &domain.Alert{
		ID:        newID("alr"),
		Severity:  severity,
		Status:    domain.AlertActive,
		Title:     title,
		Message:   msg,
		Resource:  resource,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateAlert(ctx, a); err != nil {
		logrus.WithError(err).Error("Failed to raise alert")
	}
}

// SystemAlerts pages through alerts, optionally by status
func (s *Service) SystemAlerts(ctx context.Context, status string, q domain.PageQuery) (*domain.Page[domain.Alert], error) {
	items, total, err := s.store.ListAlerts(ctx, status, q)
	if err != nil {
		return nil, err
	}
	return &domain.Page[domain.Alert]{Data: items, Total: total}, nil
}

// CreateAlert raises an operator alert
func (s *Service) CreateAlert(ctx context.Context, actor Actor, req domain.CreateAlertRequest) (*domain.Alert, error) {
	switch req.Severity {
	case domain.SeverityInfo, domain.SeverityWarning, domain.SeverityCritical:
	default:
		return nil, invalid("Severity must be one of: info, warning, critical")
	}
	if req.Title == "" {
		return nil, invalid("Title is required")
	}
	a := &domain.Alert{
		ID:        newID("alr"),
		Severity:  req.Severity,
		Status:    domain.AlertActive,
		Title:     req.Title,
		Message:   req.Message,
		Resource:  req.Resource,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateAlert(ctx, a); err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "create_alert", "alert", a.ID, "success", "")
	return a, nil
}

// ResolveAlert marks an alert resolved; resolving twice is a no-op
func (s *Service) ResolveAlert(ctx context.Context, actor Actor, id string) (*domain.Alert, error) {
	a, err := s.store.Alert(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == domain.AlertResolved {
		return a, nil
	}
	now := s.now()
	a.Status = domain.AlertResolved
	a.ResolvedAt = &now
	if err := s.store.UpdateAlert(ctx, a); err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "resolve_alert", "alert", a.ID, "success", "")
	return a, nil
}

// DashboardMetrics feeds the dashboards. Non-admins see their own figures.
func (s *Service) DashboardMetrics(ctx context.Context, actor Actor) (*domain.DashboardMetrics, error) {
	payments, err := s.store.PaymentsSince(ctx, s.since(""))
	if err != nil {
		return nil, err
	}
	out := &domain.DashboardMetrics{}
	revenue := decimal.Zero
	for _, p := range payments {
		if !actor.IsAdmin() && p.CustomerID != actor.UserID {
			continue
		}
		out.TotalPayments++
		if p.Status == domain.PaymentCompleted {
			revenue = revenue.Add(decimal.NewFromFloat(p.Amount))
		}
	}
	out.TotalRevenue = revenue.Round(2).InexactFloat64()
	wallets, err := s.ListWallets(ctx, actor)
	if err != nil {
		return nil, err
	}
	for _, w := range wallets {
		if w.Status == domain.WalletActive {
			out.ActiveWallets++
		}
	}
	if actor.IsAdmin() {
		_, active, err := s.store.ListAlerts(ctx, domain.AlertActive, domain.PageQuery{Limit: 1})
		if err != nil {
			return nil, err
		}
		out.ActiveAlerts = active
		st, err := s.store.UserStats(ctx, s.now())
		if err != nil {
			return nil, err
		}
		out.TotalUsers = st.Total
	}
	return out, nil
}

// Health reports liveness
func (s *Service) Health() *domain.HealthStatus {
	return &domain.HealthStatus{Status: "ok", Timestamp: s.now()}
}

// Ready reports readiness: the store must answer
func (s *Service) Ready(ctx context.Context) (*domain.HealthStatus, error) {
	if err := s.store.Ping(ctx); err != nil {
		return nil, err
	}
	return &domain.HealthStatus{Status: "ready", Timestamp: s.now()}, nil
}
