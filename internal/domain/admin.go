package domain

import "time" // Timestamps

// Alert severities and statuses
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"

	AlertActive   = "active"
	AlertResolved = "resolved"
)

// Alert is a system alert shown in the admin console
type Alert struct {
	ID         string     `json:"id" gorm:"primaryKey;size:64"`
	Severity   string     `json:"severity" gorm:"size:16"`
	Status     string     `json:"status" gorm:"index;size:16"`
	Title      string     `json:"title" gorm:"size:191"`
	Message    string     `json:"message,omitempty" gorm:"size:1024"`
	Resource   string     `json:"resource,omitempty" gorm:"size:191"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// CreateAlertRequest raises a new alert
type CreateAlertRequest struct {
	Severity string `json:"severity" binding:"required,oneof=info warning critical" validate:"required,oneof=info warning critical"`
	Title    string `json:"title" binding:"required" validate:"required"`
	Message  string `json:"message,omitempty"`
	Resource string `json:"resource,omitempty"`
}

// AuditLog records one mutation made against the backend
type AuditLog struct {
	ID         string    `json:"id" gorm:"primaryKey;size:64"`
	ActorID    string    `json:"actor_id" gorm:"index;size:64"`
	Action     string    `json:"action" gorm:"index;size:64"`
	Resource   string    `json:"resource" gorm:"index;size:64"`
	ResourceID string    `json:"resource_id,omitempty" gorm:"size:64"`
	Status     string    `json:"status" gorm:"size:16"`
	Message    string    `json:"message,omitempty" gorm:"size:1024"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

// AuditExport bundles audit records for download
type AuditExport struct {
	Format      string     `json:"format"`
	GeneratedAt time.Time  `json:"generated_at"`
	Records     []AuditLog `json:"records"`
}

// ComplianceReportRequest asks the backend to build a report for a period
type ComplianceReportRequest struct {
	ReportType string    `json:"report_type" binding:"required,oneof=aml kyc transactions audit" validate:"required,oneof=aml kyc transactions audit"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date" validate:"omitempty,gtefield=StartDate"`
}

// ComplianceReport is a generated compliance report
type ComplianceReport struct {
	ID          string           `json:"id" gorm:"primaryKey;size:64"`
	ReportType  string           `json:"report_type" gorm:"index;size:32"`
	Status      string           `json:"status" gorm:"size:16"`
	StartDate   time.Time        `json:"start_date"`
	EndDate     time.Time        `json:"end_date"`
	GeneratedAt time.Time        `json:"generated_at" gorm:"index"`
	Summary     map[string]int64 `json:"summary" gorm:"serializer:json"`
}

// SystemMetrics reports backend process metrics
type SystemMetrics struct {
	UptimeSeconds    float64 `json:"uptime_seconds"`
	Goroutines       int     `json:"goroutines"`
	MemoryAllocBytes uint64  `json:"memory_alloc_bytes"`
	RequestsServed   int64   `json:"requests_served"`
}

// SystemStatus reports the health of backend dependencies
type SystemStatus struct {
	Status   string            `json:"status"`
	Version  string            `json:"version,omitempty"`
	Services map[string]string `json:"services"`
}

// DashboardMetrics feeds the customer and admin dashboards
type DashboardMetrics struct {
	TotalPayments int64   `json:"total_payments"`
	TotalRevenue  float64 `json:"total_revenue"`
	ActiveWallets int64   `json:"active_wallets"`
	ActiveAlerts  int64   `json:"active_alerts"`
	TotalUsers    int64   `json:"total_users"`
}

// HealthStatus is returned by /health and /ready
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
