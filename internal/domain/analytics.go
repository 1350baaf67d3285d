package domain

// AnalyticsQuery narrows an analytics request
type AnalyticsQuery struct {
	Period   string `json:"period,omitempty" form:"period"`     // day, week, month, year
	Currency string `json:"currency,omitempty" form:"currency"` // Optional currency filter
}

// RevenueAnalytics sums completed payments
type RevenueAnalytics struct {
	Period       string             `json:"period"`
	TotalRevenue float64            `json:"total_revenue"`
	PaymentCount int64              `json:"payment_count"`
	ByCurrency   map[string]float64 `json:"by_currency"`
}

// PaymentAnalytics breaks payments down by status and method
type PaymentAnalytics struct {
	Period      string           `json:"period"`
	Total       int64            `json:"total"`
	ByStatus    map[string]int64 `json:"by_status"`
	ByMethod    map[string]int64 `json:"by_method"`
	SuccessRate float64          `json:"success_rate"`
}

// UserAnalytics counts users
type UserAnalytics struct {
	Period     string `json:"period"`
	TotalUsers int64  `json:"total_users"`
	AdminUsers int64  `json:"admin_users"`
	NewUsers   int64  `json:"new_users"`
}

// FraudAnalytics lists payments above the review threshold
type FraudAnalytics struct {
	Period          string    `json:"period"`
	Threshold       float64   `json:"threshold"`
	FlaggedPayments int64     `json:"flagged_payments"`
	FlaggedAmount   float64   `json:"flagged_amount"`
	Flagged         []Payment `json:"flagged,omitempty"`
}

// AnalyticsReport is produced by the generate_analytics_report tool
type AnalyticsReport struct {
	ReportType string            `json:"report_type"`
	Revenue    *RevenueAnalytics `json:"revenue,omitempty"`
	Payments   *PaymentAnalytics `json:"payments,omitempty"`
	Users      *UserAnalytics    `json:"users,omitempty"`
	Fraud      *FraudAnalytics   `json:"fraud,omitempty"`
}
