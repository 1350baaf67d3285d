package mcp

import (
	"context" // Request contexts

	"payportal/internal/domain" // Domain models
)

// Tool names understood by the backend
const (
	ToolCreatePayment            = "create_payment"
	ToolVerifyPayment            = "verify_payment"
	ToolRefundPayment            = "refund_payment"
	ToolGetPaymentStatus         = "get_payment_status"
	ToolGetWalletBalance         = "get_wallet_balance"
	ToolTransferFunds            = "transfer_funds"
	ToolTopUpWallet              = "top_up_wallet"
	ToolWalletTransactionHistory = "wallet_transaction_history"
	ToolOptimizeRouting          = "optimize_payment_routing"
	ToolGenerateAnalyticsReport  = "generate_analytics_report"
	ToolDetectFraud              = "detect_fraud"
	ToolGetSystemAlerts          = "get_system_alerts"
	ToolCreateAlert              = "create_alert"
	ToolResolveAlert             = "resolve_alert"
	ToolQueryAuditLogs           = "query_audit_logs"
	ToolGenerateComplianceReport = "generate_compliance_report"
)

// CreatePayment creates a payment with a fresh idempotency key
func (c *Client) CreatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.Payment, error) {
	var out domain.Payment
	if _, err := c.callMutating(ctx, ToolCreatePayment, PrefixPayment, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyPayment asks the backend to confirm a payment's settlement
func (c *Client) VerifyPayment(ctx context.Context, paymentID string) (*domain.PaymentVerification, error) {
	var out domain.PaymentVerification
	if err := c.Call(ctx, ToolVerifyPayment, map[string]any{"payment_id": paymentID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefundPayment refunds a payment with a fresh idempotency key
func (c *Client) RefundPayment(ctx context.Context, req domain.RefundRequest) (*domain.Payment, error) {
	var out domain.Payment
	if _, err := c.callMutating(ctx, ToolRefundPayment, PrefixRefund, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPaymentStatus fetches a payment's current state
func (c *Client) GetPaymentStatus(ctx context.Context, paymentID string) (*domain.Payment, error) {
	var out domain.Payment
	if err := c.Call(ctx, ToolGetPaymentStatus, map[string]any{"payment_id": paymentID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetWalletBalance fetches one wallet's balances
func (c *Client) GetWalletBalance(ctx context.Context, walletID string) (*domain.Wallet, error) {
	var out domain.Wallet
	if err := c.Call(ctx, ToolGetWalletBalance, map[string]any{"wallet_id": walletID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TransferFunds moves funds between wallets with a fresh idempotency key
func (c *Client) TransferFunds(ctx context.Context, req domain.TransferRequest) (*domain.Transaction, error) {
	var out domain.Transaction
	if _, err := c.callMutating(ctx, ToolTransferFunds, PrefixTransfer, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TopUpWallet adds funds to a wallet with a fresh idempotency key
func (c *Client) TopUpWallet(ctx context.Context, req domain.TopUpRequest) (*domain.Transaction, error) {
	var out domain.Transaction
	if _, err := c.callMutating(ctx, ToolTopUpWallet, PrefixTopUp, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WalletTransactionHistory lists a wallet's transactions
func (c *Client) WalletTransactionHistory(ctx context.Context, walletID string, q domain.PageQuery) (*domain.Page[domain.Transaction], error) {
	args := map[string]any{"wallet_id": walletID}
	if q.Page > 0 {
		args["page"] = q.Page
	}
	if q.Limit > 0 {
		args["limit"] = q.Limit
	}
	var out domain.Page[domain.Transaction]
	if err := c.Call(ctx, ToolWalletTransactionHistory, args, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OptimizeRouting asks for the best way to process a payment
func (c *Client) OptimizeRouting(ctx context.Context, req domain.RoutingRequest) (*domain.RoutingRecommendation, error) {
	var out domain.RoutingRecommendation
	if err := c.Call(ctx, ToolOptimizeRouting, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateAnalyticsReport builds a revenue, payments, users, fraud or full report
func (c *Client) GenerateAnalyticsReport(ctx context.Context, reportType string, q domain.AnalyticsQuery) (*domain.AnalyticsReport, error) {
	args, err := toArguments(q)
	if err != nil {
		return nil, err
	}
	args["report_type"] = reportType
	var out domain.AnalyticsReport
	if err := c.call(ctx, ToolGenerateAnalyticsReport, args, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DetectFraud runs the backend's fraud scan
func (c *Client) DetectFraud(ctx context.Context, q domain.AnalyticsQuery) (*domain.FraudAnalytics, error) {
	var out domain.FraudAnalytics
	if err := c.Call(ctx, ToolDetectFraud, q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SystemAlerts lists alerts, optionally by status
func (c *Client) SystemAlerts(ctx context.Context, status string) (*domain.Page[domain.Alert], error) {
	args := map[string]any{}
	if status != "" {
		args["status"] = status
	}
	var out domain.Page[domain.Alert]
	if err := c.Call(ctx, ToolGetSystemAlerts, args, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAlert raises an alert
func (c *Client) CreateAlert(ctx context.Context, req domain.CreateAlertRequest) (*domain.Alert, error) {
	var out domain.Alert
	if err := c.Call(ctx, ToolCreateAlert, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResolveAlert resolves an alert
func (c *Client) ResolveAlert(ctx context.Context, alertID string) (*domain.Alert, error) {
	var out domain.Alert
	if err := c.Call(ctx, ToolResolveAlert, map[string]any{"alert_id": alertID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// QueryAuditLogs searches the audit log
func (c *Client) QueryAuditLogs(ctx context.Context, f domain.AuditFilter) (*domain.Page[domain.AuditLog], error) {
	var out domain.Page[domain.AuditLog]
	if err := c.Call(ctx, ToolQueryAuditLogs, f, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateComplianceReport builds a compliance report
func (c *Client) GenerateComplianceReport(ctx context.Context, req domain.ComplianceReportRequest) (*domain.ComplianceReport, error) {
	var out domain.ComplianceReport
	if err := c.Call(ctx, ToolGenerateComplianceReport, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
