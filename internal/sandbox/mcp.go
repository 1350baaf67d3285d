package sandbox

import (
	"context"       // Request-scoped cancellation
	"encoding/json" // JSON-RPC envelopes
	"net/http"      // HTTP status codes
	"sort"          // Stable tools/list order

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging

	"payportal/internal/domain" // Domain models
	"payportal/internal/mcp"    // Envelope types and tool names
)

// toolFunc runs one tool with its raw arguments
type toolFunc func(ctx context.Context, actor Actor, args json.RawMessage) (any, error)

type toolEntry struct {
	description string
	admin       bool
	run         toolFunc
}

// rpcRequest is the server-side view of mcp.Request
type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

type toolCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// decode unmarshals tool arguments into a T
func decode[T any](args json.RawMessage) (T, error) {
	var v T
	if len(args) == 0 || string(args) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(args, &v); err != nil {
		return v, invalid("Invalid arguments: " + err.Error())
	}
	return v, nil
}

type idArgs struct {
	PaymentID string `json:"payment_id"`
	WalletID  string `json:"wallet_id"`
	AlertID   string `json:"alert_id"`
	Status    string `json:"status"`
	domain.PageQuery
}

type reportArgs struct {
	ReportType string `json:"report_type"`
	domain.AnalyticsQuery
}

// tools builds the dispatch table served on /mcp
func (s *Service) tools() map[string]toolEntry {
	return map[string]toolEntry{
		mcp.ToolCreatePayment: {"Create a payment", false, func(ctx context.Context, a Actor, args json.RawMessage) (any, error) {
			req, err := decode[domain.PaymentRequest](args)
			if err != nil {
				return nil, err
			}
			return s.CreatePayment(ctx, a, req)
		}},
		mcp.ToolVerifyPayment: {"Verify a payment's settlement", false, func(ctx context.Context, a Actor, args json.RawMessage) (any, error) {
			in, err := decode[idArgs](args)
			if err != nil {
				return nil, err
			}
			return s.VerifyPayment(ctx, a, in.PaymentID)
		}},
		mcp.ToolRefundPayment: {"Refund a payment", false, func(ctx context.Context, a Actor, args json.RawMessage) (any, error) {
			req, err := decode[domain.RefundRequest](args)
			if err != nil {
				return nil, err
			}
			return s.RefundPayment(ctx, a, req)
		}},
		mcp.ToolGetPaymentStatus: {"Get a payment", false, func(ctx context.Context, a Actor, args json.RawMessage) (any, error) {
			in, err := decode[idArgs](args)
			if err != nil {
				return nil, err
			}
			return s.GetPayment(ctx, a, in.PaymentID)
		}},
		mcp.ToolGetWalletBalance: {"Get a wallet's balances", false, func(ctx context.Context, a Actor, args json.RawMessage) (any, error) {
			in, err := decode[idArgs](args)
			if err != nil {
				return nil, err
			}
			return s.GetWallet(ctx, a, in.WalletID)
		}},
		mcp.ToolTransferFunds: {"Transfer funds between wallets", false, func(ctx context.Context, a Actor, args json.RawMessage) (any, error) {
			req, err := decode[domain.TransferRequest](args)
			if err != nil {
				return nil, err
			}
			return s.Transfer(ctx, a, req)
		}},
		mcp.ToolTopUpWallet: {"Top up a wallet", false, func(ctx context.Context, a Actor, args json.RawMessage) (any, error) {
			req, err := decode[domain.TopUpRequest](args)
			if err != nil {
				return nil, err
			}
			return s.TopUp(ctx, a, req)
		}},
		mcp.ToolWalletTransactionHistory: {"List a wallet's transactions", false, func(ctx context.Context, a Actor, args json.RawMessage) (any, error) {
			in, err := decode[idArgs](args)
			if err != nil {
				return nil, err
			}
			return s.WalletTransactions(ctx, a, in.WalletID, in.PageQuery)
		}},
		mcp.ToolOptimizeRouting: {"Recommend a payment route", false, func(ctx context.Context, a Actor, args json.RawMessage) (any, error) {
			req, err := decode[domain.RoutingRequest](args)
			if err != nil {
				return nil, err
			}
			return s.OptimizeRouting(ctx, req)
		}},
		mcp.ToolGenerateAnalyticsReport: {"Build an analytics report", true, func(ctx context.Context, a Actor, args json.RawMessage) (any, error) {
			in, err := decode[reportArgs](args)
			if err != nil {
				return nil, err
			}
			return s.AnalyticsReport(ctx, in.ReportType, in.AnalyticsQuery)
		}},
		mcp.ToolDetectFraud: {"Scan for suspicious payments", true, func(ctx context.Context, a Actor, args json.RawMessage) (any, error) {
			q, err := decode[domain.AnalyticsQuery](args)
			if err != nil {
				return nil, err
			}
			return s.FraudAnalytics(ctx, q)
		}},
		mcp.ToolGetSystemAlerts: {"List system alerts", true, func(ctx context.Context, a Actor, args json.RawMessage) (any, error) {
			in, err := decode[idArgs](args)
			if err != nil {
				return nil, err
			}
			return s.SystemAlerts(ctx, in.Status, in.PageQuery)
		}},
		mcp.ToolCreateAlert: {"Raise a system alert", true, func(ctx context.Context, a Actor, args json.RawMessage) (any, error) {
			req, err := decode[domain.CreateAlertRequest](args)
			if err != nil {
				return nil, err
			}
			return s.CreateAlert(ctx, a, req)
		}},
		mcp.ToolResolveAlert: {"Resolve a system alert", true, func(ctx context.Context, a Actor, args json.RawMessage) (any, error) {
			in, err := decode[idArgs](args)
			if err != nil {
				return nil, err
			}
			return s.ResolveAlert(ctx, a, in.AlertID)
		}},
		mcp.ToolQueryAuditLogs: {"Search the audit log", true, func(ctx context.Context, a Actor, args json.RawMessage) (any, error) {
			f, err := decode[domain.AuditFilter](args)
			if err != nil {
				return nil, err
			}
			return s.AuditLogs(ctx, f)
		}},
		mcp.ToolGenerateComplianceReport: {"Build a compliance report", true, func(ctx context.Context, a Actor, args json.RawMessage) (any, error) {
			req, err := decode[domain.ComplianceReportRequest](args)
			if err != nil {
				return nil, err
			}
			return s.GenerateComplianceReport(ctx, a, req)
		}},
	}
}

// MCPHandler serves tools/call and tools/list. Transport-level success is
// always 200; failures travel in the error envelope.
func MCPHandler(svc *Service) gin.HandlerFunc {
	tools := svc.tools()
	return func(c *gin.Context) {
		var req rpcRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, mcp.Response{JSONRPC: mcp.JSONRPCVersion, Error: &mcp.RPCError{Code: mcp.CodeParseError, Message: "Parse error"}})
			return
		}
		reply := func(result any, rpcErr *mcp.RPCError) {
			resp := mcp.Response{JSONRPC: mcp.JSONRPCVersion, ID: req.ID, Error: rpcErr}
			if rpcErr == nil {
				raw, err := json.Marshal(result)
				if err != nil {
					resp.Error = &mcp.RPCError{Code: mcp.CodeInternalError, Message: "Internal server error"}
				} else {
					resp.Result = raw
				}
			}
			c.JSON(http.StatusOK, resp)
		}
		if req.JSONRPC != mcp.JSONRPCVersion {
			reply(nil, &mcp.RPCError{Code: mcp.CodeInvalidRequest, Message: "jsonrpc must be 2.0"})
			return
		}

		switch req.Method {
		case mcp.MethodToolsList:
			list := make([]mcp.Tool, 0, len(tools))
			for name, t := range tools {
				list = append(list, mcp.Tool{Name: name, Description: t.description})
			}
			sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
			reply(gin.H{"tools": list}, nil)
		case mcp.MethodToolsCall:
			var call toolCall
			if err := json.Unmarshal(req.Params, &call); err != nil || call.Name == "" {
				reply(nil, &mcp.RPCError{Code: mcp.CodeInvalidParams, Message: "params.name is required"})
				return
			}
			tool, ok := tools[call.Name]
			if !ok {
				reply(nil, &mcp.RPCError{Code: mcp.CodeMethodNotFound, Message: "Unknown tool: " + call.Name})
				return
			}
			actor := actorOf(c)
			ctx := c.Request.Context()
			if tool.admin {
				if err := svc.requireAdmin(ctx, actor); err != nil {
					reply(nil, rpcError(err))
					return
				}
			}
			result, err := tool.run(ctx, actor, call.Arguments)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"tool":  call.Name,   // Tool name
					"error": err.Error(), // Error message
				}).Warn("Tool call failed")
				reply(nil, rpcError(err))
				return
			}
			reply(result, nil)
		default:
			reply(nil, &mcp.RPCError{Code: mcp.CodeMethodNotFound, Message: "Method not found: " + req.Method})
		}
	}
}

// requireAdmin checks the actor's role against the store
func (s *Service) requireAdmin(ctx context.Context, actor Actor) error {
	user, err := s.store.UserByID(ctx, actor.UserID)
	if err != nil || !user.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
