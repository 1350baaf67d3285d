package main

import (
	"context" // Request contexts
	"errors"  // Usage errors
	"flag"    // Per-command flags
	"fmt"     // Output
	"os"      // Password from env
	"strings" // Currency normalisation

	"payportal/internal/domain"     // Domain models
	"payportal/internal/httpclient" // Error messages
	"payportal/internal/payments"   // Payment form
	"payportal/internal/validation" // Amount parsing
)

var errUsage = errors.New("usage")

// show prints v, or the user-facing message for err
func show(v any, err error) error {
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗", httpclient.UserMessage(err))
		return err
	}
	return printJSON(v)
}

// quiet prints v; the container already reported err
func quiet(v any, err error) error {
	if err != nil {
		return err
	}
	return printJSON(v)
}

func parse(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(os.Stderr)
	return fs.Parse(args)
}

func amountFlag(raw string) (float64, error) {
	amt, err := validation.ParseAmount(raw)
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗", err)
	}
	return amt, err
}

func pageFlags(fs *flag.FlagSet) *domain.PageQuery {
	q := &domain.PageQuery{}
	fs.IntVar(&q.Page, "page", 1, "page number")
	fs.IntVar(&q.Limit, "limit", domain.DefaultLimit, "page size")
	return q
}

var commands = map[string]command{
	"login": {help: "sign in and store the access token", run: func(ctx context.Context, a *app, args []string) error {
		fs := flag.NewFlagSet("login", flag.ContinueOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", os.Getenv("PORTAL_PASSWORD"), "password (or PORTAL_PASSWORD)")
		if err := parse(fs, args); err != nil {
			return err
		}
		return quiet(a.session.Login(ctx, *email, *password))
	}},
	"register": {help: "create an account and sign in", run: func(ctx context.Context, a *app, args []string) error {
		fs := flag.NewFlagSet("register", flag.ContinueOnError)
		var req domain.RegisterRequest
		fs.StringVar(&req.Name, "name", "", "display name")
		fs.StringVar(&req.Email, "email", "", "account email")
		fs.StringVar(&req.Phone, "phone", "", "phone number")
		fs.StringVar(&req.Password, "password", os.Getenv("PORTAL_PASSWORD"), "password (or PORTAL_PASSWORD)")
		fs.StringVar(&req.ConfirmPassword, "confirm", "", "repeat the password")
		if err := parse(fs, args); err != nil {
			return err
		}
		if req.ConfirmPassword == "" {
			req.ConfirmPassword = req.Password
		}
		return quiet(a.session.Register(ctx, req))
	}},
	"logout": {help: "sign out and forget the token", run: func(ctx context.Context, a *app, _ []string) error {
		a.session.Logout(ctx)
		return nil
	}},
	"whoami": {help: "show the signed-in user", auth: true, run: func(_ context.Context, a *app, _ []string) error {
		return printJSON(a.session.User())
	}},
	"profile": {help: "update name, email or phone", auth: true, run: func(ctx context.Context, a *app, args []string) error {
		fs := flag.NewFlagSet("profile", flag.ContinueOnError)
		var upd domain.ProfileUpdate
		fs.StringVar(&upd.Name, "name", "", "display name")
		fs.StringVar(&upd.Email, "email", "", "email")
		fs.StringVar(&upd.Phone, "phone", "", "phone number")
		if err := parse(fs, args); err != nil {
			return err
		}
		return quiet(a.session.UpdateUser(ctx, upd))
	}},
	"wallets": {help: "list wallets and balances", auth: true, run: func(ctx context.Context, a *app, _ []string) error {
		wallets, err := a.payments.RefreshWallets(ctx)
		return show(wallets, err)
	}},
	"history": {help: "list a wallet's transactions", auth: true, run: func(ctx context.Context, a *app, args []string) error {
		fs := flag.NewFlagSet("history", flag.ContinueOnError)
		wallet := fs.String("wallet", "", "wallet id")
		q := pageFlags(fs)
		if err := parse(fs, args); err != nil {
			return err
		}
		return show(a.tools.WalletTransactionHistory(ctx, *wallet, *q))
	}},
	"transfer": {help: "move funds between wallets", auth: true, run: func(ctx context.Context, a *app, args []string) error {
		fs := flag.NewFlagSet("transfer", flag.ContinueOnError)
		var req domain.TransferRequest
		fs.StringVar(&req.FromWalletID, "from", "", "source wallet id")
		fs.StringVar(&req.ToWalletID, "to", "", "destination wallet id")
		fs.StringVar(&req.Description, "desc", "", "description")
		amount := fs.String("amount", "", "amount, e.g. 49.99")
		if err := parse(fs, args); err != nil {
			return err
		}
		amt, err := amountFlag(*amount)
		if err != nil {
			return err
		}
		req.Amount = amt
		return quiet(a.payments.TransferFunds(ctx, req))
	}},
	"topup": {help: "add funds to a wallet", auth: true, run: func(ctx context.Context, a *app, args []string) error {
		fs := flag.NewFlagSet("topup", flag.ContinueOnError)
		var req domain.TopUpRequest
		fs.StringVar(&req.WalletID, "wallet", "", "wallet id")
		fs.StringVar(&req.Method, "method", "card", "funding method")
		amount := fs.String("amount", "", "amount, e.g. 49.99")
		if err := parse(fs, args); err != nil {
			return err
		}
		amt, err := amountFlag(*amount)
		if err != nil {
			return err
		}
		req.Amount = amt
		return quiet(a.payments.TopUpWallet(ctx, req))
	}},
	"pay": {help: "create a payment", auth: true, run: func(ctx context.Context, a *app, args []string) error {
		fs := flag.NewFlagSet("pay", flag.ContinueOnError)
		var form payments.PaymentForm
		fs.StringVar(&form.Amount, "amount", "", "amount, e.g. 49.99")
		fs.StringVar(&form.Currency, "currency", "USD", "ISO currency code")
		fs.StringVar(&form.Method, "method", "card", "payment method")
		fs.StringVar(&form.CustomerID, "customer", "", "customer id (admins only)")
		fs.StringVar(&form.Description, "desc", "", "description")
		fs.BoolVar(&form.Optimize, "optimize", false, "use the recommended route")
		if err := parse(fs, args); err != nil {
			return err
		}
		if form.Optimize {
			amt, err := amountFlag(form.Amount)
			if err != nil {
				return err
			}
			rec, err := a.payments.OptimizeRouting(ctx, domain.RoutingRequest{Amount: amt, Currency: strings.ToUpper(form.Currency)})
			if err != nil {
				return err
			}
			form.Method = rec.RecommendedMethod
		}
		return quiet(a.payments.SubmitPaymentForm(ctx, form))
	}},
	"route": {help: "recommend a payment route", auth: true, run: func(ctx context.Context, a *app, args []string) error {
		fs := flag.NewFlagSet("route", flag.ContinueOnError)
		amount := fs.String("amount", "", "amount, e.g. 49.99")
		currency := fs.String("currency", "USD", "ISO currency code")
		method := fs.String("method", "", "preferred method")
		if err := parse(fs, args); err != nil {
			return err
		}
		amt, err := amountFlag(*amount)
		if err != nil {
			return err
		}
		return quiet(a.payments.OptimizeRouting(ctx, domain.RoutingRequest{Amount: amt, Currency: strings.ToUpper(*currency), Method: *method}))
	}},
	"verify": {help: "verify a payment: verify <payment-id>", auth: true, run: func(ctx context.Context, a *app, args []string) error {
		if len(args) != 1 {
			return errUsage
		}
		return quiet(a.payments.VerifyPayment(ctx, args[0]))
	}},
	"refund": {help: "refund a payment", auth: true, run: func(ctx context.Context, a *app, args []string) error {
		fs := flag.NewFlagSet("refund", flag.ContinueOnError)
		var req domain.RefundRequest
		fs.StringVar(&req.PaymentID, "id", "", "payment id")
		fs.StringVar(&req.Reason, "reason", "", "reason")
		amount := fs.String("amount", "", "partial amount (full refund when empty)")
		if err := parse(fs, args); err != nil {
			return err
		}
		if *amount != "" {
			amt, err := amountFlag(*amount)
			if err != nil {
				return err
			}
			req.Amount = amt
		}
		return quiet(a.payments.RefundPayment(ctx, req))
	}},
	"payments": {help: "list payments", auth: true, run: func(ctx context.Context, a *app, args []string) error {
		fs := flag.NewFlagSet("payments", flag.ContinueOnError)
		var f domain.PaymentFilter
		fs.StringVar(&f.Status, "status", "", "status filter")
		fs.StringVar(&f.Method, "method", "", "method filter")
		fs.StringVar(&f.CustomerID, "customer", "", "customer filter (admins only)")
		fs.IntVar(&f.Page, "page", 1, "page number")
		fs.IntVar(&f.Limit, "limit", domain.DefaultLimit, "page size")
		if err := parse(fs, args); err != nil {
			return err
		}
		return show(a.rest.ListPayments(ctx, f))
	}},
	"dashboard": {help: "show dashboard figures", auth: true, run: func(ctx context.Context, a *app, _ []string) error {
		return show(a.rest.DashboardMetrics(ctx))
	}},
	"alerts": {help: "list system alerts (admin)", auth: true, run: func(ctx context.Context, a *app, args []string) error {
		fs := flag.NewFlagSet("alerts", flag.ContinueOnError)
		status := fs.String("status", domain.AlertActive, "active, resolved or empty for all")
		q := pageFlags(fs)
		if err := parse(fs, args); err != nil {
			return err
		}
		return show(a.rest.SystemAlerts(ctx, *status, *q))
	}},
	"resolve": {help: "resolve an alert (admin): resolve <alert-id>", auth: true, run: func(ctx context.Context, a *app, args []string) error {
		if len(args) != 1 {
			return errUsage
		}
		return show(a.tools.ResolveAlert(ctx, args[0]))
	}},
	"audit": {help: "search the audit log (admin)", auth: true, run: func(ctx context.Context, a *app, args []string) error {
		fs := flag.NewFlagSet("audit", flag.ContinueOnError)
		var f domain.AuditFilter
		fs.StringVar(&f.Action, "action", "", "action filter")
		fs.StringVar(&f.Resource, "resource", "", "resource filter")
		fs.StringVar(&f.ActorID, "actor", "", "actor filter")
		fs.IntVar(&f.Page, "page", 1, "page number")
		fs.IntVar(&f.Limit, "limit", domain.DefaultLimit, "page size")
		if err := parse(fs, args); err != nil {
			return err
		}
		return show(a.rest.AuditLogs(ctx, f))
	}},
	"analytics": {help: "build an analytics report (admin)", auth: true, run: func(ctx context.Context, a *app, args []string) error {
		fs := flag.NewFlagSet("analytics", flag.ContinueOnError)
		kind := fs.String("type", "full", "revenue, payments, users, fraud or full")
		var q domain.AnalyticsQuery
		fs.StringVar(&q.Period, "period", "month", "day, week, month or year")
		fs.StringVar(&q.Currency, "currency", "", "currency filter")
		if err := parse(fs, args); err != nil {
			return err
		}
		return show(a.tools.GenerateAnalyticsReport(ctx, *kind, q))
	}},
	"tools": {help: "list backend tools", auth: true, run: func(ctx context.Context, a *app, _ []string) error {
		return show(a.tools.ListTools(ctx))
	}},
	"health": {help: "check the backend", run: func(ctx context.Context, a *app, _ []string) error {
		return show(a.rest.Health(ctx))
	}},
}
