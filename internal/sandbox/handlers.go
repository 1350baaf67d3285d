package sandbox

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging

	"payportal/internal/domain"     // Domain models
	"payportal/internal/middleware" // Context keys
)

// actorOf reads the authenticated caller set by the JWT middleware
func actorOf(c *gin.Context) Actor {
	return Actor{
		UserID:  c.GetString(middleware.UserIDKey),
		Role:    c.GetString(middleware.RoleKey),
		TokenID: c.GetString(middleware.TokenIDKey),
	}
}

// fail writes err as {"error": "..."} with the matching status
func fail(c *gin.Context, err error) {
	status, msg := httpStatus(err)
	if status == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(), // Route
			"error": err.Error(),  // Error message
		}).Error("Request failed")
	}
	c.JSON(status, gin.H{"error": msg})
}

// respond writes v or the error
func respond(c *gin.Context, status int, v any, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(status, v)
}

// bindPage parses page and limit query params
func bindPage(c *gin.Context) (domain.PageQuery, bool) {
	var q domain.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination parameters"})
		return q, false
	}
	return q, true
}

// RegisterHandler registers a new user
func RegisterHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterBody // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration details"})
			return
		}
		resp, err := svc.Register(c.Request.Context(), req)
		respond(c, http.StatusCreated, resp, err)
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.LoginRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
			return
		}
		resp, err := svc.Login(c.Request.Context(), req, c.ClientIP())
		respond(c, http.StatusOK, resp, err)
	}
}

// LogoutHandler revokes the caller's token
func LogoutHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Logout(c.Request.Context(), actorOf(c)); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// RefreshHandler swaps the caller's token for a new one
func RefreshHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := svc.Refresh(c.Request.Context(), actorOf(c))
		respond(c, http.StatusOK, resp, err)
	}
}

// MeHandler returns the caller's profile
func MeHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svc.Me(c.Request.Context(), actorOf(c))
		respond(c, http.StatusOK, user, err)
	}
}

// UpdateProfileHandler updates the caller's profile
func UpdateProfileHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.ProfileUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile update"})
			return
		}
		user, err := svc.UpdateProfile(c.Request.Context(), actorOf(c), req)
		respond(c, http.StatusOK, user, err)
	}
}

// ListUsersHandler lists all users with pagination (admin only)
func ListUsersHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := bindPage(c)
		if !ok {
			return
		}
		page, err := svc.ListUsers(c.Request.Context(), q)
		respond(c, http.StatusOK, page, err)
	}
}

// LoginAttemptsHandler lists recorded login attempts (admin only)
func LoginAttemptsHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := bindPage(c)
		if !ok {
			return
		}
		page, err := svc.LoginAttempts(c.Request.Context(), q)
		respond(c, http.StatusOK, page, err)
	}
}

// TokenStatsHandler summarises issued tokens (admin only)
func TokenStatsHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := svc.TokenStats(c.Request.Context())
		respond(c, http.StatusOK, st, err)
	}
}

// ListPaymentsHandler lists payments with filters and pagination
func ListPaymentsHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f domain.PaymentFilter
		if err := c.ShouldBindQuery(&f); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment filter"})
			return
		}
		page, err := svc.ListPayments(c.Request.Context(), actorOf(c), f)
		respond(c, http.StatusOK, page, err)
	}
}

// GetPaymentHandler returns one payment
func GetPaymentHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.GetPayment(c.Request.Context(), actorOf(c), c.Param("id"))
		respond(c, http.StatusOK, p, err)
	}
}

// CreatePaymentHandler creates a payment
func CreatePaymentHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.PaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment request"})
			return
		}
		p, err := svc.CreatePayment(c.Request.Context(), actorOf(c), req)
		respond(c, http.StatusCreated, p, err)
	}
}

// RefundPaymentHandler refunds the payment in the path
func RefundPaymentHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.RefundRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid refund request"})
				return
			}
		}
		req.PaymentID = c.Param("id")
		p, err := svc.RefundPayment(c.Request.Context(), actorOf(c), req)
		respond(c, http.StatusOK, p, err)
	}
}

// ListWalletsHandler returns the caller's wallets as a bare array
func ListWalletsHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallets, err := svc.ListWallets(c.Request.Context(), actorOf(c))
		respond(c, http.StatusOK, wallets, err)
	}
}

// GetWalletHandler returns one wallet
func GetWalletHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		w, err := svc.GetWallet(c.Request.Context(), actorOf(c), c.Param("id"))
		respond(c, http.StatusOK, w, err)
	}
}

// TransferHandler transfers funds between wallets
func TransferHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.TransferRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transfer request"})
			return
		}
		tx, err := svc.Transfer(c.Request.Context(), actorOf(c), req)
		respond(c, http.StatusOK, tx, err)
	}
}

// TopUpHandler deposits funds into the wallet in the path
func TopUpHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domain.TopUpRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		req.WalletID = c.Param("id")
		tx, err := svc.TopUp(c.Request.Context(), actorOf(c), req)
		respond(c, http.StatusOK, tx, err)
	}
}

// WalletTransactionsHandler returns paginated transaction history
func WalletTransactionsHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := bindPage(c)
		if !ok {
			return
		}
		page, err := svc.WalletTransactions(c.Request.Context(), actorOf(c), c.Param("id"), q)
		respond(c, http.StatusOK, page, err)
	}
}
