package api

import (
	"context" // Request contexts

	"payportal/internal/domain" // Domain models
)

// ListWallets lists the current user's wallets. The backend answers with a
// bare array here; Page normalises it.
func (c *Client) ListWallets(ctx context.Context) (*domain.Page[domain.Wallet], error) {
	var out domain.Page[domain.Wallet]
	if err := c.http.Get(ctx, "/wallets", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetWallet fetches one wallet
func (c *Client) GetWallet(ctx context.Context, walletID string) (*domain.Wallet, error) {
	var out domain.Wallet
	if err := c.http.Get(ctx, "/wallets/"+id(walletID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Transfer moves funds between wallets
func (c *Client) Transfer(ctx context.Context, req domain.TransferRequest) (*domain.Transaction, error) {
	var out domain.Transaction
	if err := c.http.Post(ctx, "/wallets/transfer", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TopUp adds funds to a wallet
func (c *Client) TopUp(ctx context.Context, req domain.TopUpRequest) (*domain.Transaction, error) {
	var out domain.Transaction
	if err := c.http.Post(ctx, "/wallets/"+id(req.WalletID)+"/topup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WalletTransactions lists a wallet's transaction history
func (c *Client) WalletTransactions(ctx context.Context, walletID string, q domain.PageQuery) (*domain.Page[domain.Transaction], error) {
	var out domain.Page[domain.Transaction]
	if err := c.http.Get(ctx, "/wallets/"+id(walletID)+"/transactions", pageValues(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
