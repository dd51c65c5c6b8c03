package peyflex

import "context"

// GetProfile returns the authenticated user's profile.
func (c *Client) GetProfile(ctx context.Context) (Response, error) {
	return c.get(ctx, "user/profile", nil)
}

// GetBalance returns the wallet balance.
func (c *Client) GetBalance(ctx context.Context) (Response, error) {
	return c.get(ctx, "user/balance", nil)
}
