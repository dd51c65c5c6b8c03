package peyflex

import "context"

type airtimePurchase struct {
	Network string  `json:"network"`
	Phone   string  `json:"phone"`
	Amount  float64 `json:"amount"`
}

// GetAirtimeNetworks lists the networks airtime can be bought for.
func (c *Client) GetAirtimeNetworks(ctx context.Context) (Response, error) {
	return c.get(ctx, "airtime/networks", nil)
}

// PurchaseAirtime tops up phone on network (e.g. "mtn", "glo") with amount.
func (c *Client) PurchaseAirtime(ctx context.Context, network, phone string, amount float64) (Response, error) {
	return c.post(ctx, "airtime/purchase", airtimePurchase{
		Network: network,
		Phone:   phone,
		Amount:  amount,
	})
}
