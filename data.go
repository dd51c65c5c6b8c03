package peyflex

import "context"

type dataPurchase struct {
	Network string `json:"network"`
	Phone   string `json:"phone"`
	Plan    string `json:"plan"`
}

// GetDataNetworks lists the networks data bundles can be bought for.
func (c *Client) GetDataNetworks(ctx context.Context) (Response, error) {
	return c.get(ctx, "data/networks", nil)
}

// GetDataPlans lists the data plans of a network (e.g. "mtn_sme_data").
func (c *Client) GetDataPlans(ctx context.Context, networkID string) (Response, error) {
	return c.get(ctx, "data/plans", map[string]string{"network": networkID})
}

// PurchaseData buys the data plan planID, as listed by GetDataPlans, for phone.
func (c *Client) PurchaseData(ctx context.Context, networkID, phone, planID string) (Response, error) {
	return c.post(ctx, "data/purchase", dataPurchase{
		Network: networkID,
		Phone:   phone,
		Plan:    planID,
	})
}
