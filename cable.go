package peyflex

import "context"

type cableVerification struct {
	Provider  string `json:"provider"`
	IUCNumber string `json:"iuc_number"`
}

type cablePurchase struct {
	Provider  string `json:"provider"`
	IUCNumber string `json:"iuc_number"`
	Plan      string `json:"plan"`
}

// GetCableProviders lists the cable TV providers.
func (c *Client) GetCableProviders(ctx context.Context) (Response, error) {
	return c.get(ctx, "cable/providers", nil)
}

// VerifyCable looks up the customer behind an IUC/smartcard number.
func (c *Client) VerifyCable(ctx context.Context, providerID, iucNumber string) (Response, error) {
	return c.post(ctx, "cable/verify", cableVerification{
		Provider:  providerID,
		IUCNumber: iucNumber,
	})
}

// PurchaseCable subscribes the IUC number to planID with providerID (e.g. "dstv").
func (c *Client) PurchaseCable(ctx context.Context, providerID, iucNumber, planID string) (Response, error) {
	return c.post(ctx, "cable/purchase", cablePurchase{
		Provider:  providerID,
		IUCNumber: iucNumber,
		Plan:      planID,
	})
}
