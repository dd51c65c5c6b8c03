package peyflex

import "context"

// electricityIdentifier is the service identifier the electricity endpoints expect.
const electricityIdentifier = "electricity"

// MeterType is the billing type of an electricity meter.
type MeterType string

const (
	// MeterPrepaid is a prepaid meter. It is the default.
	MeterPrepaid MeterType = "prepaid"
	// MeterPostpaid is a postpaid meter.
	MeterPostpaid MeterType = "postpaid"
)

func (t MeterType) orDefault() MeterType {
	if t == "" {
		return MeterPrepaid
	}
	return t
}

type meterVerification struct {
	Identifier  string    `json:"identifier"`
	Provider    string    `json:"provider"`
	MeterNumber string    `json:"meter_number"`
	Type        MeterType `json:"type"`
}

type electricityPurchase struct {
	Provider    string    `json:"provider"`
	MeterNumber string    `json:"meter_number"`
	Amount      float64   `json:"amount"`
	Type        MeterType `json:"type"`
}

// GetElectricityPlans lists the electricity distribution companies.
func (c *Client) GetElectricityPlans(ctx context.Context) (Response, error) {
	return c.get(ctx, "electricity/plans", map[string]string{"identifier": electricityIdentifier})
}

// VerifyMeter looks up the customer behind a meter number. An empty
// meterType means MeterPrepaid.
func (c *Client) VerifyMeter(ctx context.Context, providerID, meterNumber string, meterType MeterType) (Response, error) {
	return c.post(ctx, "electricity/verify", meterVerification{
		Identifier:  electricityIdentifier,
		Provider:    providerID,
		MeterNumber: meterNumber,
		Type:        meterType.orDefault(),
	})
}

// PurchaseElectricity buys a token worth amount for the meter. An empty
// meterType means MeterPrepaid.
func (c *Client) PurchaseElectricity(ctx context.Context, providerID, meterNumber string, amount float64, meterType MeterType) (Response, error) {
	return c.post(ctx, "electricity/purchase", electricityPurchase{
		Provider:    providerID,
		MeterNumber: meterNumber,
		Amount:      amount,
		Type:        meterType.orDefault(),
	})
}
