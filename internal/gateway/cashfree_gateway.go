package gateway

// CashfreeConfig holds the decrypted Cashfree credentials for one tenant.
// Configuration rows for cashfree are accepted so tenants can stage keys ahead
// of the rollout, but no adapter exists yet.
type CashfreeConfig struct {
	AppID          string
	SecretKey      string
	WebhookSecret  string
	Environment    string
	OrganizationID string
}

// NewCashfreeGateway fails fast: the cashfree adapter is registered but not
// implemented. A silent no-op here would swallow real payments, so construction
// refuses with an actionable error instead.
func NewCashfreeGateway(config *CashfreeConfig) (PaymentGateway, error) {
	return nil, &UnsupportedError{
		Provider: "cashfree",
		Hint:     "add the cashfree-pg SDK adapter or switch the organization's gateway to razorpay or stripe",
	}
}
