package http

import (
	"github.com/storefront-api/internal/application/auth"
	"github.com/storefront-api/internal/infrastructure/blob"
	"github.com/storefront-api/internal/infrastructure/resend"
	"github.com/storefront-api/internal/infrastructure/synctoken"
)

// Deps holds all infrastructure dependencies for the router. Application
// services are constructed inside NewRouter from these; main only wires
// infrastructure.
type Deps struct {
	Blob *blob.Store
	// Mailer delivers one-time codes and admin test emails.
	Mailer resend.Mailer
	// OTPLimiter caps code issuance per address. Nil disables the cap
	// (no ledger table configured); login still works.
	OTPLimiter auth.OTPLimiter
	// SyncTokens exchanges sessions for cart-sync access tokens.
	SyncTokens *synctoken.Provider
}
