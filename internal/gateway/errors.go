package gateway

import "fmt"

// NotConfiguredError means neither a tenant configuration row nor an
// environment fallback exists for the requested provider. Requires operator
// action; never retried.
type NotConfiguredError struct {
	OrganizationID string
	Provider       string // empty when the default lookup failed
}

func (e *NotConfiguredError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("no default payment gateway configured for organization %s", e.OrganizationID)
	}
	return fmt.Sprintf("payment gateway %q not configured for organization %s", e.Provider, e.OrganizationID)
}

// RequestError means the external provider rejected the request. The provider's
// human-readable reason is preserved for diagnostics; decrypted secrets are
// never interpolated into it.
type RequestError struct {
	Provider string
	Op       string
	Reason   string
	Err      error
}

func (e *RequestError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s rejected: %s", e.Op, e.Provider, e.Reason)
	}
	return fmt.Sprintf("%s: %s rejected the request", e.Op, e.Provider)
}

func (e *RequestError) Unwrap() error { return e.Err }

// NotFoundError means the provider has no record of the referenced order or
// payment. Distinct from RequestError so callers can tell "does not exist"
// from "was rejected".
type NotFoundError struct {
	Provider string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s has no record of %q", e.Provider, e.ID)
}

// UnsupportedError means the provider key is recognized but carries no adapter
// implementation. A deployment capability gap, not a tenant data problem.
type UnsupportedError struct {
	Provider string
	Hint     string
}

func (e *UnsupportedError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("payment gateway %q is not implemented: %s", e.Provider, e.Hint)
	}
	return fmt.Sprintf("payment gateway %q is not implemented", e.Provider)
}
