package bip21

//go:generate go tool mockgen -source=validator.go -destination=internal/testutil/validatormock/validator.go -package=validatormock

import "context"

// AddressValidator checks the address of a decoded payment request,
// e.g. that it is well-formed and belongs to the expected network.
//
// The package treats addresses as opaque strings; validation is left to the host application.
type AddressValidator interface {
	ValidateAddress(ctx context.Context, addr string) error
}

// AddressValidatorFunc is an adapter to use ordinary functions as [AddressValidator].
type AddressValidatorFunc func(ctx context.Context, addr string) error

func (f AddressValidatorFunc) ValidateAddress(ctx context.Context, addr string) error {
	return f(ctx, addr)
}
