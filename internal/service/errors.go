package service

import "errors"

var (
	ErrShopNotFound  = errors.New("shop not found")
	ErrOrderNotFound = errors.New("order not found")
	ErrCodeNotFound  = errors.New("redemption code not found")
	ErrProofNotFound = errors.New("payment proof not found")

	ErrUnauthorized = errors.New("unauthorized")

	ErrUnknownProvider    = errors.New("unknown payment provider")
	ErrUnknownPlan        = errors.New("unknown subscription plan")
	ErrProviderInit       = errors.New("provider rejected initialize")
	ErrVerificationFailed = errors.New("payment verification failed")

	ErrCodeGeneration       = errors.New("could not generate a unique redemption code")
	ErrProofAlreadyReviewed = errors.New("payment proof already reviewed")
)
