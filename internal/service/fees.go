package service

import "github.com/shopspring/decimal"

type FeeSplit struct {
	PlatformFee  int64
	SellerAmount int64
}

// SplitFee divides an order amount between the platform and the seller.
// percent comes from config; nothing else in the codebase knows the rate.
func SplitFee(amount, percent int64) FeeSplit {
	fee := decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(percent)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()

	return FeeSplit{
		PlatformFee:  fee,
		SellerAmount: amount - fee,
	}
}
