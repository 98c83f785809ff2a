package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"shoplink/internal/client"
	"shoplink/internal/dto"
	"shoplink/internal/model"
)

func (e *testEnv) submitOrderProof(t *testing.T, shopID, orderID uint, amount int64) *model.PaymentProof {
	t.Helper()

	proof, err := e.proofs.Submit(context.Background(), &dto.SubmitProofRequest{
		PaymentType:   model.PaymentTypeOrder,
		ReferenceID:   orderID,
		ShopID:        shopID,
		Amount:        amount,
		ProofImageURL: "https://cdn.example/proof.jpg",
	})
	if err != nil {
		t.Fatalf("submit proof: %v", err)
	}
	return proof
}

func TestSubmitProof(t *testing.T) {
	t.Run("order proof defaults amount to order total", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		e := newTestEnv(t, ctrl)
		shop := e.seedShop(t, "seller-1")
		order := e.seedOrder(t, shop.ID, 10000)

		proof, err := e.proofs.Submit(context.Background(), &dto.SubmitProofRequest{
			PaymentType: model.PaymentTypeOrder,
			ReferenceID: order.ID,
			ShopID:      shop.ID,
		})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if proof.Amount != 10000 || proof.Status != model.ProofStatusPending {
			t.Fatalf("unexpected proof amount=%d status=%q", proof.Amount, proof.Status)
		}
	})

	t.Run("order must belong to shop", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		e := newTestEnv(t, ctrl)
		shopA := e.seedShop(t, "seller-1")
		shopB := e.seedShop(t, "seller-2")
		order := e.seedOrder(t, shopA.ID, 10000)

		_, err := e.proofs.Submit(context.Background(), &dto.SubmitProofRequest{
			PaymentType: model.PaymentTypeOrder,
			ReferenceID: order.ID,
			ShopID:      shopB.ID,
		})
		if !errors.Is(err, ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("subscription proof needs an existing shop", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		e := newTestEnv(t, ctrl)

		_, err := e.proofs.Submit(context.Background(), &dto.SubmitProofRequest{
			PaymentType: model.PaymentTypeSubscription,
			ReferenceID: 999,
			ShopID:      999,
			Amount:      planAmounts["basic"],
		})
		if !errors.Is(err, ErrShopNotFound) {
			t.Fatalf("expected ErrShopNotFound, got %v", err)
		}
	})
}

func TestReviewOrderProof_Approve(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := newTestEnv(t, ctrl)
	shop := e.seedShop(t, "seller-1")
	order := e.seedOrder(t, shop.ID, 10000)
	proof := e.submitOrderProof(t, shop.ID, order.ID, 10000)

	if err := e.proofs.Review(context.Background(), proof.ID, true, "admin-1"); err != nil {
		t.Fatalf("review: %v", err)
	}

	reviewed, _ := e.proofRepo.FindByID(context.Background(), proof.ID)
	if reviewed.Status != model.ProofStatusApproved {
		t.Fatalf("proof status %q, want approved", reviewed.Status)
	}
	if reviewed.ReviewedBy == nil || *reviewed.ReviewedBy != "admin-1" {
		t.Fatal("reviewer not recorded")
	}

	updated, _ := e.orderRepo.FindByID(context.Background(), order.ID)
	if updated.PaymentStatus != model.PaymentStatusPaid {
		t.Fatal("approved proof did not mark the order paid")
	}
	if n := e.codeCount(t, order.ID); n != 1 {
		t.Fatalf("%d redemption codes, want 1", n)
	}

	payment, err := e.paymentRepo.FindSuccessfulByOrderID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("manual payment row missing: %v", err)
	}
	if payment.Provider != "manual" || payment.SellerAmount != 9500 {
		t.Fatalf("unexpected manual payment provider=%q seller=%d", payment.Provider, payment.SellerAmount)
	}

	balance, _ := e.walletBalance(t, shop.ID)
	if balance != 9500 {
		t.Fatalf("wallet balance %d, want 9500", balance)
	}
}

func TestReviewOrderProof_SellerCanReview(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := newTestEnv(t, ctrl)
	shop := e.seedShop(t, "seller-1")
	order := e.seedOrder(t, shop.ID, 10000)
	proof := e.submitOrderProof(t, shop.ID, order.ID, 10000)

	if err := e.proofs.Review(context.Background(), proof.ID, true, "seller-1"); err != nil {
		t.Fatalf("seller review: %v", err)
	}

	updated, _ := e.orderRepo.FindByID(context.Background(), order.ID)
	if updated.PaymentStatus != model.PaymentStatusPaid {
		t.Fatal("seller approval did not mark the order paid")
	}
}

func TestReviewProof_Unauthorized(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := newTestEnv(t, ctrl)
	shop := e.seedShop(t, "seller-1")
	order := e.seedOrder(t, shop.ID, 10000)
	proof := e.submitOrderProof(t, shop.ID, order.ID, 10000)

	err := e.proofs.Review(context.Background(), proof.ID, true, "random-user")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	reloaded, _ := e.proofRepo.FindByID(context.Background(), proof.ID)
	if reloaded.Status != model.ProofStatusPending {
		t.Fatal("unauthorized review changed proof status")
	}
}

func TestReviewProof_Reject(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := newTestEnv(t, ctrl)
	shop := e.seedShop(t, "seller-1")
	order := e.seedOrder(t, shop.ID, 10000)
	proof := e.submitOrderProof(t, shop.ID, order.ID, 10000)

	if err := e.proofs.Review(context.Background(), proof.ID, false, "admin-1"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	reviewed, _ := e.proofRepo.FindByID(context.Background(), proof.ID)
	if reviewed.Status != model.ProofStatusRejected {
		t.Fatalf("proof status %q, want rejected", reviewed.Status)
	}

	updated, _ := e.orderRepo.FindByID(context.Background(), order.ID)
	if updated.PaymentStatus != model.PaymentStatusPending {
		t.Fatal("rejection mutated the order")
	}
	if _, earned := e.walletBalance(t, shop.ID); earned != 0 {
		t.Fatal("rejection credited the wallet")
	}
}

func TestReviewProof_AlreadyReviewed(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := newTestEnv(t, ctrl)
	shop := e.seedShop(t, "seller-1")
	order := e.seedOrder(t, shop.ID, 10000)
	proof := e.submitOrderProof(t, shop.ID, order.ID, 10000)

	if err := e.proofs.Review(context.Background(), proof.ID, true, "admin-1"); err != nil {
		t.Fatalf("first review: %v", err)
	}
	err := e.proofs.Review(context.Background(), proof.ID, true, "admin-1")
	if !errors.Is(err, ErrProofAlreadyReviewed) {
		t.Fatalf("expected ErrProofAlreadyReviewed, got %v", err)
	}

	balance, _ := e.walletBalance(t, shop.ID)
	if balance != 9500 {
		t.Fatalf("wallet balance %d after replayed approval, want 9500", balance)
	}
}

func TestReviewOrderProof_FailedApplyLeavesProofPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := newTestEnv(t, ctrl)
	shop := e.seedShop(t, "seller-1")
	order := e.seedOrder(t, shop.ID, 10000)
	proof := e.submitOrderProof(t, shop.ID, order.ID, 10000)

	// Break the store mid-apply: the manual payment lands and the order is
	// marked paid, but ensuring the redemption code fails.
	if err := e.db.Migrator().DropTable(&model.RedemptionCode{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	if err := e.proofs.Review(context.Background(), proof.ID, true, "admin-1"); err == nil {
		t.Fatal("review must surface the apply failure")
	}

	reloaded, _ := e.proofRepo.FindByID(context.Background(), proof.ID)
	if reloaded.Status != model.ProofStatusPending {
		t.Fatalf("proof status %q after failed apply, want pending", reloaded.Status)
	}
	if _, earned := e.walletBalance(t, shop.ID); earned != 0 {
		t.Fatal("failed apply credited the wallet")
	}

	// Store recovers; the retry must finish the partial apply.
	if err := client.Migrate(e.db); err != nil {
		t.Fatalf("restore table: %v", err)
	}
	if err := e.proofs.Review(context.Background(), proof.ID, true, "admin-1"); err != nil {
		t.Fatalf("retry after recovery: %v", err)
	}

	reloaded, _ = e.proofRepo.FindByID(context.Background(), proof.ID)
	if reloaded.Status != model.ProofStatusApproved {
		t.Fatalf("proof status %q after retry, want approved", reloaded.Status)
	}

	updated, _ := e.orderRepo.FindByID(context.Background(), order.ID)
	if updated.PaymentStatus != model.PaymentStatusPaid {
		t.Fatal("retry did not mark the order paid")
	}
	if n := e.codeCount(t, order.ID); n != 1 {
		t.Fatalf("%d redemption codes after retry, want 1", n)
	}

	balance, _ := e.walletBalance(t, shop.ID)
	if balance != 9500 {
		t.Fatalf("wallet balance %d after retry, want 9500 exactly once", balance)
	}

	var paymentCount int64
	e.db.Model(&model.Payment{}).Where("order_id = ?", order.ID).Count(&paymentCount)
	if paymentCount != 1 {
		t.Fatalf("%d payment rows after retry, want the single reused manual row", paymentCount)
	}
}

func TestReviewProof_RejectedCannotBeApproved(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := newTestEnv(t, ctrl)
	shop := e.seedShop(t, "seller-1")
	order := e.seedOrder(t, shop.ID, 10000)
	proof := e.submitOrderProof(t, shop.ID, order.ID, 10000)

	if err := e.proofs.Review(context.Background(), proof.ID, false, "admin-1"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	err := e.proofs.Review(context.Background(), proof.ID, true, "admin-1")
	if !errors.Is(err, ErrProofAlreadyReviewed) {
		t.Fatalf("expected ErrProofAlreadyReviewed, got %v", err)
	}

	updated, _ := e.orderRepo.FindByID(context.Background(), order.ID)
	if updated.PaymentStatus != model.PaymentStatusPending {
		t.Fatal("approval after rejection mutated the order")
	}
	if _, earned := e.walletBalance(t, shop.ID); earned != 0 {
		t.Fatal("approval after rejection credited the wallet")
	}
}

func TestReviewOrderProof_OrderAlreadyPaid(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := newTestEnv(t, ctrl)
	shop := e.seedShop(t, "seller-1")
	order := e.paidOrder(t, shop.ID, 10000)
	proof := e.submitOrderProof(t, shop.ID, order.ID, 10000)

	err := e.proofs.Review(context.Background(), proof.ID, true, "admin-1")
	if err == nil {
		t.Fatal("approving a proof for an already-paid order must fail")
	}

	// Only the original provider credit may exist.
	balance, _ := e.walletBalance(t, shop.ID)
	if balance != 9500 {
		t.Fatalf("wallet balance %d, want 9500", balance)
	}
}

func TestReviewSubscriptionProof_ActivatesShop(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := newTestEnv(t, ctrl)
	shop := e.seedShop(t, "seller-1")

	proof, err := e.proofs.Submit(context.Background(), &dto.SubmitProofRequest{
		PaymentType: model.PaymentTypeSubscription,
		ReferenceID: shop.ID,
		ShopID:      shop.ID,
		Amount:      planAmounts["pro"],
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := e.proofs.Review(context.Background(), proof.ID, true, "admin-1"); err != nil {
		t.Fatalf("review: %v", err)
	}

	sub, err := e.subRepo.GetByShopID(context.Background(), shop.ID)
	if err != nil {
		t.Fatalf("subscription missing: %v", err)
	}
	if sub.Plan != "pro" || sub.Status != model.SubscriptionStatusActive {
		t.Fatalf("unexpected subscription plan=%q status=%q", sub.Plan, sub.Status)
	}

	updatedShop, _ := e.shopRepo.FindByID(context.Background(), shop.ID)
	if !updatedShop.IsActive {
		t.Fatal("shop not activated")
	}
}

func TestListPendingProofs(t *testing.T) {
	ctrl := gomock.NewController(t)
	e := newTestEnv(t, ctrl)
	shop := e.seedShop(t, "seller-1")
	order := e.seedOrder(t, shop.ID, 10000)
	e.submitOrderProof(t, shop.ID, order.ID, 10000)

	proofs, err := e.proofs.ListPending(context.Background(), shop.ID, "seller-1")
	if err != nil {
		t.Fatalf("list as owner: %v", err)
	}
	if len(proofs) != 1 {
		t.Fatalf("%d pending proofs, want 1", len(proofs))
	}

	if _, err := e.proofs.ListPending(context.Background(), shop.ID, "admin-1"); err != nil {
		t.Fatalf("list as admin: %v", err)
	}

	if _, err := e.proofs.ListPending(context.Background(), shop.ID, "stranger"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for stranger, got %v", err)
	}
}
