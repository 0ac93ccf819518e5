package repository

import (
	"testing"
	"time"

	"github.com/aipath-api/internal/constants"
	"github.com/aipath-api/internal/models"

	"github.com/shopspring/decimal"
)

func newTestPayout(sessionID string) *models.AffiliatePayout {
	return &models.AffiliatePayout{
		ReferrerID:      "r1",
		UserID:          "u1",
		CourseID:        "c1",
		PayoutAmount:    models.NewMoneyFromDecimal(decimal.RequireFromString("4.999")),
		PaymentAmount:   models.NewMoneyFromDecimal(decimal.RequireFromString("49.99")),
		Currency:        "usd",
		PaymentDate:     time.Now().UTC(),
		StripeSessionID: sessionID,
		Status:          constants.AffiliatePayoutStatusPending,
	}
}

func TestAffiliatePayoutCreateIfAbsentDedupBySession(t *testing.T) {
	db := setupRepositoryTestDB(t, "payout_dedup")
	repo := NewAffiliatePayoutRepository(db)

	created, err := repo.CreateIfAbsent(newTestPayout("cs_1"))
	if err != nil {
		t.Fatalf("create payout failed: %v", err)
	}
	if !created {
		t.Fatalf("first payout should be created")
	}
	created, err = repo.CreateIfAbsent(newTestPayout("cs_1"))
	if err != nil {
		t.Fatalf("replay payout failed: %v", err)
	}
	if created {
		t.Fatalf("replayed payout should be skipped")
	}

	count, err := repo.CountBySessionID("cs_1")
	if err != nil {
		t.Fatalf("count payout failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("payout count want 1 got %d", count)
	}

	payout, err := repo.GetBySessionID("cs_1")
	if err != nil || payout == nil {
		t.Fatalf("get payout failed: %v", err)
	}
	if payout.PayoutAmount.String() != "4.999" {
		t.Fatalf("payout amount want 4.999 got %s", payout.PayoutAmount.String())
	}
}

func TestAffiliatePayoutUpdateStatusGuardsCurrentStatus(t *testing.T) {
	db := setupRepositoryTestDB(t, "payout_status")
	repo := NewAffiliatePayoutRepository(db)
	payout := newTestPayout("cs_2")
	if _, err := repo.CreateIfAbsent(payout); err != nil {
		t.Fatalf("create payout failed: %v", err)
	}

	now := time.Now()
	ok, err := repo.UpdateStatus(payout.ID, constants.AffiliatePayoutStatusPending, constants.AffiliatePayoutStatusPaid, "bank transfer", &now)
	if err != nil || !ok {
		t.Fatalf("update status failed: ok=%v err=%v", ok, err)
	}
	ok, err = repo.UpdateStatus(payout.ID, constants.AffiliatePayoutStatusPending, constants.AffiliatePayoutStatusCancelled, "", nil)
	if err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if ok {
		t.Fatalf("update from stale status should not apply")
	}

	list, total, err := repo.List(PayoutListFilter{Status: constants.AffiliatePayoutStatusPaid, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list payouts failed: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].StatusNote != "bank transfer" {
		t.Fatalf("unexpected payout list: total=%d list=%+v", total, list)
	}
}
