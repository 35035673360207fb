package service

import (
	"context"
	"testing"

	"github.com/punchamoorthee/formgate/internal/models"
	"github.com/punchamoorthee/formgate/internal/paystack"
	"github.com/punchamoorthee/formgate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newApplicationFixture() (*ApplicationService, *ShareLedger, *testutil.MemStore) {
	db := testutil.NewMemStore()
	shares := NewShareLedger(db)
	apps := NewApplicationService(db, NewEligibilityEvaluator(db))
	return apps, shares, db
}

func TestSubmitForbiddenBeforeQuota(t *testing.T) {
	apps, shares, _ := newApplicationFixture()
	ctx := context.Background()
	phone := "+2348012345678"

	// 9 friend shares and 2 group shares: one short of the quota.
	for i := 0; i < 9; i++ {
		_, err := shares.RecordShare(ctx, phone, models.ShareKindFriend)
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := shares.RecordShare(ctx, phone, models.ShareKindGroup)
		require.NoError(t, err)
	}

	err := apps.Submit(ctx, phone, map[string]interface{}{"name": "A"})
	assert.ErrorIs(t, err, ErrForbidden)

	// The 10th friend share unlocks submission immediately.
	_, err = shares.RecordShare(ctx, phone, models.ShareKindFriend)
	require.NoError(t, err)
	assert.NoError(t, apps.Submit(ctx, phone, map[string]interface{}{"name": "A"}))
}

func TestSubmitRequiresPhone(t *testing.T) {
	apps, _, _ := newApplicationFixture()
	err := apps.Submit(context.Background(), "", map[string]interface{}{"name": "A"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestResubmissionPreservesUpgradedFlag(t *testing.T) {
	apps, _, db := newApplicationFixture()
	ctx := context.Background()
	phone := "+2348012345678"
	db.Shares[phone] = &models.ShareRecord{Phone: phone, Friends: 10, Groups: 2}

	require.NoError(t, apps.Submit(ctx, phone, map[string]interface{}{"name": "A"}))
	require.NoError(t, db.SetApplicationUpgraded(ctx, phone))

	require.NoError(t, apps.Submit(ctx, phone, map[string]interface{}{"name": "B"}))

	app, err := apps.Get(ctx, phone)
	require.NoError(t, err)
	assert.True(t, app.Upgraded)
	assert.Equal(t, "B", app.Form["name"])
}

func TestGetMissingApplication(t *testing.T) {
	apps, _, _ := newApplicationFixture()
	_, err := apps.Get(context.Background(), "+2348000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

// Full admission flow: share to quota, submit, pay with an upgrade, and
// confirm the verified payment flips the application's upgraded flag.
func TestShareSubmitPayUpgradeFlow(t *testing.T) {
	db := testutil.NewMemStore()
	provider := testutil.NewFakeProvider()
	shares := NewShareLedger(db)
	evaluator := NewEligibilityEvaluator(db)
	apps := NewApplicationService(db, evaluator)
	payments := NewPaymentLedger(db, provider, zap.NewNop(), "", upgradeThreshold)

	ctx := context.Background()
	phone := "+2348000000001"

	for i := 0; i < 10; i++ {
		_, err := shares.RecordShare(ctx, phone, models.ShareKindFriend)
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := shares.RecordShare(ctx, phone, models.ShareKindGroup)
		require.NoError(t, err)
	}

	elig, err := evaluator.Evaluate(ctx, phone)
	require.NoError(t, err)
	assert.True(t, elig.CanAccessForm)
	assert.False(t, elig.Paid)

	require.NoError(t, apps.Submit(ctx, phone, map[string]interface{}{"name": "A"}))

	resp, err := payments.Initiate(ctx, phone, 5000, "a@b.com", true)
	require.NoError(t, err)
	provider.VerifyState[resp.Reference] = &paystack.VerifyData{Status: "success", Amount: 500000}

	result, err := payments.Verify(ctx, resp.Reference)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, result.IsUpgrade)
	assert.Equal(t, int64(5000), result.Amount)

	app, err := apps.Get(ctx, phone)
	require.NoError(t, err)
	assert.True(t, app.Upgraded)

	elig, err = evaluator.Evaluate(ctx, phone)
	require.NoError(t, err)
	assert.True(t, elig.Paid)
}
