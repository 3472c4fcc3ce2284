package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/estatedocs/internal/domain"
)

func TestSnapshotStorePutGet(t *testing.T) {
	d := openTestDB(t)
	sessions := NewSessionStore(d, time.Hour)
	snaps := NewSnapshotStore(d)
	ctx := context.Background()

	sess, err := sessions.Create(ctx)
	require.NoError(t, err)

	locs := []domain.Locator{
		{ID: "L1", Estate: domain.EstateLima, Name: "Acme", LotArea: 1200, Contracts: []domain.Contract{
			{ID: "C1", Type: domain.ContractLOI, FileName: "loi.pdf", DocumentURL: "https://drive/x"},
		}},
		{ID: "L2", Estate: domain.EstateLima, Name: "Beta", Contracts: []domain.Contract{}},
	}
	require.NoError(t, snaps.Put(ctx, sess.Token, domain.EstateLima, locs))

	snap, err := snaps.Get(ctx, sess.Token)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, domain.EstateLima, snap.Estate)
	assert.Equal(t, locs, snap.Locators)
}

func TestSnapshotStorePutReplaces(t *testing.T) {
	d := openTestDB(t)
	sessions := NewSessionStore(d, time.Hour)
	snaps := NewSnapshotStore(d)
	ctx := context.Background()

	sess, err := sessions.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, snaps.Put(ctx, sess.Token, domain.EstateLima, []domain.Locator{{ID: "L1"}}))
	require.NoError(t, snaps.Put(ctx, sess.Token, domain.EstateTari, nil))

	snap, err := snaps.Get(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.EstateTari, snap.Estate)
	assert.NotNil(t, snap.Locators)
	assert.Empty(t, snap.Locators)
}

func TestSnapshotStoreGetMissing(t *testing.T) {
	snaps := NewSnapshotStore(openTestDB(t))

	snap, err := snaps.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSnapshotStoreRequiresSession(t *testing.T) {
	snaps := NewSnapshotStore(openTestDB(t))

	err := snaps.Put(context.Background(), "no-such-session", domain.EstateLima, nil)
	assert.Error(t, err)
}

func TestSnapshotStoreDelete(t *testing.T) {
	d := openTestDB(t)
	sessions := NewSessionStore(d, time.Hour)
	snaps := NewSnapshotStore(d)
	ctx := context.Background()

	sess, err := sessions.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, snaps.Put(ctx, sess.Token, domain.EstateLima, nil))

	require.NoError(t, snaps.Delete(ctx, sess.Token))

	snap, err := snaps.Get(ctx, sess.Token)
	require.NoError(t, err)
	assert.Nil(t, snap)
}
