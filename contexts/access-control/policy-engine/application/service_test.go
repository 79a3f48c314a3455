package application_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/adapters/memory"
	application "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/application"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/entities"
	domainerrors "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/errors"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/valueobjects"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/ports"
)

const (
	ownerAddr    = "0x1111111111111111111111111111111111111111"
	accountAddr  = "0x2222222222222222222222222222222222222222"
	strangerAddr = "0x3333333333333333333333333333333333333333"
	writerAddr   = "0x4444444444444444444444444444444444444444"
)

func newTestService(t *testing.T) (application.Service, *memory.Store) {
	t.Helper()
	owner := mustPrincipal(t, ownerAddr)
	store := memory.NewStore(owner)
	return application.Service{
		Repo:        store,
		Heights:     store,
		Clock:       store,
		IDGenerator: store,
	}, store
}

func mustPrincipal(t *testing.T, value string) valueobjects.Principal {
	t.Helper()
	principal, err := valueobjects.NewPrincipal(value)
	require.NoError(t, err)
	return principal
}

func mustSessionID(t *testing.T, value string) valueobjects.SessionID {
	t.Helper()
	id, err := valueobjects.NewSessionID(value)
	require.NoError(t, err)
	return id
}

func pendingOutbox(t *testing.T, store *memory.Store) []ports.OutboxMessage {
	t.Helper()
	rows, err := store.ListPendingOutbox(context.Background(), 1000)
	require.NoError(t, err)
	return rows
}

func TestGrantEntitlementRequiresOwner(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	err := service.GrantEntitlement(ctx, mustPrincipal(t, strangerAddr), mustPrincipal(t, accountAddr), entities.LevelVip)
	require.ErrorIs(t, err, domainerrors.ErrNotOwner)

	level, err := service.GetEntitlement(ctx, mustPrincipal(t, accountAddr))
	require.NoError(t, err)
	require.Equal(t, entities.LevelNone, level)
	require.Empty(t, pendingOutbox(t, store), "failed guard must leave no audit trail")
}

func TestEntitlementGrantUpgradeAndRevoke(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	owner := mustPrincipal(t, ownerAddr)
	account := mustPrincipal(t, accountAddr)

	require.NoError(t, service.GrantEntitlement(ctx, owner, account, entities.LevelBasic))

	has, err := service.HasEntitlement(ctx, account, entities.LevelBasic)
	require.NoError(t, err)
	require.True(t, has)

	has, err = service.HasEntitlement(ctx, account, entities.LevelPremium)
	require.NoError(t, err)
	require.False(t, has)

	// Re-grant overwrites, it does not accumulate.
	require.NoError(t, service.GrantEntitlement(ctx, owner, account, entities.LevelVip))
	level, err := service.GetEntitlement(ctx, account)
	require.NoError(t, err)
	require.Equal(t, entities.LevelVip, level)

	require.NoError(t, service.RevokeEntitlement(ctx, owner, account))
	level, err = service.GetEntitlement(ctx, account)
	require.NoError(t, err)
	require.Equal(t, entities.LevelNone, level)
}

func TestGetEntitlementDefaultsToNone(t *testing.T) {
	service, _ := newTestService(t)

	level, err := service.GetEntitlement(context.Background(), mustPrincipal(t, strangerAddr))
	require.NoError(t, err)
	require.Equal(t, entities.LevelNone, level)
}

func TestCreateSessionStampsCurrentHeight(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()
	store.SetHeight(42)

	grant, err := service.CreateSession(
		ctx,
		mustPrincipal(t, ownerAddr),
		mustSessionID(t, "0x"+strings.Repeat("aa", 32)),
		mustEphPubKey(t, "0x02"+strings.Repeat("bb", 32)),
		mustScopeID(t, "0x"+strings.Repeat("cc", 32)),
		900,
	)
	require.NoError(t, err)
	require.Equal(t, uint64(42), grant.CreatedAtBlock)
	require.Equal(t, uint64(900), grant.ExpiresAtBlock)
	require.False(t, grant.IsRevoked)

	stored, found, err := service.GetSession(ctx, grant.SessionID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, grant, stored)
}

func TestCreateSessionRequiresOwner(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.CreateSession(
		context.Background(),
		mustPrincipal(t, strangerAddr),
		mustSessionID(t, "0x"+strings.Repeat("aa", 32)),
		mustEphPubKey(t, "0x02"+strings.Repeat("bb", 32)),
		mustScopeID(t, "0x"+strings.Repeat("cc", 32)),
		100,
	)
	require.ErrorIs(t, err, domainerrors.ErrNotOwner)
}

func TestRevokeSessionIsMonotonicAndRepeatable(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()
	owner := mustPrincipal(t, ownerAddr)
	sessionID := mustSessionID(t, "0x"+strings.Repeat("dd", 32))

	_, err := service.CreateSession(ctx, owner, sessionID,
		mustEphPubKey(t, "0x02"+strings.Repeat("ee", 32)),
		mustScopeID(t, "0x"+strings.Repeat("ff", 32)), 100)
	require.NoError(t, err)

	first, err := service.RevokeSession(ctx, owner, sessionID)
	require.NoError(t, err)
	require.True(t, first.IsRevoked)

	// A second revocation succeeds and emits its own audit event; the flag
	// never flips back.
	second, err := service.RevokeSession(ctx, owner, sessionID)
	require.NoError(t, err)
	require.True(t, second.IsRevoked)

	var revocations int
	for _, row := range pendingOutbox(t, store) {
		if row.EventType == ports.EventSessionRevoked {
			revocations++
		}
	}
	require.Equal(t, 2, revocations)
}

func TestRevokeSessionUnknownIDFails(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.RevokeSession(context.Background(), mustPrincipal(t, ownerAddr), mustSessionID(t, "0x"+strings.Repeat("99", 32)))
	require.ErrorIs(t, err, domainerrors.ErrSessionNotFound)
}

func TestSetAttributeBoundsCheckedBeforeAuthorization(t *testing.T) {
	service, store := newTestService(t)

	// Oversized input from an unauthorized caller fails on the bound, not on
	// the guard.
	err := service.SetAttribute(
		context.Background(),
		mustPrincipal(t, strangerAddr),
		mustPrincipal(t, accountAddr),
		"core",
		"tier",
		strings.Repeat("v", entities.MaxAttributeStringLength+1),
	)
	require.ErrorIs(t, err, domainerrors.ErrInputTooLong)
	require.Empty(t, pendingOutbox(t, store))
}

func TestSetAttributeAcceptsMaxLengthValue(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	account := mustPrincipal(t, accountAddr)
	value := strings.Repeat("v", entities.MaxAttributeStringLength)

	require.NoError(t, service.SetAttribute(ctx, account, account, "core", "bio", value))

	got, found, err := service.GetAttribute(ctx, account, "core", "bio")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, value, got)
}

func TestAttributeWriteAuthorization(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	owner := mustPrincipal(t, ownerAddr)
	account := mustPrincipal(t, accountAddr)
	stranger := mustPrincipal(t, strangerAddr)
	writer := mustPrincipal(t, writerAddr)

	// Self-writes and owner writes are always allowed.
	require.NoError(t, service.SetAttribute(ctx, account, account, "core", "tier", "basic"))
	require.NoError(t, service.SetAttribute(ctx, owner, account, "core", "region", "eu"))

	// Strangers are rejected until the subject delegates.
	err := service.SetAttribute(ctx, stranger, account, "core", "tier", "vip")
	require.ErrorIs(t, err, domainerrors.ErrNotAuthorized)

	require.NoError(t, service.AuthorizeWriter(ctx, account, writer))
	allowed, err := service.CanWrite(ctx, writer, account)
	require.NoError(t, err)
	require.True(t, allowed)
	require.NoError(t, service.SetAttribute(ctx, writer, account, "core", "tier", "premium"))

	// Delegation is directional: being writable by writer says nothing about
	// writer's own namespace.
	allowed, err = service.CanWrite(ctx, account, writer)
	require.NoError(t, err)
	require.False(t, allowed)

	require.NoError(t, service.RevokeWriter(ctx, account, writer))
	err = service.SetAttribute(ctx, writer, account, "core", "tier", "vip")
	require.ErrorIs(t, err, domainerrors.ErrNotAuthorized)
}

func TestRemoveAttributeAbsentIsNoop(t *testing.T) {
	service, store := newTestService(t)
	account := mustPrincipal(t, accountAddr)

	require.NoError(t, service.RemoveAttribute(context.Background(), account, account, "core", "missing"))
	rows := pendingOutbox(t, store)
	require.Len(t, rows, 1)
	require.Equal(t, ports.EventAttributeRemoved, rows[0].EventType)
}

func TestRevokeWriterNeverAuthorizedIsNoop(t *testing.T) {
	service, _ := newTestService(t)

	require.NoError(t, service.RevokeWriter(context.Background(), mustPrincipal(t, accountAddr), mustPrincipal(t, writerAddr)))
}

func TestSetRootRequiresAnchor(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	owner := mustPrincipal(t, ownerAddr)
	account := mustPrincipal(t, accountAddr)
	anchor := mustPrincipal(t, writerAddr)
	root := mustRoot(t, "0x"+strings.Repeat("ab", 32))

	err := service.SetRoot(ctx, anchor, account, root)
	require.ErrorIs(t, err, domainerrors.ErrNotAuthorizedAnchor)

	// The owner is an anchor without any registry entry.
	require.NoError(t, service.SetRoot(ctx, owner, account, root))

	require.NoError(t, service.AddAnchor(ctx, owner, anchor))
	authorized, err := service.IsAuthorizedAnchor(ctx, anchor)
	require.NoError(t, err)
	require.True(t, authorized)

	newRoot := mustRoot(t, "0x"+strings.Repeat("cd", 32))
	require.NoError(t, service.SetRoot(ctx, anchor, account, newRoot))
	got, found, err := service.GetRoot(ctx, account)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, newRoot, got)

	require.NoError(t, service.RemoveAnchor(ctx, owner, anchor))
	err = service.SetRoot(ctx, anchor, account, root)
	require.ErrorIs(t, err, domainerrors.ErrNotAuthorizedAnchor)
}

func TestAnchorRegistryIsOwnerGated(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	stranger := mustPrincipal(t, strangerAddr)
	anchor := mustPrincipal(t, writerAddr)

	require.ErrorIs(t, service.AddAnchor(ctx, stranger, anchor), domainerrors.ErrNotOwner)
	require.ErrorIs(t, service.RemoveAnchor(ctx, stranger, anchor), domainerrors.ErrNotOwner)

	authorized, err := service.IsAuthorizedAnchor(ctx, anchor)
	require.NoError(t, err)
	require.False(t, authorized)
}

func TestEveryMutationAppendsExactlyOneAuditEvent(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()
	owner := mustPrincipal(t, ownerAddr)
	account := mustPrincipal(t, accountAddr)

	require.NoError(t, service.GrantEntitlement(ctx, owner, account, entities.LevelPremium))
	require.NoError(t, service.SetAttribute(ctx, account, account, "core", "tier", "premium"))
	require.NoError(t, service.AddAnchor(ctx, owner, account))
	require.NoError(t, service.RevokeEntitlement(ctx, owner, account))

	rows := pendingOutbox(t, store)
	require.Len(t, rows, 4)
	require.Equal(t, []string{
		ports.EventEntitlementGranted,
		ports.EventAttributeSet,
		ports.EventAnchorAdded,
		ports.EventEntitlementRevoked,
	}, []string{rows[0].EventType, rows[1].EventType, rows[2].EventType, rows[3].EventType})
}

func mustEphPubKey(t *testing.T, value string) valueobjects.EphPubKey {
	t.Helper()
	key, err := valueobjects.NewEphPubKey(value)
	require.NoError(t, err)
	return key
}

func mustScopeID(t *testing.T, value string) valueobjects.ScopeID {
	t.Helper()
	id, err := valueobjects.NewScopeID(value)
	require.NoError(t, err)
	return id
}

func mustRoot(t *testing.T, value string) valueobjects.Root {
	t.Helper()
	root, err := valueobjects.NewRoot(value)
	require.NoError(t, err)
	return root
}
