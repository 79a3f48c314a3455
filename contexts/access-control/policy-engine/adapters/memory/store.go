package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/entities"
	domainerrors "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/errors"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/valueobjects"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/ports"
	contractsv1 "github.com/shravan-hub/arkavo-node/contracts/gen/events/v1"

	"github.com/google/uuid"
)

type attributeKey struct {
	Account   valueobjects.Principal
	Namespace string
	Key       string
}

type writerKey struct {
	Subject valueobjects.Principal
	Writer  valueobjects.Principal
}

type outboxRow struct {
	ports.OutboxMessage
	Seq         uint64
	PublishedAt *time.Time
}

// Store is an in-memory adapter implementing the repository, outbox, clock,
// height-source and id-generator ports. It is intended for tests and local
// development wiring; the host ledger height is settable from tests.
type Store struct {
	mu sync.RWMutex

	owner        valueobjects.Principal
	entitlements map[valueobjects.Principal]entities.EntitlementLevel
	sessions     map[valueobjects.SessionID]entities.SessionGrant
	attributes   map[attributeKey]string
	writers      map[writerKey]struct{}
	anchors      map[valueobjects.Principal]struct{}
	roots        map[valueobjects.Principal]valueobjects.Root

	outbox map[string]outboxRow
	seq    uint64
	height uint64
}

// NewStore builds an in-memory adapter with the owner fixed at construction,
// mirroring the deploy-time owner binding of the durable store.
func NewStore(owner valueobjects.Principal) *Store {
	return &Store{
		owner:        owner,
		entitlements: make(map[valueobjects.Principal]entities.EntitlementLevel),
		sessions:     make(map[valueobjects.SessionID]entities.SessionGrant),
		attributes:   make(map[attributeKey]string),
		writers:      make(map[writerKey]struct{}),
		anchors:      make(map[valueobjects.Principal]struct{}),
		roots:        make(map[valueobjects.Principal]valueobjects.Root),
		outbox:       make(map[string]outboxRow),
	}
}

func (s *Store) Owner(_ context.Context) (valueobjects.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner, nil
}

func (s *Store) GetEntitlement(_ context.Context, account valueobjects.Principal) (entities.EntitlementLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entitlements[account], nil
}

func (s *Store) PutEntitlement(_ context.Context, input ports.PutEntitlementInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entitlements[input.Account] = input.Level
	return s.appendOutbox(input.Audit, ports.EventEntitlementGranted, input.Account.String(), map[string]string{
		"account": input.Account.String(),
		"level":   input.Level.String(),
	})
}

func (s *Store) DeleteEntitlement(_ context.Context, input ports.DeleteEntitlementInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entitlements, input.Account)
	return s.appendOutbox(input.Audit, ports.EventEntitlementRevoked, input.Account.String(), map[string]string{
		"account": input.Account.String(),
	})
}

func (s *Store) GetSession(_ context.Context, sessionID valueobjects.SessionID) (entities.SessionGrant, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grant, ok := s.sessions[sessionID]
	return grant, ok, nil
}

func (s *Store) PutSession(_ context.Context, input ports.PutSessionInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[input.Grant.SessionID] = input.Grant
	return s.appendOutbox(input.Audit, ports.EventSessionCreated, input.Grant.SessionID.String(), map[string]any{
		"session_id":       input.Grant.SessionID.String(),
		"scope_id":         input.Grant.ScopeID.String(),
		"expires_at_block": input.Grant.ExpiresAtBlock,
		"created_at_block": input.Grant.CreatedAtBlock,
	})
}

func (s *Store) MarkSessionRevoked(_ context.Context, input ports.RevokeSessionInput) (entities.SessionGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, ok := s.sessions[input.SessionID]
	if !ok {
		return entities.SessionGrant{}, domainerrors.ErrSessionNotFound
	}
	grant.IsRevoked = true
	s.sessions[input.SessionID] = grant
	if err := s.appendOutbox(input.Audit, ports.EventSessionRevoked, input.SessionID.String(), map[string]string{
		"session_id": input.SessionID.String(),
	}); err != nil {
		return entities.SessionGrant{}, err
	}
	return grant, nil
}

func (s *Store) GetAttribute(
	_ context.Context,
	account valueobjects.Principal,
	namespace string,
	key string,
) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.attributes[attributeKey{Account: account, Namespace: namespace, Key: key}]
	return value, ok, nil
}

func (s *Store) PutAttribute(_ context.Context, input ports.PutAttributeInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := input.Record
	s.attributes[attributeKey{Account: record.Account, Namespace: record.Namespace, Key: record.Key}] = record.Value
	return s.appendOutbox(input.Audit, ports.EventAttributeSet, record.Account.String(), map[string]string{
		"account":   record.Account.String(),
		"namespace": record.Namespace,
		"key":       record.Key,
		"value":     record.Value,
	})
}

func (s *Store) DeleteAttribute(_ context.Context, input ports.DeleteAttributeInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.attributes, attributeKey{Account: input.Account, Namespace: input.Namespace, Key: input.Key})
	return s.appendOutbox(input.Audit, ports.EventAttributeRemoved, input.Account.String(), map[string]string{
		"account":   input.Account.String(),
		"namespace": input.Namespace,
		"key":       input.Key,
	})
}

func (s *Store) IsWriterAuthorized(_ context.Context, subject, writer valueobjects.Principal) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.writers[writerKey{Subject: subject, Writer: writer}]
	return ok, nil
}

func (s *Store) PutWriterAuthorization(_ context.Context, input ports.WriterAuthorizationInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writers[writerKey{Subject: input.Subject, Writer: input.Writer}] = struct{}{}
	return s.appendOutbox(input.Audit, ports.EventWriterAuthorized, input.Subject.String(), map[string]string{
		"account": input.Subject.String(),
		"writer":  input.Writer.String(),
	})
}

func (s *Store) DeleteWriterAuthorization(_ context.Context, input ports.WriterAuthorizationInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.writers, writerKey{Subject: input.Subject, Writer: input.Writer})
	return s.appendOutbox(input.Audit, ports.EventWriterRevoked, input.Subject.String(), map[string]string{
		"account": input.Subject.String(),
		"writer":  input.Writer.String(),
	})
}

func (s *Store) IsAnchorRegistered(_ context.Context, anchor valueobjects.Principal) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.anchors[anchor]
	return ok, nil
}

func (s *Store) PutAnchor(_ context.Context, input ports.AnchorInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.anchors[input.Anchor] = struct{}{}
	return s.appendOutbox(input.Audit, ports.EventAnchorAdded, input.Anchor.String(), map[string]string{
		"anchor": input.Anchor.String(),
	})
}

func (s *Store) DeleteAnchor(_ context.Context, input ports.AnchorInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.anchors, input.Anchor)
	return s.appendOutbox(input.Audit, ports.EventAnchorRemoved, input.Anchor.String(), map[string]string{
		"anchor": input.Anchor.String(),
	})
}

func (s *Store) GetRoot(_ context.Context, account valueobjects.Principal) (valueobjects.Root, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	root, ok := s.roots[account]
	return root, ok, nil
}

func (s *Store) PutRoot(_ context.Context, input ports.PutRootInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.roots[input.Record.Account] = input.Record.Root
	return s.appendOutbox(input.Audit, ports.EventRootUpdated, input.Record.Account.String(), map[string]string{
		"account": input.Record.Account.String(),
		"root":    input.Record.Root.String(),
	})
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows := make([]outboxRow, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.PublishedAt == nil {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Seq < rows[j].Seq
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.OutboxMessage)
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.outbox[outboxID]
	if !ok {
		return errors.New("outbox record not found")
	}
	value := publishedAt.UTC()
	row.PublishedAt = &value
	s.outbox[outboxID] = row
	return nil
}

// SetHeight sets the simulated ledger height. Heights only move forward.
func (s *Store) SetHeight(height uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if height > s.height {
		s.height = height
	}
}

func (s *Store) CurrentHeight(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.height, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) appendOutbox(audit ports.Audit, eventType string, partitionKey string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	envelope, err := json.Marshal(contractsv1.Envelope{
		EventID:          audit.EventID,
		EventType:        eventType,
		OccurredAt:       audit.OccurredAt,
		SourceService:    "arkavo-node",
		SchemaVersion:    1,
		PartitionKeyPath: "account",
		PartitionKey:     partitionKey,
		Data:             payload,
	})
	if err != nil {
		return err
	}
	s.seq++
	s.outbox[audit.OutboxID] = outboxRow{
		OutboxMessage: ports.OutboxMessage{
			OutboxID:  audit.OutboxID,
			EventType: eventType,
			Payload:   envelope,
			CreatedAt: audit.OccurredAt,
		},
		Seq: s.seq,
	}
	return nil
}
