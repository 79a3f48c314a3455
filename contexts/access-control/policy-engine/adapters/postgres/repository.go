package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/entities"
	domainerrors "github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/errors"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/valueobjects"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/ports"
	contractsv1 "github.com/shravan-hub/arkavo-node/contracts/gen/events/v1"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Repository is the durable adapter backing the engine's state surface.
// Each mutation and its outbox row commit in one transaction.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the engine tables when absent.
func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(
		&entitlementModel{},
		&sessionGrantModel{},
		&attributeModel{},
		&authorizedWriterModel{},
		&authorizedAnchorModel{},
		&attributeRootModel{},
		&registryConfigModel{},
		&outboxModel{},
	)
}

// EnsureOwner fixes the owner principal on first boot and reports whether this
// boot fixed it. A later boot with a different genesis owner fails rather than
// silently transferring ownership.
func (r *Repository) EnsureOwner(ctx context.Context, owner valueobjects.Principal) (bool, error) {
	var row registryConfigModel
	err := r.db.WithContext(ctx).
		Where("config_key = ?", configKeyOwner).
		First(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		createErr := r.db.WithContext(ctx).Create(&registryConfigModel{
			Key:       configKeyOwner,
			Value:     owner.String(),
			UpdatedAt: time.Now().UTC(),
		}).Error
		if createErr != nil {
			return false, createErr
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if row.Value != owner.String() {
		return false, errors.New("registry owner is already fixed to a different principal")
	}
	return false, nil
}

func (r *Repository) Owner(ctx context.Context) (valueobjects.Principal, error) {
	var row registryConfigModel
	err := r.db.WithContext(ctx).
		Where("config_key = ?", configKeyOwner).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.New("registry owner is not configured")
		}
		return "", r.logError("access_repo_owner_read_failed", err)
	}
	return valueobjects.Principal(row.Value), nil
}

func (r *Repository) GetEntitlement(ctx context.Context, account valueobjects.Principal) (entities.EntitlementLevel, error) {
	var row entitlementModel
	err := r.db.WithContext(ctx).
		Where("account = ?", account.String()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.LevelNone, nil
		}
		return entities.LevelNone, r.logError("access_repo_get_entitlement_failed", err, "account", account.String())
	}
	return entities.EntitlementLevel(row.Level), nil
}

func (r *Repository) PutEntitlement(ctx context.Context, input ports.PutEntitlementInput) error {
	row := entitlementModel{
		Account:   input.Account.String(),
		Level:     int16(input.Level),
		UpdatedAt: input.OccurredAt,
	}
	return r.inTx(ctx, "access_repo_put_entitlement_failed", func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account"}},
			DoUpdates: clause.Assignments(map[string]any{
				"level":      row.Level,
				"updated_at": row.UpdatedAt,
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		return r.appendOutbox(tx, input.Audit, ports.EventEntitlementGranted, input.Account.String(), map[string]string{
			"account": input.Account.String(),
			"level":   input.Level.String(),
		})
	})
}

func (r *Repository) DeleteEntitlement(ctx context.Context, input ports.DeleteEntitlementInput) error {
	return r.inTx(ctx, "access_repo_delete_entitlement_failed", func(tx *gorm.DB) error {
		if err := tx.
			Where("account = ?", input.Account.String()).
			Delete(&entitlementModel{}).
			Error; err != nil {
			return err
		}
		return r.appendOutbox(tx, input.Audit, ports.EventEntitlementRevoked, input.Account.String(), map[string]string{
			"account": input.Account.String(),
		})
	})
}

func (r *Repository) GetSession(ctx context.Context, sessionID valueobjects.SessionID) (entities.SessionGrant, bool, error) {
	var row sessionGrantModel
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID.String()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.SessionGrant{}, false, nil
		}
		return entities.SessionGrant{}, false, r.logError("access_repo_get_session_failed", err, "session_id", sessionID.String())
	}
	return row.toEntity(), true, nil
}

func (r *Repository) PutSession(ctx context.Context, input ports.PutSessionInput) error {
	grant := input.Grant
	row := sessionGrantModel{
		SessionID:      grant.SessionID.String(),
		EphPubKey:      grant.EphPubKey.String(),
		ScopeID:        grant.ScopeID.String(),
		ExpiresAtBlock: grant.ExpiresAtBlock,
		CreatedAtBlock: grant.CreatedAtBlock,
		IsRevoked:      grant.IsRevoked,
		UpdatedAt:      input.OccurredAt,
	}
	return r.inTx(ctx, "access_repo_put_session_failed", func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"eph_pub_key":      row.EphPubKey,
				"scope_id":         row.ScopeID,
				"expires_at_block": row.ExpiresAtBlock,
				"created_at_block": row.CreatedAtBlock,
				"is_revoked":       row.IsRevoked,
				"updated_at":       row.UpdatedAt,
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		return r.appendOutbox(tx, input.Audit, ports.EventSessionCreated, grant.SessionID.String(), map[string]any{
			"session_id":       grant.SessionID.String(),
			"scope_id":         grant.ScopeID.String(),
			"expires_at_block": grant.ExpiresAtBlock,
			"created_at_block": grant.CreatedAtBlock,
		})
	})
}

func (r *Repository) MarkSessionRevoked(ctx context.Context, input ports.RevokeSessionInput) (entities.SessionGrant, error) {
	var revoked entities.SessionGrant
	err := r.inTx(ctx, "access_repo_revoke_session_failed", func(tx *gorm.DB) error {
		var row sessionGrantModel
		err := tx.
			Where("session_id = ?", input.SessionID.String()).
			First(&row).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		if err := tx.Model(&sessionGrantModel{}).
			Where("session_id = ?", input.SessionID.String()).
			Updates(map[string]any{
				"is_revoked": true,
				"updated_at": input.OccurredAt,
			}).Error; err != nil {
			return err
		}
		row.IsRevoked = true
		revoked = row.toEntity()
		return r.appendOutbox(tx, input.Audit, ports.EventSessionRevoked, input.SessionID.String(), map[string]string{
			"session_id": input.SessionID.String(),
		})
	})
	if err != nil {
		return entities.SessionGrant{}, err
	}
	return revoked, nil
}

func (r *Repository) GetAttribute(
	ctx context.Context,
	account valueobjects.Principal,
	namespace string,
	key string,
) (string, bool, error) {
	var row attributeModel
	err := r.db.WithContext(ctx).
		Where("account = ?", account.String()).
		Where("namespace = ?", namespace).
		Where("attr_key = ?", key).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, r.logError("access_repo_get_attribute_failed", err, "account", account.String())
	}
	return row.Value, true, nil
}

func (r *Repository) PutAttribute(ctx context.Context, input ports.PutAttributeInput) error {
	record := input.Record
	row := attributeModel{
		Account:   record.Account.String(),
		Namespace: record.Namespace,
		Key:       record.Key,
		Value:     record.Value,
		UpdatedAt: input.OccurredAt,
	}
	return r.inTx(ctx, "access_repo_put_attribute_failed", func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account"}, {Name: "namespace"}, {Name: "attr_key"}},
			DoUpdates: clause.Assignments(map[string]any{
				"attr_value": row.Value,
				"updated_at": row.UpdatedAt,
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		return r.appendOutbox(tx, input.Audit, ports.EventAttributeSet, record.Account.String(), map[string]string{
			"account":   record.Account.String(),
			"namespace": record.Namespace,
			"key":       record.Key,
			"value":     record.Value,
		})
	})
}

func (r *Repository) DeleteAttribute(ctx context.Context, input ports.DeleteAttributeInput) error {
	return r.inTx(ctx, "access_repo_delete_attribute_failed", func(tx *gorm.DB) error {
		if err := tx.
			Where("account = ?", input.Account.String()).
			Where("namespace = ?", input.Namespace).
			Where("attr_key = ?", input.Key).
			Delete(&attributeModel{}).
			Error; err != nil {
			return err
		}
		return r.appendOutbox(tx, input.Audit, ports.EventAttributeRemoved, input.Account.String(), map[string]string{
			"account":   input.Account.String(),
			"namespace": input.Namespace,
			"key":       input.Key,
		})
	})
}

func (r *Repository) IsWriterAuthorized(ctx context.Context, subject, writer valueobjects.Principal) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&authorizedWriterModel{}).
		Where("account = ?", subject.String()).
		Where("writer = ?", writer.String()).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("access_repo_writer_lookup_failed", err, "account", subject.String())
	}
	return count > 0, nil
}

func (r *Repository) PutWriterAuthorization(ctx context.Context, input ports.WriterAuthorizationInput) error {
	row := authorizedWriterModel{
		Account:   input.Subject.String(),
		Writer:    input.Writer.String(),
		CreatedAt: input.OccurredAt,
	}
	return r.inTx(ctx, "access_repo_put_writer_failed", func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			if !isUniqueViolation(err) {
				return err
			}
		}
		return r.appendOutbox(tx, input.Audit, ports.EventWriterAuthorized, input.Subject.String(), map[string]string{
			"account": input.Subject.String(),
			"writer":  input.Writer.String(),
		})
	})
}

func (r *Repository) DeleteWriterAuthorization(ctx context.Context, input ports.WriterAuthorizationInput) error {
	return r.inTx(ctx, "access_repo_delete_writer_failed", func(tx *gorm.DB) error {
		if err := tx.
			Where("account = ?", input.Subject.String()).
			Where("writer = ?", input.Writer.String()).
			Delete(&authorizedWriterModel{}).
			Error; err != nil {
			return err
		}
		return r.appendOutbox(tx, input.Audit, ports.EventWriterRevoked, input.Subject.String(), map[string]string{
			"account": input.Subject.String(),
			"writer":  input.Writer.String(),
		})
	})
}

func (r *Repository) IsAnchorRegistered(ctx context.Context, anchor valueobjects.Principal) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&authorizedAnchorModel{}).
		Where("anchor = ?", anchor.String()).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("access_repo_anchor_lookup_failed", err, "anchor", anchor.String())
	}
	return count > 0, nil
}

func (r *Repository) PutAnchor(ctx context.Context, input ports.AnchorInput) error {
	row := authorizedAnchorModel{
		Anchor:    input.Anchor.String(),
		CreatedAt: input.OccurredAt,
	}
	return r.inTx(ctx, "access_repo_put_anchor_failed", func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			if !isUniqueViolation(err) {
				return err
			}
		}
		return r.appendOutbox(tx, input.Audit, ports.EventAnchorAdded, input.Anchor.String(), map[string]string{
			"anchor": input.Anchor.String(),
		})
	})
}

func (r *Repository) DeleteAnchor(ctx context.Context, input ports.AnchorInput) error {
	return r.inTx(ctx, "access_repo_delete_anchor_failed", func(tx *gorm.DB) error {
		if err := tx.
			Where("anchor = ?", input.Anchor.String()).
			Delete(&authorizedAnchorModel{}).
			Error; err != nil {
			return err
		}
		return r.appendOutbox(tx, input.Audit, ports.EventAnchorRemoved, input.Anchor.String(), map[string]string{
			"anchor": input.Anchor.String(),
		})
	})
}

func (r *Repository) GetRoot(ctx context.Context, account valueobjects.Principal) (valueobjects.Root, bool, error) {
	var row attributeRootModel
	err := r.db.WithContext(ctx).
		Where("account = ?", account.String()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, r.logError("access_repo_get_root_failed", err, "account", account.String())
	}
	return valueobjects.Root(row.Root), true, nil
}

func (r *Repository) PutRoot(ctx context.Context, input ports.PutRootInput) error {
	record := input.Record
	row := attributeRootModel{
		Account:   record.Account.String(),
		Root:      record.Root.String(),
		UpdatedAt: input.OccurredAt,
	}
	return r.inTx(ctx, "access_repo_put_root_failed", func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account"}},
			DoUpdates: clause.Assignments(map[string]any{
				"root":       row.Root,
				"updated_at": row.UpdatedAt,
			}),
		}).Create(&row).Error; err != nil {
			return err
		}
		return r.appendOutbox(tx, input.Audit, ports.EventRootUpdated, record.Account.String(), map[string]string{
			"account": record.Account.String(),
			"root":    record.Root.String(),
		})
	})
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("access_repo_outbox_list_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:  row.ID,
			EventType: row.EventType,
			Payload:   row.Payload,
			CreatedAt: row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	value := publishedAt.UTC()
	return r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("id = ?", outboxID).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": &value,
		}).Error
}

// CurrentHeight reads the host-maintained chain height; 0 before the host has
// written one.
func (r *Repository) CurrentHeight(ctx context.Context) (uint64, error) {
	var row registryConfigModel
	err := r.db.WithContext(ctx).
		Where("config_key = ?", configKeyChainHeight).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, r.logError("access_repo_height_read_failed", err)
	}
	height, err := strconv.ParseUint(row.Value, 10, 64)
	if err != nil {
		return 0, err
	}
	return height, nil
}

func (r *Repository) inTx(ctx context.Context, failEvent string, fn func(tx *gorm.DB) error) error {
	err := r.db.WithContext(ctx).Transaction(fn)
	if err != nil {
		if errors.Is(err, domainerrors.ErrSessionNotFound) {
			return err
		}
		return r.logError(failEvent, err)
	}
	return nil
}

func (r *Repository) appendOutbox(tx *gorm.DB, audit ports.Audit, eventType string, partitionKey string, data any) error {
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
	return tx.Create(&outboxModel{
		ID:        audit.OutboxID,
		EventType: eventType,
		Payload:   envelope,
		Status:    outboxStatusPending,
		CreatedAt: audit.OccurredAt,
	}).Error
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "access-control/policy-engine",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("access repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
