package postgresadapter

import (
	"time"

	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/entities"
	"github.com/shravan-hub/arkavo-node/contexts/access-control/policy-engine/domain/valueobjects"
)

type entitlementModel struct {
	Account   string    `gorm:"column:account;primaryKey"`
	Level     int16     `gorm:"column:level"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (entitlementModel) TableName() string { return "access_entitlements" }

type sessionGrantModel struct {
	SessionID      string    `gorm:"column:session_id;primaryKey"`
	EphPubKey      string    `gorm:"column:eph_pub_key"`
	ScopeID        string    `gorm:"column:scope_id"`
	ExpiresAtBlock uint64    `gorm:"column:expires_at_block"`
	CreatedAtBlock uint64    `gorm:"column:created_at_block"`
	IsRevoked      bool      `gorm:"column:is_revoked"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (sessionGrantModel) TableName() string { return "access_session_grants" }

func (m sessionGrantModel) toEntity() entities.SessionGrant {
	return entities.SessionGrant{
		SessionID:      valueobjects.SessionID(m.SessionID),
		EphPubKey:      valueobjects.EphPubKey(m.EphPubKey),
		ScopeID:        valueobjects.ScopeID(m.ScopeID),
		ExpiresAtBlock: m.ExpiresAtBlock,
		CreatedAtBlock: m.CreatedAtBlock,
		IsRevoked:      m.IsRevoked,
	}
}

type attributeModel struct {
	Account   string    `gorm:"column:account;primaryKey"`
	Namespace string    `gorm:"column:namespace;primaryKey"`
	Key       string    `gorm:"column:attr_key;primaryKey"`
	Value     string    `gorm:"column:attr_value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (attributeModel) TableName() string { return "access_attributes" }

type authorizedWriterModel struct {
	Account   string    `gorm:"column:account;primaryKey"`
	Writer    string    `gorm:"column:writer;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (authorizedWriterModel) TableName() string { return "access_authorized_writers" }

type authorizedAnchorModel struct {
	Anchor    string    `gorm:"column:anchor;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (authorizedAnchorModel) TableName() string { return "access_authorized_anchors" }

type attributeRootModel struct {
	Account   string    `gorm:"column:account;primaryKey"`
	Root      string    `gorm:"column:root"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (attributeRootModel) TableName() string { return "access_attribute_roots" }

// registryConfigModel holds singleton engine state: the owner principal fixed
// at bootstrap, and the host-maintained chain height.
type registryConfigModel struct {
	Key       string    `gorm:"column:config_key;primaryKey"`
	Value     string    `gorm:"column:config_value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (registryConfigModel) TableName() string { return "access_registry_config" }

const (
	configKeyOwner       = "owner"
	configKeyChainHeight = "chain_height"
)

type outboxModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status"`
	RetryCount  int        `gorm:"column:retry_count"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "access_outbox" }
