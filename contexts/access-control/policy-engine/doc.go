// Package policyengine implements the on-ledger authorization and
// attribute-policy engine inside arkavo-node: the entitlement registry,
// session grant manager, attribute store and attribute anchor, sharing one
// authorization discipline.
//
// Layering:
// - domain: value objects, entities, authorization predicates, errors
// - application: the engine operations over explicit ports, plus workers
// - ports: stable boundaries for host storage, heights, ids and the audit bus
// - adapters: concrete HTTP, memory, postgres, and event publisher implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - The host supplies caller identity and block height per call; neither is a
//   package-level global.
// - The engine stores session public keys and scopes but never verifies
//   signatures; proving session ownership belongs to the consumer of a grant.
package policyengine
