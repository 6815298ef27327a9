// Package webhooks verifies and routes Notion webhook deliveries.
//
// A delivery is either a handshake carrying a verification token, which is
// persisted and echoed back, or a signed event. Events are checked against the
// persisted token, classified by the namespace of their type and handed to
// every matching subscriber registration in one batched dispatch.
//
// Entity filters are strict. A registration with an EntityID only matches
// events whose entity id (data.id, then entity.id; data.parent.page_id first
// for comments) equals it. An event that carries no id at all never reaches a
// filtered registration, so register without a filter to receive those.
package webhooks
