// Package inbound binds core.InboundHandler implementations to net/http using
// a chi router. The raw body is read under a size limit and the handler's
// result is rendered as JSON.
package inbound
