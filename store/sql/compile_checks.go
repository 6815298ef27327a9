package sqlstore

import "github.com/goliatone/go-notion/core"

var (
	_ core.KVStore            = (*KVStore)(nil)
	_ core.TokenSignal        = (*KVTokenSignal)(nil)
	_ core.SubscriberRegistry = (*SubscriberStore)(nil)
	_ core.SubscriberRegistry = (*CachedSubscriberStore)(nil)
)
