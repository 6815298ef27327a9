package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ KVStore            = (*MemoryKVStore)(nil)
	_ SubscriberRegistry = (*MemorySubscriberRegistry)(nil)
	_ TokenSignal        = (*MemoryTokenSignal)(nil)
	_ Deliverer          = (*RecordingDeliverer)(nil)
	_ Deliverer          = DelivererFunc(nil)
	_ ConfigProvider     = (*CfgxConfigProvider)(nil)
	_ OptionsResolver    = GoOptionsResolver{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
