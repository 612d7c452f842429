package playback

// OpenStatus is one event in Open's progress sequence (spec.md §4.6):
// LoadProfile -> CreateRuntime -> LoadPlugin* (forwarded from the plugin
// host, one per loaded module). RunID identifies the Open call the event
// belongs to, so a front-end fanning out multiple concurrent opens (or
// correlating a progress event against a later plugin-call log line) can
// tell them apart.
type OpenStatus interface{ isOpenStatus() }

// LoadProfileStatus reports that the game config file is about to be read.
type LoadProfileStatus struct {
	RunID string
	Path  string
}

func (LoadProfileStatus) isOpenStatus() {}

// CreateRuntimeStatus reports that the WASM engine is about to be created.
type CreateRuntimeStatus struct{ RunID string }

func (CreateRuntimeStatus) isOpenStatus() {}

// PluginLoadStatus reports one plugin module finishing load, forwarded from
// pluginhost.LoadPluginStatus.
type PluginLoadStatus struct {
	RunID string
	Name  string
	Index int
	Total int
}

func (PluginLoadStatus) isOpenStatus() {}
