package viewmodel

// OpenStatus is one event on the spec.md §6 `ayaka://open_status` progress
// channel: LoadProfile -> CreateRuntime -> LoadPlugin* -> LoadSettings ->
// LoadGlobalRecords -> LoadRecords -> Loaded.
type OpenStatus interface{ isOpenStatus() }

type LoadProfileStatus struct {
	RunID string
	Path  string
}

func (LoadProfileStatus) isOpenStatus() {}

type CreateRuntimeStatus struct{ RunID string }

func (CreateRuntimeStatus) isOpenStatus() {}

// PluginLoadStatus reports module Name (1-based Index of Total) finishing
// load, forwarded verbatim from the playback engine's own progress channel.
type PluginLoadStatus struct {
	RunID string
	Name  string
	Index int
	Total int
}

func (PluginLoadStatus) isOpenStatus() {}

// RunID identifies the playback.Engine these four stages belong to; they all
// fire after the engine (and therefore its run id) exists.
type LoadSettingsStatus struct{ RunID string }

func (LoadSettingsStatus) isOpenStatus() {}

type LoadGlobalRecordsStatus struct{ RunID string }

func (LoadGlobalRecordsStatus) isOpenStatus() {}

type LoadRecordsStatus struct{ RunID string }

func (LoadRecordsStatus) isOpenStatus() {}

type LoadedStatus struct{ RunID string }

func (LoadedStatus) isOpenStatus() {}
