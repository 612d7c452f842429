// Package viewmodel implements the façade of spec.md §4.7: it coordinates
// the front-end command surface (§6) against a playback.Engine, owning the
// three independently-guarded pieces of state (§5) and the staged
// open-game progress sequence. Grounded on reglet's application-service
// layer (internal/application/services/capability_orchestrator.go), which
// plays the same role there: a thin coordinator holding mutex-guarded
// long-lived state behind a narrow command surface, with no domain logic
// of its own.
package viewmodel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ayaka-run/ayaka/internal/playback"
	"github.com/ayaka-run/ayaka/internal/pluginhost"
	"github.com/ayaka-run/ayaka/internal/settings"
	"github.com/ayaka-run/ayaka/internal/value"
	"github.com/ayaka-run/ayaka/internal/wireformat"
)

// errNoEngine is the spec.md §7 bad-argument condition for any command that
// touches the engine before open_game has succeeded.
var errNoEngine = &playback.BadArgumentError{Message: "no game is open"}

// GameViewModel is the façade of spec.md §4.7. ident names the settings
// namespace (where the settings-manager capability persists files); config
// is the path to the game's YAML. The three mutexes are acquired in the
// fixed order engine -> records -> action (spec.md §5); no method acquires
// records or action without first acquiring engine when it needs both.
type GameViewModel struct {
	ident   string
	config  string
	log     *slog.Logger
	manager settings.Manager

	muEngine sync.Mutex
	engine   *playback.Engine
	gameKey  string

	muRecords sync.Mutex
	records   []playback.RawContext

	muAction sync.Mutex
	action   *wireformat.Action
}

// New constructs a façade. ident is the settings-manager root directory;
// config is the game YAML path. Neither is touched until OpenGame runs.
func New(ident, config string, log *slog.Logger) (*GameViewModel, error) {
	if log == nil {
		log = slog.Default()
	}
	manager, err := settings.NewFileManager(ident)
	if err != nil {
		return nil, err
	}
	return &GameViewModel{ident: ident, config: config, log: log, manager: manager}, nil
}

// AyakaVersion implements the `ayaka_version` command.
func (vm *GameViewModel) AyakaVersion() string {
	return AyakaVersion()
}

// OpenGame implements `open_game`: builds the playback engine and loads
// settings, the global record, and save records through the settings-manager
// capability, tolerating any single-file read failure by substituting
// defaults and logging (spec.md §7). onStatus, if non-nil, receives the
// staged progress events as they occur.
func (vm *GameViewModel) OpenGame(ctx context.Context, onStatus func(OpenStatus)) error {
	notify := onStatus
	if notify == nil {
		notify = func(OpenStatus) {}
	}

	eng, err := playback.Open(ctx, vm.config, vm.log, func(st playback.OpenStatus) {
		switch s := st.(type) {
		case playback.LoadProfileStatus:
			notify(LoadProfileStatus{RunID: s.RunID, Path: s.Path})
		case playback.CreateRuntimeStatus:
			notify(CreateRuntimeStatus{RunID: s.RunID})
		case playback.PluginLoadStatus:
			notify(PluginLoadStatus{RunID: s.RunID, Name: s.Name, Index: s.Index, Total: s.Total})
		}
	})
	if err != nil {
		return err
	}

	runID := eng.RunID()
	info := eng.Info()
	gameKey := info.Title

	notify(LoadSettingsStatus{RunID: runID})
	s, err := settings.LoadFile[playback.Settings](vm.manager, vm.manager.SettingsPath())
	if err != nil {
		vm.log.Warn("settings file unreadable, substituting default", "run_id", runID, "error", err)
		s = playback.Settings{Locale: info.BaseLang}
	}
	eng.SetSettings(s)

	notify(LoadGlobalRecordsStatus{RunID: runID})
	g, err := settings.LoadFile[value.Map](vm.manager, vm.manager.GlobalRecordPath(gameKey))
	if err != nil {
		vm.log.Warn("global record unreadable, substituting default", "run_id", runID, "error", err)
		g = value.NewMap()
	}
	eng.SetGlobalRecord(g)

	notify(LoadRecordsStatus{RunID: runID})
	records := vm.loadRecords(gameKey)

	vm.muEngine.Lock()
	if vm.engine != nil {
		_ = vm.engine.Close(ctx)
	}
	vm.engine = eng
	vm.gameKey = gameKey
	vm.muEngine.Unlock()

	vm.muRecords.Lock()
	vm.records = records
	vm.muRecords.Unlock()

	notify(LoadedStatus{RunID: runID})
	return nil
}

func (vm *GameViewModel) loadRecords(gameKey string) []playback.RawContext {
	paths, err := vm.manager.RecordsPath(gameKey)
	if err != nil {
		vm.log.Warn("save records unreadable, starting with none", "error", err)
		return nil
	}
	records := make([]playback.RawContext, 0, len(paths))
	for _, p := range paths {
		rc, err := settings.LoadFile[playback.RawContext](vm.manager, p)
		if err != nil {
			vm.log.Warn("save record unreadable, skipping", "path", p, "error", err)
			continue
		}
		records = append(records, rc)
	}
	return records
}

// Close tears down the engine, if open.
func (vm *GameViewModel) Close(ctx context.Context) error {
	vm.muEngine.Lock()
	defer vm.muEngine.Unlock()
	if vm.engine == nil {
		return nil
	}
	err := vm.engine.Close(ctx)
	vm.engine = nil
	return err
}

// GetSettings implements `get_settings`.
func (vm *GameViewModel) GetSettings() (playback.Settings, error) {
	vm.muEngine.Lock()
	defer vm.muEngine.Unlock()
	if vm.engine == nil {
		return playback.Settings{}, errNoEngine
	}
	return vm.engine.Settings(), nil
}

// SetSettings implements `set_settings`, persisting the change through the
// settings-manager capability. I/O failure at save is surfaced to the
// caller per spec.md §7.
func (vm *GameViewModel) SetSettings(s playback.Settings) error {
	vm.muEngine.Lock()
	defer vm.muEngine.Unlock()
	if vm.engine == nil {
		return errNoEngine
	}
	vm.engine.SetSettings(s)
	return settings.SaveFile(vm.manager, vm.manager.SettingsPath(), s, true)
}

// Info implements the `info` command.
func (vm *GameViewModel) Info() (playback.Info, error) {
	vm.muEngine.Lock()
	defer vm.muEngine.Unlock()
	if vm.engine == nil {
		return playback.Info{}, errNoEngine
	}
	return vm.engine.Info(), nil
}

// ChooseLocale implements `choose_locale([locale]) -> locale?`.
func (vm *GameViewModel) ChooseLocale(preferences []string) (string, bool, error) {
	vm.muEngine.Lock()
	defer vm.muEngine.Unlock()
	if vm.engine == nil {
		return "", false, errNoEngine
	}
	loc, ok := vm.engine.ChooseLocale(preferences)
	return loc, ok, nil
}

// Modules reports the loaded plugin modules, for introspection.
func (vm *GameViewModel) Modules() ([]pluginhost.ModuleSummary, error) {
	vm.muEngine.Lock()
	defer vm.muEngine.Unlock()
	if vm.engine == nil {
		return nil, errNoEngine
	}
	return vm.engine.Modules(), nil
}

// GetRecords implements `get_records`: a snapshot of the currently loaded
// save records.
func (vm *GameViewModel) GetRecords() []playback.RawContext {
	vm.muRecords.Lock()
	defer vm.muRecords.Unlock()
	out := make([]playback.RawContext, len(vm.records))
	copy(out, vm.records)
	return out
}

// StartNew implements `start_new(locale)`: begins a fresh run at the given
// locale and clears the current action.
func (vm *GameViewModel) StartNew(locale string) error {
	vm.muEngine.Lock()
	defer vm.muEngine.Unlock()
	if vm.engine == nil {
		return errNoEngine
	}
	s := vm.engine.Settings()
	s.Locale = locale
	vm.engine.SetSettings(s)
	vm.engine.InitNew()

	vm.muAction.Lock()
	vm.action = nil
	vm.muAction.Unlock()
	return nil
}

// StartRecord implements `start_record(locale, index)`: resumes a
// previously loaded save record at the given locale.
func (vm *GameViewModel) StartRecord(locale string, index int) error {
	vm.muEngine.Lock()
	defer vm.muEngine.Unlock()
	if vm.engine == nil {
		return errNoEngine
	}

	vm.muRecords.Lock()
	if index < 0 || index >= len(vm.records) {
		vm.muRecords.Unlock()
		return &playback.BadArgumentError{Message: fmt.Sprintf("record index %d out of range", index)}
	}
	rc := vm.records[index]
	vm.muRecords.Unlock()

	s := vm.engine.Settings()
	s.Locale = locale
	vm.engine.SetSettings(s)
	vm.engine.InitContext(rc)

	vm.muAction.Lock()
	vm.action = nil
	vm.muAction.Unlock()
	return nil
}

// NextRun implements `next_run -> bool`.
func (vm *GameViewModel) NextRun(ctx context.Context) (bool, error) {
	vm.muEngine.Lock()
	defer vm.muEngine.Unlock()
	if vm.engine == nil {
		return false, errNoEngine
	}
	action, ok, err := vm.engine.NextRun(ctx)
	if err != nil {
		return false, err
	}

	vm.muAction.Lock()
	vm.action = action
	vm.muAction.Unlock()
	return ok, nil
}

// NextBackRun implements `next_back_run -> bool`.
func (vm *GameViewModel) NextBackRun() (bool, error) {
	vm.muEngine.Lock()
	defer vm.muEngine.Unlock()
	if vm.engine == nil {
		return false, errNoEngine
	}
	action, ok := vm.engine.NextBackRun()

	vm.muAction.Lock()
	vm.action = action
	vm.muAction.Unlock()
	return ok, nil
}

// CurrentVisited implements `current_visited -> bool`.
func (vm *GameViewModel) CurrentVisited() (bool, error) {
	vm.muEngine.Lock()
	defer vm.muEngine.Unlock()
	if vm.engine == nil {
		return false, errNoEngine
	}
	return vm.engine.CurrentVisited(), nil
}

// CurrentRun implements `current_run -> Action?`.
func (vm *GameViewModel) CurrentRun() *wireformat.Action {
	vm.muAction.Lock()
	defer vm.muAction.Unlock()
	return vm.action
}

// Switch implements `switch(i) -> RawValue`: evaluates the i'th switch of
// the current action's guarded expression.
func (vm *GameViewModel) Switch(ctx context.Context, i int) (value.Raw, error) {
	vm.muEngine.Lock()
	defer vm.muEngine.Unlock()
	if vm.engine == nil {
		return value.Unit, errNoEngine
	}

	vm.muAction.Lock()
	if vm.action == nil || i < 0 || i >= len(vm.action.Switches) {
		vm.muAction.Unlock()
		return value.Unit, &playback.BadArgumentError{Message: fmt.Sprintf("switch index %d out of range", i)}
	}
	handle := vm.action.Switches[i].Action
	vm.muAction.Unlock()

	return vm.engine.Call(ctx, handle)
}

// History implements `history -> [Action]` (reverse-chronological).
func (vm *GameViewModel) History() ([]wireformat.Action, error) {
	vm.muEngine.Lock()
	defer vm.muEngine.Unlock()
	if vm.engine == nil {
		return nil, errNoEngine
	}
	return vm.engine.History(), nil
}

// SaveRecordTo implements `save_record_to(index)`: persists the current
// record and the game's global record, surfacing any I/O failure to the
// caller (spec.md §7).
func (vm *GameViewModel) SaveRecordTo(index int) error {
	vm.muEngine.Lock()
	defer vm.muEngine.Unlock()
	if vm.engine == nil {
		return errNoEngine
	}
	rc := vm.engine.Record()
	gameKey := vm.gameKey

	if err := settings.SaveFile(vm.manager, vm.manager.RecordPath(gameKey, index), rc, true); err != nil {
		return err
	}
	if err := settings.SaveFile(vm.manager, vm.manager.GlobalRecordPath(gameKey), vm.engine.GlobalRecord(), true); err != nil {
		return err
	}

	vm.muRecords.Lock()
	defer vm.muRecords.Unlock()
	for len(vm.records) <= index {
		vm.records = append(vm.records, playback.RawContext{})
	}
	vm.records[index] = rc
	return nil
}

// SaveAll implements `save_all`: persists settings, the global record, and
// every currently loaded save record back to its own slot.
func (vm *GameViewModel) SaveAll() error {
	vm.muEngine.Lock()
	defer vm.muEngine.Unlock()
	if vm.engine == nil {
		return errNoEngine
	}
	gameKey := vm.gameKey

	if err := settings.SaveFile(vm.manager, vm.manager.SettingsPath(), vm.engine.Settings(), true); err != nil {
		return err
	}
	if err := settings.SaveFile(vm.manager, vm.manager.GlobalRecordPath(gameKey), vm.engine.GlobalRecord(), true); err != nil {
		return err
	}

	vm.muRecords.Lock()
	defer vm.muRecords.Unlock()
	for i, rc := range vm.records {
		if err := settings.SaveFile(vm.manager, vm.manager.RecordPath(gameKey, i), rc, true); err != nil {
			return err
		}
	}
	return nil
}
