package pluginhost

import (
	"log/slog"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ayaka-run/ayaka/internal/wireformat"
)

// logPluginRecord decodes a msgpack-encoded wireformat.LogRecord from a
// module's `log.__log` call and re-emits it through the host's structured
// logger, tagged with the emitting module's name. A malformed payload is
// logged as a warning rather than dropped silently or propagated as an
// error — a misbehaving log call must never fail the plugin call it
// accompanies.
func logPluginRecord(log *slog.Logger, moduleName string, data []byte) {
	var rec wireformat.LogRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		log.Warn("plugin emitted malformed log record", "module", moduleName, "error", err)
		return
	}

	attrs := []any{"module", moduleName, "target", rec.Target}
	if rec.Module != "" {
		attrs = append(attrs, "plugin_module_path", rec.Module)
	}
	if rec.File != "" {
		attrs = append(attrs, "file", rec.File, "line", rec.Line)
	}

	switch rec.Level {
	case "error":
		log.Error(rec.Message, attrs...)
	case "warn":
		log.Warn(rec.Message, attrs...)
	case "debug", "trace":
		log.Debug(rec.Message, attrs...)
	default:
		log.Info(rec.Message, attrs...)
	}
}
