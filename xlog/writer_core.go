package xlog

import (
	"go.uber.org/zap/zapcore"
)

// newWriterCore writes the entries into the given syncer. The stderr
// is used when the syncer is nil.
func newWriterCore(
	lvlEnabler zapcore.LevelEnabler,
	encoder logEncoderType,
	ws zapcore.WriteSyncer,
	lvlEnc zapcore.LevelEncoder,
	tsEnc zapcore.TimeEncoder,
) xLogCore {
	if ws == nil {
		ws = defaultWriteSyncer()
	}
	return newCommonCore(
		lvlEnabler,
		ws,
		getEncoderByType(encoder),
		lvlEnc,
		tsEnc,
		defaultCoreEncoderCfg(),
	)
}
