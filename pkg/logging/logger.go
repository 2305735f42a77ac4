package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// sink is shared by a logger and all of its children so that entries
// written from concurrent workers never interleave.
type sink struct {
	mu    sync.Mutex
	w     io.Writer
	level atomic.Int32
}

// JSONLogger writes one JSON object per line: time, level and msg
// followed by the fields in the order they were given. Later fields with
// the same key override earlier ones in place.
type JSONLogger struct {
	sink   *sink
	fields []Field
}

// NewJSONLogger creates a new JSON logger
func NewJSONLogger(writer io.Writer, level Level) *JSONLogger {
	s := &sink{w: writer}
	s.level.Store(int32(level))
	return &JSONLogger{sink: s}
}

var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

func (l *JSONLogger) log(level Level, msg string, fields ...Field) {
	if level < l.GetLevel() {
		return
	}

	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufPool.Put(buf)

	buf.WriteString(`{"time":`)
	buf.WriteString(strconv.Quote(time.Now().UTC().Format(time.RFC3339Nano)))
	buf.WriteString(`,"level":"`)
	buf.WriteString(level.String())
	buf.WriteString(`","msg":`)
	writeJSON(buf, msg)

	for _, f := range merge(l.fields, fields) {
		buf.WriteByte(',')
		writeJSON(buf, f.Key)
		buf.WriteByte(':')
		writeJSON(buf, f.Value)
	}
	buf.WriteString("}\n")

	l.sink.mu.Lock()
	l.sink.w.Write(buf.Bytes())
	l.sink.mu.Unlock()
}

// writeJSON encodes v, falling back to its string form for values that
// cannot be marshaled.
func writeJSON(buf *bytes.Buffer, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(err.Error())
	}
	buf.Write(data)
}

// merge concatenates preset and call fields, keeping the first position
// of each key and the last value.
func merge(preset, fields []Field) []Field {
	if len(fields) == 0 {
		return preset
	}
	out := make([]Field, 0, len(preset)+len(fields))
	index := make(map[string]int, len(preset)+len(fields))
	for _, group := range [][]Field{preset, fields} {
		for _, f := range group {
			if i, ok := index[f.Key]; ok {
				out[i].Value = f.Value
				continue
			}
			index[f.Key] = len(out)
			out = append(out, f)
		}
	}
	return out
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields...) }
func (l *JSONLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields...) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields...) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields...) }

func (l *JSONLogger) With(fields ...Field) Logger {
	return &JSONLogger{
		sink:   l.sink,
		fields: merge(l.fields, fields),
	}
}

// SetLevel changes the level for this logger, its parent and its
// children.
func (l *JSONLogger) SetLevel(level Level) {
	l.sink.level.Store(int32(level))
}

func (l *JSONLogger) GetLevel() Level {
	return Level(l.sink.level.Load())
}

// StartTimer begins timing an operation
func StartTimer(logger Logger, msg string, fields ...Field) *TimedOperation {
	return &TimedOperation{
		logger: logger,
		msg:    msg,
		start:  time.Now(),
		fields: fields,
	}
}

// End logs the operation at Info with its latency.
func (t *TimedOperation) End() {
	t.EndWith()
}

// EndWith logs the operation at Info with its latency and the given
// result fields.
func (t *TimedOperation) EndWith(fields ...Field) {
	all := make([]Field, 0, len(t.fields)+len(fields)+1)
	all = append(all, t.fields...)
	all = append(all, fields...)
	t.logger.Info(t.msg, append(all, Latency(time.Since(t.start)))...)
}

// EndError logs the operation as an error with its latency.
func (t *TimedOperation) EndError(err error) {
	all := make([]Field, 0, len(t.fields)+2)
	all = append(all, t.fields...)
	t.logger.Error(t.msg, append(all, Latency(time.Since(t.start)), Error(err))...)
}
