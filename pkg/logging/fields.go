package logging

import "time"

// Field is a key-value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field       { return Field{Key: key, Value: value} }
func Int(key string, value int) Field       { return Field{Key: key, Value: value} }
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Duration renders d in Go duration syntax.
func Duration(key string, d time.Duration) Field {
	return Field{Key: key, Value: d.String()}
}

// Error records err's message under "error"; a nil error logs as null.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// Domain fields

func Component(name string) Field { return String("component", name) }
func Operation(op string) Field   { return String("operation", op) }
func NodeID(id int) Field         { return Int("node_id", id) }
func MessageID(id int) Field      { return Int("message_id", id) }
func Communities(n int) Field     { return Int("communities", n) }
func Modularity(q float64) Field  { return Float64("modularity", q) }
func Passes(n int) Field          { return Int("passes", n) }
func Moves(n int) Field           { return Int("moves", n) }
func Nodes(n int) Field           { return Int("nodes", n) }
func Edges(n int) Field           { return Int("edges", n) }
func Affected(n int) Field        { return Int("affected", n) }

// Spread records a spread ratio in [0, 1].
func Spread(ratio float64) Field { return Float64("spread", ratio) }

// State records a message state by name.
func State(s interface{ String() string }) Field { return String("state", s.String()) }

// Source records where a graph was loaded from.
func Source(src string) Field { return String("source", src) }

func RunID(id string) Field { return String("run_id", id) }

func Latency(d time.Duration) Field { return Duration("latency", d) }
