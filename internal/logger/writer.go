package logger

// Writer is an object that provides a log method.
type Writer interface {
	Log(Level, string, ...any)
}

type discard struct{}

func (discard) Log(Level, string, ...any) {}

// Discard is a Writer that drops every entry.
var Discard Writer = discard{}

// Or returns w, or Discard when w is nil.
func Or(w Writer) Writer {
	if w == nil {
		return Discard
	}
	return w
}
