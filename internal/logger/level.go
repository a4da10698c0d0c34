package logger

// Level is a log level.
type Level int

// Log levels.
const (
	Debug Level = iota + 1
	Info
	Warn
	Error
)

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case Debug:
		return "DEB"
	case Info:
		return "INF"
	case Warn:
		return "WAR"
	case Error:
		return "ERR"
	}
	return "UNK"
}
