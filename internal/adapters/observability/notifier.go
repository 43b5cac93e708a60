package observability

import "github.com/rs/zerolog"

// ToastLog is the server-side stand-in for the UI toast channel: every
// user-facing failure message is logged at warn level and counted.
type ToastLog struct{ L zerolog.Logger }

func (t ToastLog) Notify(msg string) {
	Notifications.Inc()
	t.L.Warn().Str("channel", "toast").Msg(msg)
}
