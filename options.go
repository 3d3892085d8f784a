package breezmcp

import "log/slog"

// Option is the signature of the option-setting function.
type Option func(*Manager)

// WithLogger sets the logger to use.  If nil, the default logger is kept.
func WithLogger(lg *slog.Logger) Option {
	return func(m *Manager) {
		if lg != nil {
			m.lg = lg
		}
	}
}

// WithConnector substitutes the function used to establish the wallet
// session.  If this option is not given, the Spark daemon connector is used.
func WithConnector(c Connector) Option {
	return func(m *Manager) {
		if c != nil {
			m.connect = c
		}
	}
}
