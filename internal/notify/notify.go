// Package notify dispatches outbound account notifications (currently only
// password-reset tokens). The transport is an external collaborator: this
// package owns provider selection and throttling, not delivery guarantees.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/toolhubapp/toolhub-backend/internal/logger"
	"golang.org/x/time/rate"
)

var ErrUnknownProvider = errors.New("unknown notify provider")

// Notifier is the interface all notification transports implement.
type Notifier interface {
	// Name returns the provider name for logging purposes.
	Name() string
	// SendResetToken dispatches a password-reset token to an address.
	SendResetToken(ctx context.Context, email, token string) error
}

// providerRegistry holds registered provider constructors, so new transports
// (SMTP, SES, ...) can be added without touching this file.
var providerRegistry = map[string]func() (Notifier, error){}

// Register registers a provider constructor under a name. Called from init()
// in each provider implementation.
func Register(name string, constructor func() (Notifier, error)) {
	providerRegistry[name] = constructor
}

var active Notifier

// Init selects the active provider by name.
func Init(name string) error {
	constructor, ok := providerRegistry[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	n, err := constructor()
	if err != nil {
		return err
	}
	active = n
	return nil
}

// SendResetToken dispatches through the active provider. Failures are logged
// and swallowed: the reset endpoint answers 200 regardless, and the token
// row already exists for out-of-band recovery.
func SendResetToken(ctx context.Context, email, token string) {
	if active == nil {
		logger.Get().Warn().Msg("notify: no provider initialised, dropping reset token")
		return
	}
	if err := active.SendResetToken(ctx, email, token); err != nil {
		logger.Get().Error().Err(err).Str("provider", active.Name()).
			Msg("notify: reset token dispatch failed")
	}
}

// logNotifier writes the notification to the server log. It is the default
// outside production, where no real mail transport is configured. Sends are
// throttled so a runaway caller cannot flood the log.
type logNotifier struct {
	limiter *rate.Limiter
}

func (n *logNotifier) Name() string { return "log" }

func (n *logNotifier) SendResetToken(ctx context.Context, email, token string) error {
	if !n.limiter.Allow() {
		return errors.New("log notifier throttled")
	}
	logger.Get().Info().Str("email", email).Str("token", token).
		Msg("password reset requested")
	return nil
}

// noopNotifier discards notifications. Useful in tests and as a stand-in in
// production until a mail transport lands.
type noopNotifier struct{}

func (noopNotifier) Name() string { return "noop" }
func (noopNotifier) SendResetToken(ctx context.Context, email, token string) error {
	return nil
}

func init() {
	Register("log", func() (Notifier, error) {
		return &logNotifier{limiter: rate.NewLimiter(rate.Limit(1), 5)}, nil
	})
	Register("noop", func() (Notifier, error) {
		return noopNotifier{}, nil
	})
}
