// Package otp produces and verifies time-based one-time codes bound to a
// random per-request secret. It has no storage or delivery side effects.
package otp

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"time"

	pqotp "github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/pquerna/otp/totp"
)

// ErrInvalidSecret is returned when a secret is not valid base32.
var ErrInvalidSecret = errors.New("invalid otp secret")

const (
	DefaultStepSeconds = 60
	DefaultDigits      = 6
	DefaultTolerance   = 1
	defaultSecretSize  = 20
)

// Config holds the tunables of the engine.
type Config struct {
	StepSeconds int
	Digits      int
	Tolerance   int
	Issuer      string
}

// Engine generates and verifies codes.
type Engine struct {
	step      int64
	digits    pqotp.Digits
	tolerance int64
	issuer    string
	rand      io.Reader
}

// NewEngine creates an Engine, falling back to defaults for unset fields.
func NewEngine(cfg Config) *Engine {
	if cfg.StepSeconds <= 0 {
		cfg.StepSeconds = DefaultStepSeconds
	}
	if cfg.Digits <= 0 {
		cfg.Digits = DefaultDigits
	}
	if cfg.Tolerance < 0 {
		cfg.Tolerance = DefaultTolerance
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "otp-transfers"
	}
	return &Engine{
		step:      int64(cfg.StepSeconds),
		digits:    pqotp.Digits(cfg.Digits),
		tolerance: int64(cfg.Tolerance),
		issuer:    cfg.Issuer,
	}
}

// WithRand returns a copy of the engine drawing secrets from r.
func (e *Engine) WithRand(r io.Reader) *Engine {
	c := *e
	c.rand = r
	return &c
}

// Digits returns the configured code length.
func (e *Engine) Digits() int {
	return int(e.digits)
}

// GenerateSecret returns a fresh random base32 secret.
func (e *Engine) GenerateSecret() (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.issuer,
		AccountName: "pending-transfer",
		Period:      uint(e.step),
		SecretSize:  defaultSecretSize,
		Digits:      e.digits,
		Algorithm:   pqotp.AlgorithmSHA1,
		Rand:        e.rand,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate otp secret: %w", err)
	}
	return key.Secret(), nil
}

// StepAt returns the time step containing t.
func (e *Engine) StepAt(t time.Time) int64 {
	return t.Unix() / e.step
}

// ComputeCode returns the code for secret at the given time step.
func (e *Engine) ComputeCode(secret string, step int64) (string, error) {
	if step < 0 {
		return "", fmt.Errorf("negative time step %d", step)
	}
	code, err := hotp.GenerateCodeCustom(secret, uint64(step), hotp.ValidateOpts{
		Digits:    e.digits,
		Algorithm: pqotp.AlgorithmSHA1,
	})
	if err != nil {
		if errors.Is(err, pqotp.ErrValidateSecretInvalidBase32) {
			return "", ErrInvalidSecret
		}
		return "", fmt.Errorf("failed to compute otp code: %w", err)
	}
	return code, nil
}

// CodeAt returns the code for secret at time t.
func (e *Engine) CodeAt(secret string, t time.Time) (string, error) {
	return e.ComputeCode(secret, e.StepAt(t))
}

// Verify reports whether candidate matches the code of the step containing t
// or of a step at most Tolerance steps away from it.
func (e *Engine) Verify(secret, candidate string, t time.Time) (bool, error) {
	current := e.StepAt(t)
	// Compute every code before answering so an invalid secret is always reported.
	matched := false
	for offset := -e.tolerance; offset <= e.tolerance; offset++ {
		step := current + offset
		if step < 0 {
			continue
		}
		code, err := e.ComputeCode(secret, step)
		if err != nil {
			return false, err
		}
		if len(candidate) == len(code) && subtle.ConstantTimeCompare([]byte(code), []byte(candidate)) == 1 {
			matched = true
		}
	}
	return matched, nil
}
