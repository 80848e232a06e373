// Package translate runs the full OpenQASM to Python pipeline: parse,
// resolve, emit.
package translate

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"qniverse/internal/circuit"
	"qniverse/internal/emit"
	"qniverse/internal/qasm"
)

const defaultCacheSize = 64

// Parse parses and resolves OpenQASM text. Errors wrap the underlying
// *qasm.SyntaxError, *qasm.ParseError or *circuit.ResolutionError.
func Parse(text string) (*circuit.Circuit, error) {
	prog, err := qasm.Parse(text)
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}
	c, err := circuit.Resolve(prog)
	if err != nil {
		return nil, errors.Wrap(err, "resolve")
	}
	return c, nil
}

type cacheKey struct {
	text     string
	platform emit.Platform
	backend  string
}

// Translator converts OpenQASM text into target programs, remembering
// recent results. It is safe for concurrent use.
type Translator struct {
	logger    *zap.Logger
	shots     int
	cacheSize int
	cache     *lru.Cache[cacheKey, string]
}

type Option func(*Translator)

func WithLogger(logger *zap.Logger) Option {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func WithShots(n int) Option {
	return func(t *Translator) {
		t.shots = n
	}
}

// WithCacheSize bounds the result cache. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(t *Translator) {
		t.cacheSize = n
	}
}

// New creates a translator.
func New(opts ...Option) (*Translator, error) {
	t := &Translator{
		logger:    zap.NewNop(),
		shots:     emit.DefaultShots,
		cacheSize: defaultCacheSize,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.cacheSize > 0 {
		cache, err := lru.New[cacheKey, string](t.cacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "new translator")
		}
		t.cache = cache
	}
	return t, nil
}

// Parse parses and resolves text, logging the circuit size.
func (t *Translator) Parse(text string) (*circuit.Circuit, error) {
	c, err := Parse(text)
	if err != nil {
		t.logger.Debug("translation failed", zap.Error(err))
		return nil, err
	}
	t.logger.Debug(
		"resolved circuit",
		zap.Int("qubits", c.NumQubits()),
		zap.Int("clbits", c.NumClbits()),
		zap.Int("instructions", len(c.Instructions)),
	)
	return c, nil
}

// Emit renders a resolved circuit for platform and backend.
func (t *Translator) Emit(c *circuit.Circuit, platform emit.Platform, backend string) (string, error) {
	e, err := emit.New(platform, emit.WithShots(t.shots))
	if err != nil {
		return "", errors.Wrap(err, "emit")
	}
	out, err := e.Emit(c, backend)
	if err != nil {
		return "", errors.Wrapf(err, "emit %s", platform)
	}
	t.logger.Debug(
		"emitted program",
		zap.String("platform", platform.String()),
		zap.String("backend", backend),
		zap.Int("bytes", len(out)),
	)
	return out, nil
}

// Translate runs the whole pipeline. The backend is checked before any
// parsing so a bad request fails without touching the source.
func (t *Translator) Translate(text string, platform emit.Platform, backend string) (string, error) {
	if err := emit.ValidateBackend(platform, backend); err != nil {
		return "", errors.Wrap(err, "translate")
	}

	key := cacheKey{text: text, platform: platform, backend: backend}
	if t.cache != nil {
		if out, ok := t.cache.Get(key); ok {
			t.logger.Debug("cache hit", zap.String("platform", platform.String()))
			return out, nil
		}
	}

	c, err := t.Parse(text)
	if err != nil {
		return "", err
	}
	out, err := t.Emit(c, platform, backend)
	if err != nil {
		return "", err
	}
	if t.cache != nil {
		t.cache.Add(key, out)
	}
	return out, nil
}
