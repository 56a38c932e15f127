package translation

import (
	"context"
	"errors"
	"strings"

	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/provider"
	"github.com/kbukum/linguacast/resilience"
)

// Translator translates text through a Provider behind a shared Spacer.
type Translator struct {
	backend Provider
	spacer  *resilience.Spacer
	cache   Cache
	log     *logger.Logger
}

type Option func(*Translator)

// WithCache enables result caching.
func WithCache(c Cache) Option {
	return func(t *Translator) { t.cache = c }
}

func WithLogger(log *logger.Logger) Option {
	return func(t *Translator) {
		if log != nil {
			t.log = log
		}
	}
}

// New returns a Translator. The spacer must be shared by every Translator
// that talks to the same backend; a nil spacer gets a private one with
// MinInterval.
func New(backend Provider, spacer *resilience.Spacer, opts ...Option) *Translator {
	if spacer == nil {
		spacer = resilience.NewSpacer(MinInterval)
	}
	t := &Translator{backend: backend, spacer: spacer, log: logger.WithComponent("translation")}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the backend name.
func (t *Translator) Name() string { return t.backend.Name() }

// Translate returns text translated from src to tgt. Blank text and
// src == tgt return text unchanged without a backend call. On failure the
// original text is returned with an error matching ErrRateLimited or
// ErrProvider.
func (t *Translator) Translate(ctx context.Context, text, src, tgt string) (string, error) {
	if strings.TrimSpace(text) == "" || src == tgt {
		return text, nil
	}
	req := Request{Text: text, Source: src, Target: tgt}
	log := t.log.WithContext(ctx)

	if t.cache != nil {
		cached, ok, err := t.cache.Get(ctx, req)
		if err != nil {
			log.Warn("translation cache read failed", logger.ErrorFields("cache_get", err))
		} else if ok {
			return cached, nil
		}
	}

	resp, err := resilience.DoValue(ctx, t.spacer, func() (*Response, error) {
		return t.backend.Execute(ctx, req)
	})
	if err == nil && (resp == nil || strings.TrimSpace(resp.Text) == "") {
		err = errors.New("empty translation")
	}
	if err != nil {
		classified := classify(t.backend.Name(), err)
		fields := logger.ErrorFields("translate", err)
		fields["source_lang"], fields["target_lang"] = src, tgt
		log.Warn("translation failed; returning original text", fields)
		return text, classified
	}

	if t.cache != nil {
		if err := t.cache.Set(ctx, req, resp.Text); err != nil {
			log.Warn("translation cache write failed", logger.ErrorFields("cache_set", err))
		}
	}
	return resp.Text, nil
}

// TranslateWithOutcome is Translate plus the outcome tag. Failures are
// degraded because the original text is still usable.
func (t *Translator) TranslateWithOutcome(ctx context.Context, text, src, tgt string) (string, provider.Outcome, error) {
	out, err := t.Translate(ctx, text, src, tgt)
	if err != nil {
		return out, provider.OutcomeDegraded, err
	}
	return out, provider.OutcomeSuccess, nil
}
