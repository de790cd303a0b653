package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"rustore-scout/utils"
)

// ErrNoTranslation is returned by clients that got no usable translation.
var ErrNoTranslation = errors.New("no translation")

// TranslationClient performs one request/response translation call.
// A missing translation must be reported as an error, never as the input.
type TranslationClient interface {
	Translate(ctx context.Context, text string) (string, error)
}

// TranslationCache stores translations for the lifetime of the process.
// Implementations must be safe for concurrent use.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// MemoryCache is an in-process TranslationCache.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]string)}
}

func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *MemoryCache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Translator wraps a TranslationClient with caching, retries and fallback
// to the original text.
type Translator struct {
	client  TranslationClient
	cache   TranslationCache
	retry   *utils.RetryConfig
	timeout time.Duration
	logger  *utils.Logger
}

// NewTranslator creates a Translator. timeout bounds every single attempt.
func NewTranslator(client TranslationClient, cache TranslationCache, retry *utils.RetryConfig, timeout time.Duration, logger *utils.Logger) *Translator {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if retry == nil {
		retry = utils.DefaultRetry(logger)
	}
	return &Translator{
		client:  client,
		cache:   cache,
		retry:   retry,
		timeout: timeout,
		logger:  logger,
	}
}

// Translate returns the target-language form of text, or text itself when
// it is already Cyrillic or translation failed.
func (t *Translator) Translate(ctx context.Context, text string) string {
	if ContainsCyrillic(text) {
		return text
	}
	if cached, ok := t.cache.Get(text); ok {
		return cached
	}

	var translated string
	err := t.retry.Do(ctx, fmt.Sprintf("translate %q", text), func(ctx context.Context) error {
		callCtx := ctx
		if t.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, t.timeout)
			defer cancel()
		}

		out, err := t.client.Translate(callCtx, text)
		if err != nil {
			return err
		}
		translated = strings.TrimSpace(out)
		if translated == "" {
			return ErrNoTranslation
		}
		return nil
	})
	if err != nil {
		t.logger.Warn("[translator] Keeping original %q: %v", text, err)
		return text
	}

	if strings.EqualFold(translated, text) {
		return text
	}

	t.cache.Set(text, translated)
	return translated
}

// ContainsCyrillic reports whether s has at least one Cyrillic letter.
func ContainsCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}
