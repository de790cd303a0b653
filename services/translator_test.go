package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"rustore-scout/utils"
)

type fakeClient struct {
	mu    sync.Mutex
	calls int
	reply string
	err   error
	// sawDeadline records whether every call carried a deadline
	sawDeadline bool
}

func (f *fakeClient) Translate(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	_, ok := ctx.Deadline()
	f.sawDeadline = ok
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestTranslator(client TranslationClient, cache TranslationCache) *Translator {
	retry := &utils.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Logger: utils.NewSilentLogger()}
	return NewTranslator(client, cache, retry, time.Second, utils.NewSilentLogger())
}

func TestTranslatorSkipsCyrillic(t *testing.T) {
	client := &fakeClient{reply: "ignored"}
	tr := newTestTranslator(client, nil)

	for _, text := range []string{"фоторедактор", "погода radar"} {
		if got := tr.Translate(context.Background(), text); got != text {
			t.Errorf("Translate(%q) = %q; want unchanged", text, got)
		}
	}
	if client.calls != 0 {
		t.Errorf("client calls: got %d, want 0", client.calls)
	}
}

func TestTranslatorCachesResult(t *testing.T) {
	client := &fakeClient{reply: "фоторедактор"}
	cache := NewMemoryCache()
	tr := newTestTranslator(client, cache)

	for i := 0; i < 3; i++ {
		if got := tr.Translate(context.Background(), "photo editor"); got != "фоторедактор" {
			t.Fatalf("Translate = %q; want фоторедактор", got)
		}
	}
	if client.calls != 1 {
		t.Errorf("client calls: got %d, want 1", client.calls)
	}
	if !client.sawDeadline {
		t.Error("expected the call context to carry a per-call timeout")
	}
	if cache.Len() != 1 {
		t.Errorf("cache size: got %d, want 1", cache.Len())
	}
}

func TestTranslatorFallsBackAfterRetries(t *testing.T) {
	client := &fakeClient{err: errors.New("503 service unavailable")}
	tr := newTestTranslator(client, nil)

	if got := tr.Translate(context.Background(), "flashlight"); got != "flashlight" {
		t.Errorf("Translate = %q; want original", got)
	}
	if client.calls != 3 {
		t.Errorf("client calls: got %d, want 3", client.calls)
	}
}

func TestTranslatorTreatsEmptyReplyAsFailure(t *testing.T) {
	client := &fakeClient{reply: "   "}
	tr := newTestTranslator(client, nil)

	if got := tr.Translate(context.Background(), "flashlight"); got != "flashlight" {
		t.Errorf("Translate = %q; want original", got)
	}
	if client.calls != 3 {
		t.Errorf("client calls: got %d, want 3", client.calls)
	}
}

func TestTranslatorIgnoresEcho(t *testing.T) {
	client := &fakeClient{reply: "VPN"}
	cache := NewMemoryCache()
	tr := newTestTranslator(client, cache)

	if got := tr.Translate(context.Background(), "vpn"); got != "vpn" {
		t.Errorf("Translate = %q; want original", got)
	}
	if cache.Len() != 0 {
		t.Errorf("echoed translation should not be cached")
	}
}

func TestMemoryCacheConcurrent(t *testing.T) {
	cache := NewMemoryCache()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%10)
			cache.Set(key, "v")
			cache.Get(key)
		}(i)
	}
	wg.Wait()
	if cache.Len() != 10 {
		t.Errorf("cache size: got %d, want 10", cache.Len())
	}
}

func TestContainsCyrillic(t *testing.T) {
	tests := map[string]bool{
		"photo":        false,
		"фото":         true,
		"VPN прокси":   true,
		"":             false,
		"Ελληνικά 123": false,
	}
	for in, want := range tests {
		if got := ContainsCyrillic(in); got != want {
			t.Errorf("ContainsCyrillic(%q) = %v; want %v", in, got, want)
		}
	}
}
