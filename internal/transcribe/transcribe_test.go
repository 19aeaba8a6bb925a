package transcribe

import (
	"context"
	"testing"
)

func TestFactory(t *testing.T) {
	ctx := context.Background()

	tr, err := Factory(ctx, ProviderOpenAI, "fake-key", Options{})
	if err != nil {
		t.Fatalf("Factory(ProviderOpenAI) returned error: %v", err)
	}
	if _, ok := tr.(*OpenAITranscriber); !ok {
		t.Errorf("expected *OpenAITranscriber, got %T", tr)
	}

	tr, err = Factory(ctx, ProviderGemini, "fake-key", Options{})
	if err != nil {
		t.Fatalf("Factory(ProviderGemini) returned error: %v", err)
	}
	if _, ok := tr.(*GeminiTranscriber); !ok {
		t.Errorf("expected *GeminiTranscriber, got %T", tr)
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	if _, err := Factory(context.Background(), Provider("whisper-local"), "fake-key", Options{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	for _, p := range []Provider{ProviderOpenAI, ProviderGemini} {
		if _, err := Factory(context.Background(), p, "", Options{}); err == nil {
			t.Errorf("%s: expected error for missing API key", p)
		}
	}
}
