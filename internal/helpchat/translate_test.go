package helpchat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatClient struct {
	completion string
	err        error
}

func (f *fakeChatClient) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 1}, nil
}

func (f *fakeChatClient) Complete(_ context.Context, _, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.completion, nil
}

func TestIsSupportedLanguage(t *testing.T) {
	assert.True(t, IsSupportedLanguage("de"))
	assert.True(t, IsSupportedLanguage("gsw"))
	assert.False(t, IsSupportedLanguage("xx"))
}

func TestChatTranslatorDetect(t *testing.T) {
	translator := NewChatTranslator(&fakeChatClient{completion: "de"})

	lang, confidence, err := translator.Detect(context.Background(), "Wie erstelle ich ein neues Projekt?")
	require.NoError(t, err)
	assert.Equal(t, "de", lang)
	assert.Greater(t, confidence, 0.5)
}

func TestChatTranslatorDetectUnknownFallsBackToEnglish(t *testing.T) {
	translator := NewChatTranslator(&fakeChatClient{completion: "not a real language code"})

	lang, confidence, err := translator.Detect(context.Background(), "???")
	require.NoError(t, err)
	assert.Equal(t, "en", lang)
	assert.Less(t, confidence, 0.9)
}

func TestChatTranslatorTranslateRejectsUnsupportedLanguage(t *testing.T) {
	translator := NewChatTranslator(&fakeChatClient{completion: "hola"})

	_, err := translator.Translate(context.Background(), "hello", "en", "xx")
	assert.Error(t, err)
}

func TestChatTranslatorTranslateSameLanguageIsNoop(t *testing.T) {
	translator := NewChatTranslator(&fakeChatClient{completion: "should not be called"})

	out, err := translator.Translate(context.Background(), "hello", "en", "en")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestChatTranslatorTranslatePropagatesModelFailure(t *testing.T) {
	translator := NewChatTranslator(&fakeChatClient{err: errors.New("model down")})

	_, err := translator.Translate(context.Background(), "hello", "en", "de")
	assert.Error(t, err)
}
