package helpchat

import (
	"context"
	"fmt"
	"strings"

	"github.com/Stefan/ppm-saas-sub001/internal/ai"
	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
)

// Language describes one entry in the static supported-language list,
// grounded on the original's SUPPORTED_LANGUAGES table.
type Language struct {
	Code       string
	Name       string
	NativeName string
	FormalTone bool
}

// SupportedLanguages is the static list returned to callers regardless of
// whether a live translation backend is configured, so language selection
// keeps working even when the chat model is unavailable.
var SupportedLanguages = []Language{
	{Code: "en", Name: "English", NativeName: "English", FormalTone: false},
	{Code: "de", Name: "German", NativeName: "Deutsch", FormalTone: true},
	{Code: "fr", Name: "French", NativeName: "Français", FormalTone: true},
	{Code: "es", Name: "Spanish", NativeName: "Español", FormalTone: false},
	{Code: "pl", Name: "Polish", NativeName: "Polski", FormalTone: false},
	{Code: "gsw", Name: "Swiss German", NativeName: "Baseldytsch", FormalTone: false},
}

// IsSupportedLanguage reports whether code is one of SupportedLanguages.
func IsSupportedLanguage(code string) bool {
	for _, lang := range SupportedLanguages {
		if lang.Code == code {
			return true
		}
	}
	return false
}

// Translator detects and translates help-chat content. Service.Query uses
// Translate to turn the English response into the requested language; the
// query itself reaches the RAG pipeline untranslated, and Service does not
// call Detect.
type Translator interface {
	Detect(ctx context.Context, text string) (language string, confidence float64, err error)
	Translate(ctx context.Context, content, sourceLanguage, targetLanguage string) (string, error)
}

// ChatTranslator implements Translator on top of the same chat-completion
// client the RAG engine uses, rather than a dedicated translation API —
// the original's TranslationService does the equivalent against its
// OpenAI-compatible client.
type ChatTranslator struct {
	chat ai.ChatClient
}

// NewChatTranslator constructs a ChatTranslator.
func NewChatTranslator(chat ai.ChatClient) *ChatTranslator {
	return &ChatTranslator{chat: chat}
}

// Detect asks the chat model to name the language of text. Confidence is
// fixed at 0.9 for a returned supported code and 0.5 otherwise — the model
// isn't asked to self-report a calibrated score.
func (t *ChatTranslator) Detect(ctx context.Context, text string) (string, float64, error) {
	if strings.TrimSpace(text) == "" {
		return "", 0, apperr.ValidationMessage("content is required for language detection")
	}

	prompt := fmt.Sprintf("Identify the ISO 639-1 (or gsw) language code of the following text. Respond with only the code.\n\n%s", text)
	out, err := t.chat.Complete(ctx, "You are a language identification assistant.", prompt)
	if err != nil {
		return "", 0, apperr.DependencyUnavailable("chat_model", err)
	}

	code := strings.ToLower(strings.TrimSpace(out))
	if IsSupportedLanguage(code) {
		return code, 0.9, nil
	}
	return "en", 0.5, nil
}

// Translate asks the chat model to translate content between two supported
// languages, preserving the target language's formal/informal register per
// SupportedLanguages[*].FormalTone.
func (t *ChatTranslator) Translate(ctx context.Context, content, sourceLanguage, targetLanguage string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", apperr.ValidationMessage("content is required for translation")
	}
	if !IsSupportedLanguage(sourceLanguage) {
		return "", apperr.ValidationMessage("unsupported source language: " + sourceLanguage)
	}
	if !IsSupportedLanguage(targetLanguage) {
		return "", apperr.ValidationMessage("unsupported target language: " + targetLanguage)
	}
	if sourceLanguage == targetLanguage {
		return content, nil
	}

	tone := "informal"
	for _, lang := range SupportedLanguages {
		if lang.Code == targetLanguage && lang.FormalTone {
			tone = "formal"
		}
	}

	prompt := fmt.Sprintf("Translate the following text from %s to %s, using a %s tone. Respond with only the translation.\n\n%s",
		sourceLanguage, targetLanguage, tone, content)
	out, err := t.chat.Complete(ctx, "You are a precise, concise translation assistant.", prompt)
	if err != nil {
		return "", apperr.DependencyUnavailable("chat_model", err)
	}
	return strings.TrimSpace(out), nil
}
