package prompt

// LocaleEntry is one message awaiting translation.
type LocaleEntry struct {
	Key  string
	Text string
}

type LocaleTranslatorPromptVars struct {
	SourceLanguage string
	TargetLanguage string
	Entries        []LocaleEntry
}

func BuildLocaleTranslatorPrompt(vars LocaleTranslatorPromptVars) (string, error) {
	return DefaultPromptBuilder().Render(TemplateLocaleTranslator, vars)
}
