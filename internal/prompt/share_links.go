package prompt

// ShareLinksPromptVars holds variables for the share link prompt template
type ShareLinksPromptVars struct {
	Name        string
	Designation string
	CardURL     string
	Company     string
	Socials     map[string]string
}

// BuildShareLinksPrompt renders the share link prompt with its preset and system instruction.
func (pb *PromptBuilder) BuildShareLinksPrompt(vars ShareLinksPromptVars) (Prompt, error) {
	return pb.Build(TemplateShareLinks, vars)
}
