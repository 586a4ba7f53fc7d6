package tui

// UI Text Constants
const (
	TextTitle = "BrandPulse Analysis"

	TextPromptLabel       = "Analysis prompt"
	TextPromptPlaceholder = "What should be analyzed? e.g. Describe the brand voice and audience."
	TextInputLabel        = "Brand / context"
	TextInputPlaceholder  = "Paste the brand description, copy or context here."

	TextSubmitButton     = "[ Analyze ]"
	TextSubmittingButton = "[ Analyzing... ]"
	TextLoading          = "Analyzing..."
	TextResultHeading    = "Result"
	TextErrorHeading     = "Error"

	// Footer
	TextFooterIdle    = "tab: switch field | ctrl+s: analyze | esc/ctrl+c: quit"
	TextFooterRunning = "waiting for the analysis service | esc/ctrl+c: quit"
)
