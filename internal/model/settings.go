package model

// Setting is one records-service configuration entry. Secret settings
// (the extraction API key) only report whether they are configured;
// their value is never echoed back.
type Setting struct {
	Value      string `json:"value,omitempty"`
	Configured bool   `json:"configured"`
}

// Known setting keys on the records service.
const (
	SettingOpenAIKey     = "openai_api_key"
	SettingMaxFileSize   = "max_file_size"
	SettingRetentionDays = "retention_days"
)

// Settings maps setting key to entry.
type Settings map[string]Setting

// UpdateSettingRequest carries one setting write.
type UpdateSettingRequest struct {
	Value string `json:"value" binding:"required"`
}
