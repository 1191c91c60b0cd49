package observability

// RedactKey masks an API key for logging, keeping the last four characters.
// Short keys are masked entirely.
func RedactKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
