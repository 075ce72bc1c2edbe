package search

// DefaultSynonyms is the built-in expansion table for developer-workflow
// vocabulary. A query token that appears as a key also searches for its
// values. The table is one-directional and deliberately small; deployments
// with a different vocabulary replace it wholesale from configuration.
func DefaultSynonyms() map[string][]string {
	return map[string][]string{
		"api":         {"endpoint", "rest", "http"},
		"auth":        {"authentication", "login", "oauth"},
		"backend":     {"server", "service"},
		"bug":         {"error", "issue", "defect"},
		"config":      {"configuration", "settings", "setup"},
		"database":    {"db", "sql", "storage"},
		"deploy":      {"deployment", "release", "ship"},
		"docs":        {"documentation", "readme"},
		"error":       {"bug", "exception", "failure"},
		"fix":         {"solve", "repair", "patch"},
		"frontend":    {"ui", "client"},
		"login":       {"auth", "signin"},
		"performance": {"perf", "optimization", "speed"},
		"test":        {"testing", "spec", "unit"},
	}
}
