package model

// Status is the body of GET /.
type Status struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	TotalPrizes     int    `json:"total_prizes"`
	SecurityEnabled bool   `json:"security_enabled"`
	Message         string `json:"message"`
}

// SecurityInfo is the body of GET /security/info.
type SecurityInfo struct {
	Authentication     string              `json:"authentication"`
	RateLimits         map[string]string   `json:"rate_limits"`
	ProtectedEndpoints map[string][]string `json:"protected_endpoints"`
	AdminOnly          []string            `json:"admin_only"`
	Message            string              `json:"message"`
}
