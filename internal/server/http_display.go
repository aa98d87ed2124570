package server

import (
	"fmt"

	"resumechat/internal/utils"
)

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET    /health                          - Health check")
	fmt.Println("  GET    /stats                           - Server statistics")
	fmt.Println("  POST   /sessions                        - Start a resume conversation")
	fmt.Println("  GET    /sessions/{id}                   - Session state and history")
	fmt.Println("  DELETE /sessions/{id}                   - Discard a session")
	fmt.Println("  POST   /sessions/{id}/basic-info        - Submit name, email, phone, portfolio")
	fmt.Println("  POST   /sessions/{id}/messages          - Send a chat message")
	fmt.Println("  POST   /sessions/{id}/confirm           - Move on to the next step")
	fmt.Println("  POST   /sessions/{id}/decline           - Keep talking about the current step")
	fmt.Println("  POST   /sessions/{id}/edit              - Go back to an earlier step")
	fmt.Println("  POST   /sessions/{id}/restart           - Start over")
	fmt.Println("  GET    /sessions/{id}/resume            - Review the assembled resume")
	fmt.Println("  GET    /sessions/{id}/resume/download   - Download as text, markdown or json")
	fmt.Printf("Completion policy: %s, session store: %s\n", s.Controller.Policy(), s.Sessions.StoreKind())
}

// displayAuthInfo shows authentication configuration
func (s *Server) displayAuthInfo() {
	if len(s.APIKeys) > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
		fmt.Println("Include 'X-API-Key: <your-key>' header in requests to /sessions")
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
		fmt.Println("WARNING: API endpoints are publicly accessible!")
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %s\n", utils.FormatFileSize(s.MaxRequestSize))
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			fmt.Println("  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
		fmt.Println("WARNING: No rate limiting configured!")
	}
}
