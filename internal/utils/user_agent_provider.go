package utils

//go:generate $MOCKGEN -source=user_agent_provider.go -destination=mocks/user_agent_provider_mock.go

import (
	"strings"
	"sync/atomic"
)

// UserAgentProvider is an interface that defines a method for retrieving a User-Agent string.
type UserAgentProvider interface {
	// GetUserAgent returns a User-Agent string.
	GetUserAgent() string
}

// SimpleUserAgentProvider always returns the User-Agent it was created with.
type SimpleUserAgentProvider struct {
	userAgent string
}

// RotatingUserAgentProvider cycles through a fixed list of User-Agent strings.
// It is safe for concurrent use.
type RotatingUserAgentProvider struct {
	userAgents []string
	next       atomic.Uint64
}

// NewSimpleUserAgentProvider creates and returns a new instance of SimpleUserAgentProvider.
func NewSimpleUserAgentProvider(userAgent string) UserAgentProvider {
	return &SimpleUserAgentProvider{userAgent: userAgent}
}

// NewUserAgentProvider returns a rotating provider for several non-empty agents,
// a simple provider for exactly one, and a simple provider with fallback otherwise.
func NewUserAgentProvider(userAgents []string, fallback string) UserAgentProvider {
	cleaned := make([]string, 0, len(userAgents))

	for _, ua := range userAgents {
		if ua = strings.TrimSpace(ua); ua != "" {
			cleaned = append(cleaned, ua)
		}
	}

	switch len(cleaned) {
	case 0:
		return NewSimpleUserAgentProvider(fallback)
	case 1:
		return NewSimpleUserAgentProvider(cleaned[0])
	default:
		return &RotatingUserAgentProvider{userAgents: cleaned}
	}
}

// GetUserAgent returns a User-Agent string.
func (p *SimpleUserAgentProvider) GetUserAgent() string {
	return p.userAgent
}

// GetUserAgent returns the next User-Agent in round-robin order.
func (p *RotatingUserAgentProvider) GetUserAgent() string {
	idx := p.next.Add(1) - 1

	return p.userAgents[idx%uint64(len(p.userAgents))]
}
