package domain

// Capability names a single permitted quote operation.
type Capability string

const (
	CapabilityQuotesCreate Capability = "QUOTES_CREATE"
	CapabilityQuotesUpdate Capability = "QUOTES_UPDATE"
)

// PermissionContext is the caller's resolved capability set, built once per
// request and checked at the top of every lifecycle operation.
type PermissionContext struct {
	ActorID      string
	capabilities map[Capability]struct{}
}

// NewPermissionContext builds a context for the acting staff member.
func NewPermissionContext(actorID string, capabilities ...Capability) PermissionContext {
	set := make(map[Capability]struct{}, len(capabilities))
	for _, capability := range capabilities {
		set[capability] = struct{}{}
	}
	return PermissionContext{ActorID: actorID, capabilities: set}
}

// Has reports whether the caller holds the capability.
func (p PermissionContext) Has(capability Capability) bool {
	_, ok := p.capabilities[capability]
	return ok
}
