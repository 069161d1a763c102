package ledger

import "strings"

// Accounts are addressed by keys derived from their identifying fields.
// Lookups are always by key, never by scanning.

// KeySeparator joins the parts of an address. Identities may not contain it,
// so two different keys never render to the same journal account.
const KeySeparator = "/"

func validIdentity(s string) bool {
	return s != "" && !strings.Contains(s, KeySeparator)
}

type AgentKey struct {
	Owner   string `json:"owner"`
	AgentID string `json:"agent_id"`
}

func (k AgentKey) String() string {
	return "agent/" + k.Owner + "/" + k.AgentID
}

type EscrowKey struct {
	Agent AgentKey `json:"agent"`
	Owner string   `json:"owner"`
}

func (k EscrowKey) String() string {
	return "escrow/" + k.Agent.String() + "/" + k.Owner
}

type EventKey struct {
	Organizer string `json:"organizer"`
	EventID   string `json:"event_id"`
}

func (k EventKey) String() string {
	return "event/" + k.Organizer + "/" + k.EventID
}

type TierKey struct {
	Event  EventKey `json:"event"`
	TierID string   `json:"tier_id"`
}

func (k TierKey) String() string {
	return "tier/" + k.Event.String() + "/" + k.TierID
}

// TallyKey addresses the per-(agent, event) purchase counter.
type TallyKey struct {
	Agent AgentKey `json:"agent"`
	Event EventKey `json:"event"`
}

func (k TallyKey) String() string {
	return "tally/" + k.Agent.String() + "/" + k.Event.String()
}

// EscrowKeyFor is the escrow address of an agent funded by its owner.
func EscrowKeyFor(agent AgentKey) EscrowKey {
	return EscrowKey{Agent: agent, Owner: agent.Owner}
}
