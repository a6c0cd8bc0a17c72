package command

import "maps"

// Well-known metadata keys used by Map.
const (
	MetaStoryID   = "story_id"
	MetaAgentName = "agent_name"
	MetaModelName = "model_name"
	MetaOperation = "operation"
)

// Metadata is observability data attached to a command. The well-known fields
// are used for UI display; Extra holds any other tags.
//
// Metadata is a value type. With and Merge return copies and never modify the
// receiver, so metadata handed to the dispatcher cannot change afterwards.
type Metadata struct {
	StoryID   string
	AgentName string
	ModelName string
	Operation string
	Extra     map[string]string
}

// With returns a copy with an extra tag set.
func (m Metadata) With(key, value string) Metadata {
	out := m.clone()
	if out.Extra == nil {
		out.Extra = make(map[string]string, 1)
	}
	out.Extra[key] = value
	return out
}

// Merge returns a copy where non-empty fields of other override m.
func (m Metadata) Merge(other Metadata) Metadata {
	out := m.clone()
	if other.StoryID != "" {
		out.StoryID = other.StoryID
	}
	if other.AgentName != "" {
		out.AgentName = other.AgentName
	}
	if other.ModelName != "" {
		out.ModelName = other.ModelName
	}
	if other.Operation != "" {
		out.Operation = other.Operation
	}
	if len(other.Extra) > 0 {
		if out.Extra == nil {
			out.Extra = make(map[string]string, len(other.Extra))
		}
		maps.Copy(out.Extra, other.Extra)
	}
	return out
}

// Map flattens the metadata into a fresh map. Well-known fields win over
// Extra entries with the same key. Empty fields are omitted.
func (m Metadata) Map() map[string]string {
	out := make(map[string]string, len(m.Extra)+4)
	maps.Copy(out, m.Extra)
	set := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	set(MetaStoryID, m.StoryID)
	set(MetaAgentName, m.AgentName)
	set(MetaModelName, m.ModelName)
	set(MetaOperation, m.Operation)
	return out
}

// IsZero reports whether no field is set.
func (m Metadata) IsZero() bool {
	return m.StoryID == "" && m.AgentName == "" && m.ModelName == "" && m.Operation == "" && len(m.Extra) == 0
}

func (m Metadata) clone() Metadata {
	out := m
	if m.Extra != nil {
		out.Extra = maps.Clone(m.Extra)
	}
	return out
}
