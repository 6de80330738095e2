package extract

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/yungbote/walsgraph/internal/graph"
)

// Rule is a post-processing step over a freshly decoded extraction result.
// Rules mutate the result in place and run in registration order.
type Rule interface {
	Apply(*Result)
}

func DefaultRules() []Rule {
	return []Rule{AmbiguousIDRule{}}
}

// AmbiguousIDRule repairs the node id "ID", which the model produces both
// for Indonesia (whose country code is literally ID) and for stray
// identifier text. A node whose properties mention Indonesia becomes
// Indonesia_Country; anything else gets a stable hashed id so it cannot
// collide with real entities. Relationship endpoints follow the renames.
type AmbiguousIDRule struct{}

func (AmbiguousIDRule) Apply(res *Result) {
	// Each occurrence is renamed on its own. Endpoints pointing at "ID"
	// cannot name a specific occurrence, so they are retargeted to the
	// Indonesia rename when one exists, otherwise to the first rename.
	target := ""
	for i := range res.Nodes {
		n := &res.Nodes[i]
		if n.ID != "ID" {
			continue
		}
		newID := fmt.Sprintf("Entity_ID_%d", hashID(n)%10000)
		if mentionsIndonesia(n.Props) {
			newID = "Indonesia_Country"
		}
		n.ID = newID
		if target == "" || newID == "Indonesia_Country" {
			target = newID
		}
	}

	if target == "" {
		return
	}
	for i := range res.Rels {
		if res.Rels[i].SourceID == "ID" {
			res.Rels[i].SourceID = target
		}
		if res.Rels[i].TargetID == "ID" {
			res.Rels[i].TargetID = target
		}
	}
}

func mentionsIndonesia(props map[string]any) bool {
	for _, v := range props {
		s, ok := v.(string)
		if !ok {
			continue
		}
		lower := strings.ToLower(s)
		if strings.Contains(lower, "indonesia") || strings.Contains(lower, "indonesian") {
			return true
		}
	}
	return false
}

func hashID(n *graph.ExtractedNode) uint32 {
	keys := make([]string, 0, len(n.Props))
	for k := range n.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := fnv.New32a()
	h.Write([]byte(n.Label))
	for _, k := range keys {
		h.Write([]byte(k))
		if s, ok := n.Props[k].(string); ok {
			h.Write([]byte(s))
		}
	}
	return h.Sum32()
}
