package travel

// ItemType classifies a node in the travel knowledge base.
type ItemType string

const (
	ItemTypeCity       ItemType = "city"
	ItemTypeAttraction ItemType = "attraction"
	ItemTypeHotel      ItemType = "hotel"
	ItemTypeActivity   ItemType = "activity"
	ItemTypeRegion     ItemType = "region"

	// ItemTypeTag marks tag pseudo-items inside the graph store. Tags are
	// traversed to connect items sharing them but are never returned as hits.
	ItemTypeTag ItemType = "tag"
)

// RelationType identifies the kind of edge between two items.
type RelationType string

const (
	RelationLocatedIn   RelationType = "LOCATED_IN"
	RelationInRegion    RelationType = "IN_REGION"
	RelationConnectedTo RelationType = "CONNECTED_TO"
	RelationSameCity    RelationType = "SAME_CITY"
	RelationSimilarTags RelationType = "SIMILAR_TAGS"
	RelationHasTag      RelationType = "HAS_TAG"
)

// Origin marks which retrieval path produced a hit.
type Origin string

const (
	OriginVector Origin = "vector"
	OriginGraph  Origin = "graph"
)

// Item represents a node in the travel knowledge base: a city, attraction,
// hotel, activity, or region. Items are created at index-build time and are
// read-only from the retrieval engine's perspective.
type Item struct {
	ID           string   `json:"id"`
	Type         ItemType `json:"type"`
	Name         string   `json:"name"`
	City         string   `json:"city,omitempty"`
	Region       string   `json:"region,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Description  string   `json:"description,omitempty"`
	SemanticText string   `json:"semantic_text,omitempty"`
	BestTime     string   `json:"best_time_to_visit,omitempty"`

	Embedding []float32 `json:"-"`
}

// Relation is a typed directed edge between two item identifiers. It carries
// no identity beyond (source, target, type).
type Relation struct {
	Source string       `json:"source"`
	Target string       `json:"target"`
	Type   RelationType `json:"type"`
}

// RetrievalHit is a single scored result from either vector retrieval or
// graph enrichment. Hits are per-query and discarded once the query completes.
type RetrievalHit struct {
	Item   Item    `json:"item"`
	Score  float64 `json:"score"`
	Origin Origin  `json:"origin"`

	// Hops is the edge distance from the nearest vector seed. Zero for
	// vector hits.
	Hops int `json:"hops,omitempty"`
	// Seed is the vector seed the hit was reached from (origin=graph).
	Seed string `json:"seed,omitempty"`
	// Relation is the strongest relation type on the connecting path
	// (origin=graph).
	Relation RelationType `json:"relation,omitempty"`
}

// FusedItem is one entry of a FusedContext: an item together with its
// combined score and the provenance of how it entered the context.
type FusedItem struct {
	Item   Item    `json:"item"`
	Score  float64 `json:"score"`
	Origin Origin  `json:"origin"`

	Seed     string       `json:"seed,omitempty"`
	Relation RelationType `json:"relation,omitempty"`
	Hops     int          `json:"hops,omitempty"`
}

// FusedContext is the ranked, deduplicated context set handed to the
// generation step. Item ids are unique and entries are sorted by combined
// score descending with a stable item-id tie-break.
type FusedContext struct {
	Items []FusedItem `json:"items"`

	// Degraded reports that at least one upstream dependency (embedding
	// provider, vector index, graph store) failed and the context was built
	// from fallback or partial results.
	Degraded bool `json:"degraded,omitempty"`
}

// IDs returns the item identifiers of the context in ranked order.
func (f FusedContext) IDs() []string {
	ids := make([]string, 0, len(f.Items))
	for _, it := range f.Items {
		ids = append(ids, it.Item.ID)
	}
	return ids
}
