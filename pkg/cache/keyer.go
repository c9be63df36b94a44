package cache

// Keyer derives cache keys for pipeline stages.
type Keyer interface {
	// DiagramKey identifies the diagram laid out from a source.
	DiagramKey(sourceHash string, opts DiagramKeyOpts) string
	// ArtifactKey identifies a rendered output of a diagram.
	ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string
}

// DiagramKeyOpts lists every setting that changes a laid-out diagram.
type DiagramKeyOpts struct {
	Language    string  `json:"language"`
	ExpandDepth int     `json:"expand_depth"`
	ExpandAll   bool    `json:"expand_all"`
	LeafText    int     `json:"leaf_text"`
	Anonymous   bool    `json:"anonymous"`
	MaxDepth    int     `json:"max_depth"`
	MaxNodes    int     `json:"max_nodes"`
	RowHeight   float64 `json:"row_height"`
	BoxHeight   float64 `json:"box_height"`
	MinWidth    float64 `json:"min_width"`
	CharWidth   float64 `json:"char_width"`
	Padding     float64 `json:"padding"`
	Strict      bool    `json:"strict"`
}

// ArtifactKeyOpts lists every setting that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Style    string  `json:"style"`
	FontSize float64 `json:"font_size"`
	Scale    float64 `json:"scale"`
	Unit     float64 `json:"unit"`
}

// DefaultKeyer hashes the options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DiagramKey returns "diagram:<sha256>".
func (DefaultKeyer) DiagramKey(sourceHash string, opts DiagramKeyOpts) string {
	return hashKey("diagram", sourceHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", diagramHash, opts)
}

var _ Keyer = DefaultKeyer{}
