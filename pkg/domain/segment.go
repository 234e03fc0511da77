package domain

// Segment is one labeled piece of a decoded code.
type Segment struct {
	NodeName string   `json:"node_name" yaml:"node_name"`
	Value    string   `json:"value" yaml:"value"`
	Meaning  string   `json:"meaning" yaml:"meaning"`
	Type     NodeType `json:"type" yaml:"type"`
}

// Decoding is a successful, fully-consuming decode.
type Decoding struct {
	Code     string    `json:"code"`
	RootID   int64     `json:"root_id"`
	RuleID   int64     `json:"rule_id"`
	Segments []Segment `json:"segments"`
}

// Pick selects one node on a root-to-leaf path when composing a code.
// STATIC picks name the chosen OPTION; INPUT and SERIAL picks carry a value.
type Pick struct {
	NodeID   int64  `json:"node_id" mapstructure:"node_id"`
	OptionID int64  `json:"option_id,omitempty" mapstructure:"option_id"`
	Value    string `json:"value,omitempty" mapstructure:"value"`
}

// Composition is the result of assembling a code from picks.
type Composition struct {
	Code     string    `json:"code"`
	RuleID   int64     `json:"rule_id"`
	Segments []Segment `json:"segments"`
	// Complete is true when the last picked node has no further segments.
	Complete bool `json:"complete"`
	// LengthOK is true when the code length equals the rule's total length.
	LengthOK bool `json:"length_ok"`
}
