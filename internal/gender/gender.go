// Package gender resolves given names to gender labels through a layered
// chain: persistent cache, offline dictionary, probabilistic web service,
// then batch LLM classification.
package gender

// Gender labels stored on author records. Other never comes out of the
// chain; it is accepted from manual annotation and carried through queries.
const (
	Male    = "male"
	Female  = "female"
	Unknown = "unknown"
	Other   = "other"
)

// Sources name the tier that produced a result.
const (
	SourceDictionary  = "dictionary"
	SourceService     = "genderize"
	SourceLLM         = "llm"
	SourceLLMUnparsed = "llm_unparsed"
	SourceTooShort    = "too_short"
)

// Result is one name's resolved gender with provenance. PFemale is the
// probability that the name is female (P(male) = 1 - PFemale); nil when the
// name is unresolved.
type Result struct {
	Gender  string   `json:"gender"`
	PFemale *float64 `json:"p_female"`
	Source  string   `json:"source"`
}

func ptr(v float64) *float64 {
	return &v
}
