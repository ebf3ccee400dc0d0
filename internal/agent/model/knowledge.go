package model

// KnowledgeSection is a labelled block of reference facts.
type KnowledgeSection struct {
	Category string   `yaml:"category" json:"category"`
	Topic    string   `yaml:"topic" json:"topic"`
	Keywords []string `yaml:"keywords" json:"keywords"`
	Facts    string   `yaml:"facts" json:"facts"`
	Priority int      `yaml:"priority" json:"priority"`
}
