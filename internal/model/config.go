package model

// AppConfig is the singleton concierge configuration edited from the admin
// console.
type AppConfig struct {
	SystemPrompt  string `json:"systemPrompt"`
	KnowledgeBase string `json:"knowledgeBase"`
}

// ConfigPatch carries a partial update; nil fields are left unchanged.
type ConfigPatch struct {
	SystemPrompt  *string
	KnowledgeBase *string
}

// Apply merges the patch into c.
func (c *AppConfig) Apply(patch ConfigPatch) {
	if patch.SystemPrompt != nil {
		c.SystemPrompt = *patch.SystemPrompt
	}
	if patch.KnowledgeBase != nil {
		c.KnowledgeBase = *patch.KnowledgeBase
	}
}
