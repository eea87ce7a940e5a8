package domain

// Snapshot is the persisted per-user blob
type Snapshot struct {
	Hubs           []Hub          `json:"hubs"`
	Meetings       []Meeting      `json:"meetings"`
	ChatbotHistory []ChatbotEntry `json:"chatbotHistory"`
}
