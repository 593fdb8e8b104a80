package models

// ChatRequest represents an incoming chat message.
type ChatRequest struct {
	Message             string     `json:"message"`
	ConversationHistory []ChatTurn `json:"conversationHistory"`
}

// ChatEnvelope represents a response to a chat request.
type ChatEnvelope struct {
	Success bool          `json:"success"`
	Message *ChatResponse `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Row represents a single result row keyed by column name. NULL values are kept as nil entries.
type Row map[string]interface{}

// QueryResult represents the result of a guarded query execution.
type QueryResult struct {
	Success bool     `json:"success"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
	Error   string   `json:"error,omitempty"`
}

// NewFailedResult creates a failed query result carrying an error text.
func NewFailedResult(errText string) QueryResult {
	return QueryResult{
		Columns: []string{},
		Rows:    []Row{},
		Error:   errText,
	}
}
