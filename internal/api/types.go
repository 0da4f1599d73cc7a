package api

// User is the authenticated account as the backend reports it.
// The API speaks Portuguese on the wire; field names stay as-is in JSON.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"nome"`
	Email string `json:"email"`
}

// AuthResponse is returned by both /api/login and /api/register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// LoginRequest is the payload for /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

// RegisterRequest is the payload for /api/register.
type RegisterRequest struct {
	Name     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"senha"`
}

// ConversationSummary is the listing form of a past conversation.
// Immutable once fetched; the server decides ordering and the client
// never re-sorts.
type ConversationSummary struct {
	ID             int     `json:"id"`
	UserID         int     `json:"user_id"`
	Question       string  `json:"pergunta"`
	AnswerPreview  string  `json:"resposta_preview"`
	Source         string  `json:"fonte"`
	ProcessingTime float64 `json:"tempo_processamento"`
	Status         string  `json:"status"` // "success" or "error"
	CreatedAt      string  `json:"created_at"`
}

// Conversation is the full record returned by /bot/conversation/:id.
type Conversation struct {
	ID             int            `json:"id"`
	UserID         int            `json:"user_id"`
	Question       string         `json:"pergunta"`
	Answer         string         `json:"resposta"`
	Source         string         `json:"fonte"`
	ProcessingTime float64        `json:"tempo_processamento"`
	Status         string         `json:"status"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      string         `json:"created_at"`
}

// Pagination is the envelope the history endpoint wraps its page in.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// HistoryResponse is one page of conversation summaries.
type HistoryResponse struct {
	Status        string                `json:"status"`
	Conversations []ConversationSummary `json:"conversations"`
	Pagination    Pagination            `json:"pagination"`
}

// SearchResponse holds the full, server-capped keyword search result set.
// Search results are never paginated.
type SearchResponse struct {
	Status  string                `json:"status"`
	Query   string                `json:"query"`
	Results []ConversationSummary `json:"results"`
	Total   int                   `json:"total"`
}

// ConversationDetailResponse wraps a single full conversation.
type ConversationDetailResponse struct {
	Status       string       `json:"status"`
	Conversation Conversation `json:"conversation"`
}

// DeleteResponse is returned when deleting a single conversation.
type DeleteResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ClearResponse is returned when clearing a user's entire history.
type ClearResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	DeletedCount int    `json:"deleted_count"`
}

// QuestionRequest is the payload for asking the bot a question.
type QuestionRequest struct {
	Question string `json:"pergunta"`
	UserID   int    `json:"user_id,omitempty"`
}

// QuestionResponse is the bot's answer to a question.
type QuestionResponse struct {
	Status         string  `json:"status"`
	Query          string  `json:"query"`
	Response       string  `json:"response"`
	Source         string  `json:"source"`
	ProcessingTime float64 `json:"processing_time"`
	UserID         int     `json:"user_id,omitempty"`
	Message        string  `json:"message,omitempty"` // set when status is "error"
}

// SourceUsage counts how often one answer source was used.
type SourceUsage struct {
	Source string `json:"fonte"`
	Count  int    `json:"count"`
}

// UserStatistics is the dashboard aggregate for one user.
type UserStatistics struct {
	TotalQuestions int           `json:"total_perguntas"`
	AvgTime        float64       `json:"tempo_medio"`
	CacheHits      int           `json:"cache_hits"`
	CacheRate      float64       `json:"taxa_cache"`
	Successes      int           `json:"sucessos"`
	Errors         int           `json:"erros"`
	SuccessRate    float64       `json:"taxa_sucesso"`
	TopSources     []SourceUsage `json:"fontes_mais_usadas"`
}

// StatisticsResponse wraps UserStatistics.
type StatisticsResponse struct {
	Status     string         `json:"status"`
	Statistics UserStatistics `json:"statistics"`
}
