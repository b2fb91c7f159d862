package models

// QuizItem is one multiple-choice question produced by the AI item writer.
// Answer carries the literal text of the correct option, never a letter or
// number code.
type QuizItem struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// HasAnswer reports whether Answer literally matches one of Options.
func (q *QuizItem) HasAnswer() bool {
	for _, opt := range q.Options {
		if opt == q.Answer {
			return true
		}
	}
	return false
}

// ChatMessage is a single conversational turn in OpenAI wire order.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
