package api

// QuestionItem mirrors one question record of the quiz-set payload.
type QuestionItem struct {
	ID        int64  `json:"id"`
	No        int    `json:"no"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	QuizSetID int64  `json:"quizSetID"`
}

// Evaluation is the remote grading verdict.
type Evaluation struct {
	IsCorrect   bool   `json:"is_correct"`
	Explanation string `json:"explanation"`
	// Some backend versions echo the expected answer. It is tolerated here
	// but callers display the locally known answer instead.
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

type evaluateRequest struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	UserAnswer string `json:"user_answer"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
