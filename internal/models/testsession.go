package models

import "time"

// TestLanguage язык прохождения теста.
type TestLanguage string

const (
	LangKinyarwanda TestLanguage = "kinyarwanda"
	LangEnglish     TestLanguage = "english"
	LangFrench      TestLanguage = "french"
)

// Valid сообщает, поддерживается ли язык.
func (l TestLanguage) Valid() bool {
	return l == LangKinyarwanda || l == LangEnglish || l == LangFrench
}

// TestType вид попытки: тренировка или экзаменационный режим.
type TestType string

const (
	TestPractice TestType = "practice"
	TestMock     TestType = "mock"
)

// Valid сообщает, входит ли вид теста в закрытый набор.
func (t TestType) Valid() bool {
	return t == TestPractice || t == TestMock
}

// TestSession одна попытка прохождения теста. Содержимое теста
// (вопросы, подсчёт) живёт в другом сервисе, здесь только запись попытки.
type TestSession struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	StartedAt      time.Time    `json:"started_at"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	Score          *int         `json:"score,omitempty"`
	TotalQuestions *int         `json:"total_questions,omitempty"`
	CorrectAnswers *int         `json:"correct_answers,omitempty"`
	Language       TestLanguage `json:"language"`
	TestType       TestType     `json:"test_type"`
}
