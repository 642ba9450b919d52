package types

import (
	"encoding/json"
	"time"
)

// ResumeRecord represents a resume stored by the backend
type ResumeRecord struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"ownerId,omitempty"`
	Document  json.RawMessage `json:"document"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// SaveResumeResponse represents the response to POST /api/resumes
type SaveResumeResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Experience levels accepted by the question generator
const (
	ExperienceJunior = "junior"
	ExperienceMid    = "mid"
	ExperienceSenior = "senior"
)

// GenerateQuestionsRequest represents the input for interview question generation
type GenerateQuestionsRequest struct {
	Role       string          `json:"role"`
	Experience string          `json:"experience"`
	Skills     []string        `json:"skills,omitempty"`
	Resume     json.RawMessage `json:"resume,omitempty"`
}

// InterviewQuestion represents one generated question
type InterviewQuestion struct {
	Question       string `json:"question"`
	ExpectedAnswer string `json:"expected_answer"`
	Difficulty     string `json:"difficulty"` // "easy", "medium" or "hard"
	Type           string `json:"type"`       // "technical", "behavioral" or "situational"
	SkillTested    string `json:"skill_tested"`
}

// GenerateQuestionsResponse represents the output of POST /api/generate
type GenerateQuestionsResponse struct {
	Questions []InterviewQuestion `json:"questions"`
}

// ATSReport represents the ATS scoring of a resume against a job description
type ATSReport struct {
	ATSScore        int      `json:"ats_score"`
	Score           int      `json:"score"`
	Improvements    []string `json:"improvements"`
	MissingKeywords []string `json:"missing_keywords"`
	ResumeSummary   string   `json:"resume_summary"`
}

// ATSResponse is the envelope returned by POST /ats/ats-details
type ATSResponse struct {
	Success bool       `json:"success"`
	Data    *ATSReport `json:"data,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// ErrorResponse represents an error body returned by the backend
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
