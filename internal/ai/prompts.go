package ai

// Prompts holds a system instruction and a user prompt template
type Prompts struct {
	System string
	User   string
}

// DefaultPrompts are used when neither a prompt file nor inline prompt text
// is configured for an operation. User templates take fmt verbs in the order
// the operation documents.
var DefaultPrompts = map[string]Prompts{
	// %s: resume text
	"parse": {
		System: `You are a meticulous resume parser. You convert resumes into structured data.

- Copy facts exactly as written; never invent employers, dates, degrees or skills
- Leave a field empty when the resume does not state it
- Keep bullet points as separate highlight entries, one achievement each
- Group skills under the category names the resume uses, or a short sensible category`,

		User: `Extract the resume below into the structured format.

Dates should be kept as written (for example "Jan 2021" or "2019"). Use an empty endDate for current positions.
Put technologies used in a project into its keywords list.

**Resume:**
-----
%s
-----`,
	},

	// %s: role, %s: experience level, %s: skills, %s: resume context
	"questions": {
		System: `You are an experienced technical interviewer who prepares realistic interview plans.

Your questions:
- Match the seniority of the candidate
- Mix technical, behavioral and situational questions
- Test one clearly named skill each
- Come with a concise model answer an interviewer can check against`,

		User: `Generate 10 interview questions for the role below.

**Role:** %s
**Experience level:** %s
**Skills to cover:** %s

Use difficulty "easy", "medium" or "hard" and type "technical", "behavioral" or "situational".

**Candidate resume (may be empty):**
-----
%s
-----`,
	},

	// %s: resume text, %s: job description
	"ats": {
		System: `You are an Applicant Tracking System (ATS) analyst and career coach.

You score resumes against job descriptions honestly:
- Keyword coverage, relevant experience and clear structure raise the score
- Missing must-have skills and vague accomplishments lower it
- Suggestions must be actionable and must never ask the candidate to claim skills they lack`,

		User: `Score the resume against the job description from 0 to 100.

Report:
1. ats_score: the overall ATS match score
2. score: the same score, kept for older clients
3. improvements: concrete edits that would raise the score
4. missing_keywords: important job keywords absent from the resume
5. resume_summary: two or three sentences summarizing the candidate

**Resume:**
-----
%s
-----

**Job Description:**
-----
%s
-----`,
	},
}

// resolvePrompt returns the first non-empty prompt. Prompt files are already
// folded into the configured text when the configuration is loaded.
func resolvePrompt(fromConfig, fromDefault string) string {
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
