package ai

import "google.golang.org/genai"

func str() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }

func strList() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: str()}
}

func object(required []string, props map[string]*genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

func listOf(item *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: item}
}

// resumeSchema describes the structured resume the parser must return. It
// covers the sections a free-text resume usually carries; the rest are
// seeded when the document is normalized.
func resumeSchema() *genai.Schema {
	return object([]string{"basics", "work", "education", "skills", "projects"}, map[string]*genai.Schema{
		"basics": object([]string{"name", "email"}, map[string]*genai.Schema{
			"name":    str(),
			"label":   str(),
			"email":   str(),
			"phone":   str(),
			"url":     str(),
			"summary": str(),
			"location": object(nil, map[string]*genai.Schema{
				"city":        str(),
				"region":      str(),
				"countryCode": str(),
			}),
			"profiles": listOf(object(nil, map[string]*genai.Schema{
				"network":  str(),
				"username": str(),
				"url":      str(),
			})),
		}),
		"work": listOf(object([]string{"name", "position"}, map[string]*genai.Schema{
			"name":       str(),
			"position":   str(),
			"url":        str(),
			"startDate":  str(),
			"endDate":    str(),
			"summary":    str(),
			"highlights": strList(),
		})),
		"education": listOf(object([]string{"institution"}, map[string]*genai.Schema{
			"institution": str(),
			"area":        str(),
			"studyType":   str(),
			"startDate":   str(),
			"endDate":     str(),
			"score":       str(),
			"courses":     strList(),
		})),
		"skills": listOf(object([]string{"name", "keywords"}, map[string]*genai.Schema{
			"name":     str(),
			"level":    str(),
			"keywords": strList(),
		})),
		"projects": listOf(object([]string{"name"}, map[string]*genai.Schema{
			"name":        str(),
			"description": str(),
			"url":         str(),
			"startDate":   str(),
			"endDate":     str(),
			"highlights":  strList(),
			"keywords":    strList(),
		})),
		"awards": listOf(object(nil, map[string]*genai.Schema{
			"title":   str(),
			"date":    str(),
			"awarder": str(),
			"summary": str(),
		})),
		"certificates": listOf(object(nil, map[string]*genai.Schema{
			"name":   str(),
			"date":   str(),
			"issuer": str(),
			"url":    str(),
		})),
		"languages": listOf(object(nil, map[string]*genai.Schema{
			"language": str(),
			"fluency":  str(),
		})),
		"interests": listOf(object(nil, map[string]*genai.Schema{
			"name":     str(),
			"keywords": strList(),
		})),
	})
}

func questionsSchema() *genai.Schema {
	return object([]string{"questions"}, map[string]*genai.Schema{
		"questions": listOf(object(
			[]string{"question", "expected_answer", "difficulty", "type", "skill_tested"},
			map[string]*genai.Schema{
				"question":        str(),
				"expected_answer": str(),
				"difficulty":      {Type: genai.TypeString, Enum: []string{"easy", "medium", "hard"}},
				"type":            {Type: genai.TypeString, Enum: []string{"technical", "behavioral", "situational"}},
				"skill_tested":    str(),
			},
		)),
	})
}

func atsSchema() *genai.Schema {
	return object(
		[]string{"ats_score", "score", "improvements", "missing_keywords", "resume_summary"},
		map[string]*genai.Schema{
			"ats_score":        {Type: genai.TypeInteger},
			"score":            {Type: genai.TypeInteger},
			"improvements":     strList(),
			"missing_keywords": strList(),
			"resume_summary":   str(),
		},
	)
}
