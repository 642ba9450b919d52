package resume

// CurrentSchemaVersion is stamped on every document the application writes.
// Version 0 is the flat form-builder layout that predates the structured model.
const CurrentSchemaVersion = 1

// Document is the canonical resume record. Every repeatable section is an
// ordered slice; after Normalize none of them is empty.
type Document struct {
	SchemaVersion int           `json:"schemaVersion" yaml:"schemaVersion"`
	Basics        Basics        `json:"basics" yaml:"basics"`
	Work          []Work        `json:"work" yaml:"work"`
	Education     []Education   `json:"education" yaml:"education"`
	Skills        []Skill       `json:"skills" yaml:"skills"`
	Projects      []Project     `json:"projects" yaml:"projects"`
	Awards        []Award       `json:"awards" yaml:"awards"`
	Languages     []Language    `json:"languages" yaml:"languages"`
	Interests     []Interest    `json:"interests" yaml:"interests"`
	Hobbies       []string      `json:"hobbies" yaml:"hobbies"`
	References    []Reference   `json:"references" yaml:"references"`
	Certificates  []Certificate `json:"certificates" yaml:"certificates"`
	Publications  []Publication `json:"publications" yaml:"publications"`
}

// Basics holds the header of the resume.
type Basics struct {
	Name     string    `json:"name" yaml:"name"`
	Label    string    `json:"label" yaml:"label"`
	Email    string    `json:"email" yaml:"email"`
	Phone    string    `json:"phone" yaml:"phone"`
	URL      string    `json:"url" yaml:"url"`
	Summary  string    `json:"summary" yaml:"summary"`
	Image    string    `json:"image" yaml:"image"`
	Location Location  `json:"location" yaml:"location"`
	Profiles []Profile `json:"profiles" yaml:"profiles"`
}

type Location struct {
	Address     string `json:"address" yaml:"address"`
	City        string `json:"city" yaml:"city"`
	Region      string `json:"region" yaml:"region"`
	PostalCode  string `json:"postalCode" yaml:"postalCode"`
	CountryCode string `json:"countryCode" yaml:"countryCode"`
}

type Profile struct {
	Network  string `json:"network" yaml:"network"`
	Username string `json:"username" yaml:"username"`
	URL      string `json:"url" yaml:"url"`
}

// Work is one experience entry. Name is the company.
type Work struct {
	Name       string   `json:"name" yaml:"name"`
	Position   string   `json:"position" yaml:"position"`
	URL        string   `json:"url" yaml:"url"`
	StartDate  string   `json:"startDate" yaml:"startDate"`
	EndDate    string   `json:"endDate" yaml:"endDate"`
	Summary    string   `json:"summary" yaml:"summary"`
	Highlights []string `json:"highlights" yaml:"highlights"`
}

type Education struct {
	Institution string   `json:"institution" yaml:"institution"`
	URL         string   `json:"url" yaml:"url"`
	Area        string   `json:"area" yaml:"area"`
	StudyType   string   `json:"studyType" yaml:"studyType"`
	StartDate   string   `json:"startDate" yaml:"startDate"`
	EndDate     string   `json:"endDate" yaml:"endDate"`
	Score       string   `json:"score" yaml:"score"`
	Courses     []string `json:"courses" yaml:"courses"`
}

// Skill is a category label with its keywords.
type Skill struct {
	Name     string   `json:"name" yaml:"name"`
	Level    string   `json:"level" yaml:"level"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Project keywords are the technologies used.
type Project struct {
	Name        string   `json:"name" yaml:"name"`
	StartDate   string   `json:"startDate" yaml:"startDate"`
	EndDate     string   `json:"endDate" yaml:"endDate"`
	Description string   `json:"description" yaml:"description"`
	Highlights  []string `json:"highlights" yaml:"highlights"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
	URL         string   `json:"url" yaml:"url"`
}

type Award struct {
	Title   string `json:"title" yaml:"title"`
	Date    string `json:"date" yaml:"date"`
	Awarder string `json:"awarder" yaml:"awarder"`
	Summary string `json:"summary" yaml:"summary"`
}

type Language struct {
	Language string `json:"language" yaml:"language"`
	Fluency  string `json:"fluency" yaml:"fluency"`
}

type Interest struct {
	Name     string   `json:"name" yaml:"name"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

type Reference struct {
	Name      string `json:"name" yaml:"name"`
	Reference string `json:"reference" yaml:"reference"`
}

type Certificate struct {
	Name   string `json:"name" yaml:"name"`
	Date   string `json:"date" yaml:"date"`
	Issuer string `json:"issuer" yaml:"issuer"`
	URL    string `json:"url" yaml:"url"`
}

type Publication struct {
	Name        string `json:"name" yaml:"name"`
	Publisher   string `json:"publisher" yaml:"publisher"`
	ReleaseDate string `json:"releaseDate" yaml:"releaseDate"`
	URL         string `json:"url" yaml:"url"`
	Summary     string `json:"summary" yaml:"summary"`
}
