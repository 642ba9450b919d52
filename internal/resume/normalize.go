package resume

import (
	"reflect"
)

// New returns an empty document with one blank record in every section.
func New() Document {
	var doc Document
	Normalize(&doc)
	return doc
}

// Normalize applies the defaulting rules every document passes through after
// it enters the process (decode, fetch, import): list fields become empty
// slices instead of nil, empty sections get one blank record, and the schema
// version is stamped. Normalize is idempotent.
func Normalize(doc *Document) {
	doc.SchemaVersion = CurrentSchemaVersion
	for _, s := range repeatable {
		slice, _ := sectionSlice(doc, s)
		if slice.Len() == 0 {
			next := reflect.MakeSlice(slice.Type(), 1, 1)
			next.Index(0).Set(reflect.ValueOf(Blank(s)))
			slice.Set(next)
			continue
		}
		for i := range slice.Len() {
			fillNilLists(slice.Index(i))
		}
	}
}

// Clone returns a deep copy of doc.
func Clone(doc Document) Document {
	out := doc
	out.Basics.Profiles = cloneRecords(doc.Basics.Profiles)
	out.Work = cloneRecords(doc.Work)
	for i := range out.Work {
		out.Work[i].Highlights = cloneStrings(out.Work[i].Highlights)
	}
	out.Education = cloneRecords(doc.Education)
	for i := range out.Education {
		out.Education[i].Courses = cloneStrings(out.Education[i].Courses)
	}
	out.Skills = cloneRecords(doc.Skills)
	for i := range out.Skills {
		out.Skills[i].Keywords = cloneStrings(out.Skills[i].Keywords)
	}
	out.Projects = cloneRecords(doc.Projects)
	for i := range out.Projects {
		out.Projects[i].Highlights = cloneStrings(out.Projects[i].Highlights)
		out.Projects[i].Keywords = cloneStrings(out.Projects[i].Keywords)
	}
	out.Awards = cloneRecords(doc.Awards)
	out.Languages = cloneRecords(doc.Languages)
	out.Interests = cloneRecords(doc.Interests)
	for i := range out.Interests {
		out.Interests[i].Keywords = cloneStrings(out.Interests[i].Keywords)
	}
	out.Hobbies = cloneStrings(doc.Hobbies)
	out.References = cloneRecords(doc.References)
	out.Certificates = cloneRecords(doc.Certificates)
	out.Publications = cloneRecords(doc.Publications)
	return out
}

func cloneRecords[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func cloneStrings(in []string) []string {
	return cloneRecords(in)
}
