package query

import (
	"net/url"
	"strings"
)

// Spec is the static query description of one listable resource.
type Spec struct {
	Resource    string
	Searchable  []string
	Filterable  []string
	Coercions   Coercions
	DefaultSort []SortKey
}

// ParseFilterSet reads searchTerm and every allowed filter key from values.
// Keys outside allow are ignored, as are empty values.
func ParseFilterSet(values url.Values, allow []string) FilterSet {
	fs := FilterSet{SearchTerm: strings.TrimSpace(values.Get(ParamSearch))}
	for _, key := range allow {
		if key == ParamSearch {
			continue
		}
		raw, ok := values[key]
		if !ok || len(raw) == 0 {
			continue
		}
		v := strings.TrimSpace(raw[0])
		if v == "" {
			continue
		}
		if fs.Fields == nil {
			fs.Fields = make(map[string]string)
		}
		fs.Fields[key] = v
	}
	return fs
}

// Predicate builds the listing predicate for fs under this resource's
// searchable fields and coercions.
func (s Spec) Predicate(fs FilterSet) Predicate {
	return Build(fs, s.Searchable, s.Coercions)
}

// Resolver returns r with this resource's default sort, falling back to
// newest first.
func (s Spec) Resolver(r Resolver) Resolver {
	if len(s.DefaultSort) == 0 {
		return r.WithDefaultSort(Desc("created_at"))
	}
	return r.WithDefaultSort(s.DefaultSort...)
}

var (
	Categories = Spec{
		Resource:   "category",
		Searchable: []string{"name", "description"},
		Filterable: []string{"name", "slug"},
	}
	Courses = Spec{
		Resource:   "course",
		Searchable: []string{"title", "description", "slug"},
		Filterable: []string{"level", "status", "language", "category_id", "instructor_id", "is_published"},
		Coercions: Coercions{
			"category_id":   UUID,
			"instructor_id": UUID,
			"is_published":  Bool,
		},
	}
	Modules = Spec{
		Resource:    "module",
		Searchable:  []string{"title", "description"},
		Filterable:  []string{"course_id", "title"},
		Coercions:   Coercions{"course_id": UUID},
		DefaultSort: []SortKey{Asc("course_id"), Asc("order")},
	}
	Lessons = Spec{
		Resource:   "lesson",
		Searchable: []string{"title"},
		Filterable: []string{"module_id", "title", "is_free_preview", "duration_minutes"},
		Coercions: Coercions{
			"module_id":        UUID,
			"is_free_preview":  Bool,
			"duration_minutes": Int,
		},
		DefaultSort: []SortKey{Asc("module_id"), Asc("order")},
	}
	Quizzes = Spec{
		Resource:   "quiz",
		Searchable: []string{"title"},
		Filterable: []string{"lesson_id", "title"},
		Coercions:  Coercions{"lesson_id": UUID},
	}
	QuizQuestions = Spec{
		Resource:   "quiz-question",
		Searchable: []string{"question_text"},
		Filterable: []string{"quiz_id", "type"},
		Coercions:  Coercions{"quiz_id": UUID},
	}
	QuizOptions = Spec{
		Resource:   "quiz-option",
		Searchable: []string{"text"},
		Filterable: []string{"question_id", "is_correct"},
		Coercions: Coercions{
			"question_id": UUID,
			"is_correct":  Bool,
		},
	}
	QuizAttempts = Spec{
		Resource:   "quiz-attempt",
		Searchable: []string{"score", "passed"},
		Filterable: []string{"quiz_id", "student_id", "passed"},
		Coercions: Coercions{
			"quiz_id":    UUID,
			"student_id": UUID,
			"passed":     Bool,
		},
	}
	Assignments = Spec{
		Resource:   "assignment",
		Searchable: []string{"title", "description"},
		Filterable: []string{"lesson_id"},
		Coercions:  Coercions{"lesson_id": UUID},
	}
	Submissions = Spec{
		Resource:   "submission",
		Searchable: []string{"feedback", "text_answer"},
		Filterable: []string{"assignment_id", "student_id", "status"},
		Coercions: Coercions{
			"assignment_id": UUID,
			"student_id":    UUID,
		},
	}
)
