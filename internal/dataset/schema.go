package dataset

import (
	"fmt"
	"strings"

	"github.com/spacesedan/nytsentiment/internal/models"
)

// Schema describes what a role needs before it may be processed.
type Schema struct {
	Role models.Role
	// RequiredAll fields must all be present.
	RequiredAll []string
	// RequiredAny needs at least one present field when non-empty.
	RequiredAny []string
	// TextField is the analysis unit fed to the classifier.
	TextField string
	DateField string
}

var ARTICLE_TEXT_FIELDS = []string{
	models.FIELD_ABSTRACT,
	models.FIELD_SNIPPET,
	models.FIELD_LEAD_PARAGRAPH,
}

var COMMENTS_SCHEMA = Schema{
	Role:        models.ROLE_COMMENTS,
	RequiredAll: []string{models.FIELD_COMMENT_BODY},
	TextField:   models.FIELD_COMMENT_BODY,
	DateField:   models.FIELD_COMMENT_DATE,
}

var ARTICLES_SCHEMA = Schema{
	Role:        models.ROLE_ARTICLES,
	RequiredAny: ARTICLE_TEXT_FIELDS,
	TextField:   models.FIELD_ARTICLE_TEXT,
	DateField:   models.FIELD_ARTICLE_DATE,
}

func SchemaFor(role models.Role) (Schema, error) {
	switch role {
	case models.ROLE_COMMENTS:
		return COMMENTS_SCHEMA, nil
	case models.ROLE_ARTICLES:
		return ARTICLES_SCHEMA, nil
	default:
		return Schema{}, fmt.Errorf("unknown dataset role %q", role)
	}
}

// SchemaError rejects a whole dataset because required columns are absent.
type SchemaError struct {
	Role models.Role
	// Missing lists absent required columns. AnyOf is set when one of Missing
	// would have been enough.
	Missing []string
	AnyOf   bool
}

func (e *SchemaError) Error() string {
	if e.AnyOf {
		return fmt.Sprintf("%s dataset must contain at least one of: %s",
			e.Role, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s dataset is missing required column(s): %s",
		e.Role, strings.Join(e.Missing, ", "))
}

func (s Schema) Validate(ds *models.Dataset) error {
	var missing []string
	for _, field := range s.RequiredAll {
		if !ds.HasColumn(field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Role: s.Role, Missing: missing}
	}

	if len(s.RequiredAny) == 0 {
		return nil
	}
	for _, field := range s.RequiredAny {
		if ds.HasColumn(field) {
			return nil
		}
	}
	return &SchemaError{
		Role:    s.Role,
		Missing: append([]string(nil), s.RequiredAny...),
		AnyOf:   true,
	}
}
