package importer

import (
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/circulation/pkg/models"
)

// BookRecord is one entry of an import document. Fields are pointers so a
// missing field can be told apart from an empty one.
type BookRecord struct {
	Title     *string       `json:"title"`
	Price     *json.Number  `json:"price"`
	Condition *string       `json:"condition"`
	Author    *AuthorRecord `json:"author"`
	Genre     *GenreRecord  `json:"genre"`
}

type AuthorRecord struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type GenreRecord struct {
	Name *string `json:"name"`
}

// DisplayTitle is the title used in reports, including for invalid records.
func (r *BookRecord) DisplayTitle() string {
	if r == nil || r.Title == nil || strings.TrimSpace(*r.Title) == "" {
		return "UNKNOWN"
	}
	return strings.TrimSpace(*r.Title)
}

// ParseBooks reads a JSON array of book records. A single object is accepted
// as a one element array.
func ParseBooks(r io.Reader) ([]*BookRecord, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read import document")
	}

	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, errors.New("import document is empty")
	}

	records := []*BookRecord{}
	if b[0] == '{' {
		record := &BookRecord{}
		if err := json.Unmarshal(b, record); err != nil {
			return nil, errors.Wrap(err, "import document is not valid JSON")
		}
		records = append(records, record)
		return records, nil
	}

	if err := json.Unmarshal(b, &records); err != nil {
		return nil, errors.Wrap(err, "import document is not valid JSON")
	}
	return records, nil
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// ValidateBook returns every problem with the record. An empty result means
// the record can be imported.
func ValidateBook(r *BookRecord) []string {
	if r == nil {
		return []string{"Book entry is null."}
	}

	problems := []string{}

	if blank(r.Title) {
		problems = append(problems, "Book title is missing or empty.")
	}

	if r.Price == nil {
		problems = append(problems, "Price is missing.")
	} else if price, err := models.ParsePrice(r.Price.String()); err != nil {
		problems = append(problems, "Price must be a number with at most two decimal places.")
	} else if price <= 0 {
		problems = append(problems, "Price must be greater than 0.")
	}

	if blank(r.Condition) {
		problems = append(problems, "Book condition is missing.")
	} else if _, err := models.ParseBookCondition(*r.Condition); err != nil {
		problems = append(problems, "Book condition is not recognized.")
	}

	if r.Author == nil {
		problems = append(problems, "Author object is missing.")
	} else {
		if blank(r.Author.FirstName) {
			problems = append(problems, "Author's first name is missing.")
		}
		if blank(r.Author.LastName) {
			problems = append(problems, "Author's last name is missing.")
		}
	}

	if r.Genre == nil {
		problems = append(problems, "Genre object is missing.")
	} else if blank(r.Genre.Name) {
		problems = append(problems, "Genre name is missing.")
	}

	return problems
}
