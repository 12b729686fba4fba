package models

import (
	"strings"

	"github.com/pkg/errors"
)

type BookCondition string

const (
	BookConditionNew      BookCondition = "NEW"
	BookConditionUsed     BookCondition = "USED"
	BookConditionDamaged  BookCondition = "DAMAGED"
	BookConditionRestored BookCondition = "RESTORED"
)

var bookConditionLabels = map[BookCondition]string{
	BookConditionNew:      "New",
	BookConditionUsed:     "Used",
	BookConditionDamaged:  "Damaged",
	BookConditionRestored: "Restored",
}

// BookConditions lists every condition in display order.
var BookConditions = []BookCondition{
	BookConditionNew,
	BookConditionUsed,
	BookConditionDamaged,
	BookConditionRestored,
}

func (c BookCondition) Label() string {
	return bookConditionLabels[c]
}

func (c BookCondition) Valid() bool {
	_, ok := bookConditionLabels[c]
	return ok
}

// ParseBookCondition accepts a code or a display label in any case.
func ParseBookCondition(s string) (BookCondition, error) {
	s = strings.TrimSpace(s)
	for _, c := range BookConditions {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, c.Label()) {
			return c, nil
		}
	}
	return "", errors.Errorf("unknown book condition %q", s)
}
