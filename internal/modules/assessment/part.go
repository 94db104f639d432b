package assessment

import (
	"fmt"
	"strconv"
	"strings"
)

// Part is one of the seven TOEIC question categories, e.g. "part.4".
type Part string

const (
	Part1 Part = "part.1"
	Part2 Part = "part.2"
	Part3 Part = "part.3"
	Part4 Part = "part.4"
	Part5 Part = "part.5"
	Part6 Part = "part.6"
	Part7 Part = "part.7"
)

// Skill is a TOEIC skill area.
type Skill string

const (
	Listening Skill = "listening"
	Reading   Skill = "reading"
)

// AllParts lists the parts in canonical order.
var AllParts = []Part{Part1, Part2, Part3, Part4, Part5, Part6, Part7}

// partSkill is the only source of part -> skill membership.
var partSkill = map[Part]Skill{
	Part1: Listening,
	Part2: Listening,
	Part3: Listening,
	Part4: Listening,
	Part5: Reading,
	Part6: Reading,
	Part7: Reading,
}

// SkillOf reports the skill area a part belongs to.
func SkillOf(p Part) (Skill, bool) {
	s, ok := partSkill[p]
	return s, ok
}

// PartsOf returns the parts of a skill in canonical order.
func PartsOf(s Skill) []Part {
	out := make([]Part, 0, 4)
	for _, p := range AllParts {
		if partSkill[p] == s {
			out = append(out, p)
		}
	}
	return out
}

// Valid reports whether p is one of the seven known parts.
func (p Part) Valid() bool {
	_, ok := partSkill[p]
	return ok
}

// Number returns 1..7 for known parts and 0 otherwise.
func (p Part) Number() int {
	for i, known := range AllParts {
		if known == p {
			return i + 1
		}
	}
	return 0
}

// ParsePart accepts "part.5", "5", "part5" and "Part 5" in any case.
func ParsePart(raw string) (Part, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "part")
	s = strings.TrimLeft(s, ". _-")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > len(AllParts) {
		return "", fmt.Errorf("%w: unknown part %q", ErrInvalidInput, raw)
	}
	return AllParts[n-1], nil
}

// partLess orders known parts canonically; unknown parts follow, lexically.
func partLess(a, b Part) bool {
	na, nb := a.Number(), b.Number()
	switch {
	case na != 0 && nb != 0:
		return na < nb
	case na != 0:
		return true
	case nb != 0:
		return false
	default:
		return a < b
	}
}
