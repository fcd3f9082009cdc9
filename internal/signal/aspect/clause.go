package aspect

import (
	"fmt"
	"strconv"
	"strings"
)

// Fixture keywords.
const (
	keywordSemaphore   = "semaphore"
	keywordLight       = "light"
	keywordNumberPlate = "number-plate"
)

// clause is one parsed fixture clause. The set of implementations is closed:
// semaphoreClause, lightClause and numberPlateClause.
type clause interface {
	isClause()
}

type semaphoreClause struct {
	head  int
	angle int
}

type lightClause struct {
	head         int
	color        string
	flashing     bool
	intensity    int
	hasIntensity bool
}

type numberPlateClause struct {
	plate PlateRequirement
}

func (semaphoreClause) isClause()   {}
func (lightClause) isClause()       {}
func (numberPlateClause) isClause() {}

// token is one keyword or keyword:value word.
type token struct {
	key      string
	value    string
	hasValue bool
}

// splitClauses lower-cases text and splits it into non-empty clause strings.
func splitClauses(text string) []string {
	parts := strings.Split(strings.ToLower(text), ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func tokenize(s string) []token {
	words := strings.Fields(s)
	toks := make([]token, 0, len(words))
	for _, w := range words {
		key, value, found := strings.Cut(w, ":")
		toks = append(toks, token{key: key, value: value, hasValue: found})
	}
	return toks
}

// parseClause turns one clause string into its fixture variant.
// Keywords that do not belong to any fixture are ignored. A repeated
// keyword keeps its last value.
func parseClause(s string) (clause, error) {
	var (
		fixture   string
		plate     = PlateUnspecified
		head      *int
		angle     *int
		intensity *int
		color     string
		flashing  bool
	)

	for _, tok := range tokenize(s) {
		switch tok.key {
		case keywordSemaphore, keywordLight, keywordNumberPlate:
			fixture = tok.key
		case "present":
			if tok.value == "yes" {
				plate = PlatePresent
			} else {
				plate = PlateAbsent
			}
		case "head-id":
			v, err := intValue(tok)
			if err != nil {
				return nil, err
			}
			if v < 1 {
				return nil, fmt.Errorf("%w: head-id:%s", ErrBadValue, tok.value)
			}
			head = &v
		case "angle":
			v, err := intValue(tok)
			if err != nil {
				return nil, err
			}
			angle = &v
		case "intensity":
			v, err := intValue(tok)
			if err != nil {
				return nil, err
			}
			intensity = &v
		case "color":
			if tok.value == "" {
				return nil, fmt.Errorf("%w: color has no value", ErrBadValue)
			}
			color = tok.value
		case "flashing":
			flashing = true
		}
	}

	switch fixture {
	case keywordSemaphore:
		if head == nil {
			return nil, fmt.Errorf("%w: head-id in %q", ErrMissingParameter, s)
		}
		if angle == nil {
			return nil, fmt.Errorf("%w: angle in %q", ErrMissingParameter, s)
		}
		return semaphoreClause{head: *head, angle: *angle}, nil

	case keywordLight:
		if head == nil {
			return nil, fmt.Errorf("%w: head-id in %q", ErrMissingParameter, s)
		}
		if color == "" {
			return nil, fmt.Errorf("%w: color in %q", ErrMissingParameter, s)
		}
		c := lightClause{head: *head, color: color, flashing: flashing}
		if intensity != nil {
			c.intensity, c.hasIntensity = *intensity, true
		}
		return c, nil

	case keywordNumberPlate:
		return numberPlateClause{plate: plate}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFixture, s)
	}
}

func intValue(tok token) (int, error) {
	if !tok.hasValue || tok.value == "" {
		return 0, fmt.Errorf("%w: %s has no value", ErrBadValue, tok.key)
	}
	v, err := strconv.Atoi(tok.value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s:%s", ErrBadValue, tok.key, tok.value)
	}
	return v, nil
}
