// Package names implements the NameParser/NameFormatter component of
// spec.md §4.1: parsing a folder basename into an ordered key-value
// record, expanding tags, and re-emitting canonical basenames.
//
// Grounded on original_source/datashuttle/configs/canonical_directories_and_tags.py
// (the tags() map) and original_source/tests/test_utils.py /
// test_date_search_range.py for exact tag-expansion and range semantics.
package names

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
)

// Reserved keys, per spec.md §3.
const (
	KeyDate     = "date"
	KeyTime     = "time"
	KeyDatetime = "datetime"
)

var reservedKeys = map[string]bool{KeyDate: true, KeyTime: true, KeyDatetime: true}

// Pair is a single key-value segment of a Name, e.g. {"sub", "001"} or
// {"date", "20240101"}.
type Pair struct {
	Key   string
	Value string
}

// Name is a fully parsed folder basename: an ordered sequence of Pairs
// whose first element is the prefix pair (key "sub" or "ses").
type Name struct {
	Pairs []Pair
}

// nameGrammar is the full-basename grammar from spec.md §3.
var nameGrammar = regexp.MustCompile(`^(sub|ses)-[A-Za-z0-9]+(?:_[a-z][a-z0-9]*-[A-Za-z0-9]+)*$`)

// Prefix returns the name's prefix key, "sub" or "ses".
func (n *Name) Prefix() string {
	if len(n.Pairs) == 0 {
		return ""
	}
	return n.Pairs[0].Key
}

// PrefixValue returns the prefix pair's raw value (e.g. "001a").
func (n *Name) PrefixValue() string {
	if len(n.Pairs) == 0 {
		return ""
	}
	return n.Pairs[0].Value
}

// IntegerPart returns the leading run of digits in the prefix value, as
// both its integer value and its decimal width (for zero-padding checks).
func (n *Name) IntegerPart() (value int, width int, err error) {
	return integerPart(n.PrefixValue())
}

var leadingDigits = regexp.MustCompile(`^[0-9]+`)

func integerPart(value string) (int, int, error) {
	digits := leadingDigits.FindString(value)
	if digits == "" {
		return 0, 0, dserr.NewWithPath(dserr.CodeBadValue,
			"identifier value has no leading integer part", value)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, 0, dserr.NewWithPath(dserr.CodeBadValue,
			"identifier leading digits do not parse as an integer", value)
	}
	return n, len(digits), nil
}

// Get returns the value for key, and whether it was present.
func (n *Name) Get(key string) (string, bool) {
	for _, p := range n.Pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// String renders the Name back to its canonical basename.
func (n *Name) String() string {
	parts := make([]string, len(n.Pairs))
	for i, p := range n.Pairs {
		parts[i] = p.Key + "-" + p.Value
	}
	return strings.Join(parts, "_")
}

// Parse decomposes basename into a Name, enforcing the invariants of
// spec.md §3. Errors use the taxonomy codes MissingPrefix, BadValue,
// SpecialChar, DuplicateKey.
func Parse(basename string) (*Name, error) {
	if basename == "" {
		return nil, dserr.New(dserr.CodeMissingPrefix, "name is empty")
	}
	if strings.Contains(basename, "__") || strings.Contains(basename, " ") {
		return nil, dserr.NewWithPath(dserr.CodeSpecialChar,
			"name contains a space or a double underscore", basename)
	}
	if !strings.HasPrefix(basename, "sub-") && !strings.HasPrefix(basename, "ses-") {
		return nil, dserr.NewWithPath(dserr.CodeMissingPrefix,
			"name does not start with 'sub-' or 'ses-'", basename)
	}
	if !nameGrammar.MatchString(basename) {
		// Distinguish "bad characters somewhere" from "bad prefix value"
		// by checking the prefix value in isolation.
		prefixKey := basename[:3]
		rest := basename[4:]
		firstSeg := rest
		if idx := strings.Index(rest, "_"); idx >= 0 {
			firstSeg = rest[:idx]
		}
		if !isCleanToken(firstSeg) {
			return nil, dserr.NewWithPath(dserr.CodeSpecialChar,
				fmt.Sprintf("%s value contains disallowed characters", prefixKey), basename)
		}
		return nil, dserr.NewWithPath(dserr.CodeBadValue,
			"name does not conform to the key-value grammar", basename)
	}

	segments := strings.Split(basename, "_")
	pairs := make([]Pair, 0, len(segments))
	seen := map[string]bool{}
	for i, seg := range segments {
		dash := strings.Index(seg, "-")
		if dash < 0 {
			return nil, dserr.NewWithPath(dserr.CodeBadValue, "segment has no key-value separator", seg)
		}
		key, value := seg[:dash], seg[dash+1:]
		if i == 0 {
			if key != "sub" && key != "ses" {
				return nil, dserr.NewWithPath(dserr.CodeMissingPrefix, "first segment is not a prefix", basename)
			}
		} else if key == "sub" || key == "ses" {
			return nil, dserr.NewWithPath(dserr.CodeDuplicateKey, "prefix key repeated", basename)
		}
		if reservedKeys[key] {
			if seen[key] {
				return nil, dserr.NewWithPath(dserr.CodeDuplicateKey,
					fmt.Sprintf("reserved key %q appears twice", key), basename)
			}
			seen[key] = true
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}

	if _, _, err := integerPart(pairs[0].Value); err != nil {
		return nil, dserr.NewWithPath(dserr.CodeBadValue, "prefix value is not integer-leading", basename)
	}

	return &Name{Pairs: pairs}, nil
}

var cleanToken = regexp.MustCompile(`^[A-Za-z0-9]+$`)

func isCleanToken(s string) bool { return cleanToken.MatchString(s) }
