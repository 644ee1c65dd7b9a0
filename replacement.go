package edcore

import (
	"fmt"
	"slices"
	"strconv"
)

// templateRef is one group reference found in a replacement template.
type templateRef struct {
	name string
	num  int // -1 when the reference is by name
}

// templateRefs lists the group references of a replacement template using the
// same rules as regexp.Expand: $$ is a literal dollar, $name and ${name} refer
// to a group, where name is a run of letters, digits and underscores (the
// longest run is taken, so $1x refers to a group named "1x"). A $ that does not
// start a valid reference is copied literally.
func templateRefs(template string) []templateRef {
	var refs []templateRef
	for i := 0; i < len(template); i++ {
		if template[i] != '$' {
			continue
		}
		if i+1 < len(template) && template[i+1] == '$' {
			i++
			continue
		}
		name, next, ok := extractRef(template, i+1)
		if !ok {
			continue
		}
		ref := templateRef{name: name, num: -1}
		if n, err := strconv.Atoi(name); err == nil && n >= 0 && isDigits(name) {
			ref.num = n
		}
		refs = append(refs, ref)
		i = next - 1
	}
	return refs
}

// extractRef reads a reference name starting at template[i] (just after the
// dollar). It returns the name and the index following the reference.
func extractRef(template string, i int) (string, int, bool) {
	if i >= len(template) {
		return "", 0, false
	}
	brace := template[i] == '{'
	if brace {
		i++
	}
	j := i
	for j < len(template) && isNameByte(template[j]) {
		j++
	}
	if j == i {
		return "", 0, false
	}
	name := template[i:j]
	if brace {
		if j >= len(template) || template[j] != '}' {
			return "", 0, false
		}
		j++
	}
	return name, j, true
}

func isNameByte(b byte) bool {
	return b == '_' || '0' <= b && b <= '9' || 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// checkTemplate verifies that every reference in template names an existing
// group. names is indexed by group number, as regexp.SubexpNames returns it.
func checkTemplate(template string, names []string) error {
	for _, ref := range templateRefs(template) {
		if ref.num >= 0 {
			if ref.num >= len(names) {
				return fmt.Errorf("$%s (pattern has %d groups): %w", ref.name, len(names)-1, ErrInvalidGroupReference)
			}
			continue
		}
		if !slices.Contains(names[1:], ref.name) {
			return fmt.Errorf("${%s}: %w", ref.name, ErrInvalidGroupReference)
		}
	}
	return nil
}
