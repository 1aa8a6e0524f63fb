// Package fields pulls invoice fields out of extracted text with ordered,
// label-anchored pattern rules. The first rule that matches wins; rules are
// listed from the most specific value shape to the loosest.
package fields

import (
	"regexp"
	"strings"
)

// Rule is a label, a separator and a value shape. The compiled pattern is
// case-insensitive and multi-line, anchored at a word boundary before the label
// and after the captured value.
type Rule struct {
	Name  string
	Label string
	Sep   string
	Value string
}

func (r Rule) pattern() string {
	return `(?im)\b` + r.Label + r.Sep + `(` + r.Value + `)\b`
}

type compiledRule struct {
	name string
	re   *regexp.Regexp
}

// RuleSet is an ordered list of compiled rules.
type RuleSet struct {
	rules []compiledRule
}

// MustCompile panics on an invalid rule; rule tables are package constants.
func MustCompile(rules ...Rule) RuleSet {
	rs := RuleSet{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		rs.rules = append(rs.rules, compiledRule{name: r.Name, re: regexp.MustCompile(r.pattern())})
	}
	return rs
}

// FirstMatch tries each rule in order and returns the first non-empty capture
// group of the first matching rule, trimmed, along with that rule's name.
// A match without a non-empty group yields the whole match.
func (rs RuleSet) FirstMatch(text string) (value, rule string, ok bool) {
	for _, r := range rs.rules {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		return strings.TrimSpace(firstGroup(m)), r.name, true
	}
	return "", "", false
}

func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return m[0]
}
