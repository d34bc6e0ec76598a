package flag

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Params is a repeatable flag of plugin parameters, each in form of "NAME=VALUE".
//
// Values are typed by their look: integers, then floats, then booleans
// ("true" or "false"). Other values and values quoted by `"` are strings.
type Params map[string]any

func (p *Params) String() string {
	if p == nil || len(*p) == 0 {
		return ""
	}
	keys := slices.Sorted(maps.Keys(*p))
	elems := make([]string, 0, len(keys))
	for _, k := range keys {
		elems = append(elems, fmt.Sprintf("%s=%v", k, (*p)[k]))
	}
	return strings.Join(elems, " ")
}

func (p *Params) Set(v string) error {
	name, value, ok := strings.Cut(v, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("parameter should be NAME=VALUE: %s", v)
	}
	if *p == nil {
		*p = Params{}
	}
	if _, ok := (*p)[name]; ok {
		return fmt.Errorf("parameter %s is set twice", name)
	}
	(*p)[name] = typed(value)
	return nil
}

func typed(s string) any {
	if 2 <= len(s) && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// Choice is a flag accepting one of predefined values.
type Choice struct {
	Value   string
	Options []string
}

func NewChoice(value string, options ...string) *Choice {
	return &Choice{Value: value, Options: options}
}

func (c *Choice) String() string {
	if c == nil {
		return ""
	}
	return c.Value
}

func (c *Choice) Set(v string) error {
	if !slices.Contains(c.Options, v) {
		return fmt.Errorf("%s is not one of %s", v, strings.Join(c.Options, "|"))
	}
	c.Value = v
	return nil
}
