package workflow

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Parameter values starting with ExpressionPrefix are evaluated per item.
// Inside them, {{ $json.path }} segments are replaced with values from the item.
const ExpressionPrefix = "="

// ResolveParameter evaluates value against the payload of one item.
// Non-string values and strings without the expression prefix are returned as is.
func ResolveParameter(value any, item map[string]any) (any, error) {
	s, ok := value.(string)
	if !ok || !strings.HasPrefix(s, ExpressionPrefix) {
		return value, nil
	}
	return evaluate(strings.TrimPrefix(s, ExpressionPrefix), item)
}

func evaluate(tmpl string, item map[string]any) (any, error) {
	var sb strings.Builder
	rest := tmpl
	segments := 0
	literal := false
	var single any

	for {
		start := strings.Index(rest, "{{")
		if start < 0 {
			literal = literal || strings.TrimSpace(rest) != ""
			sb.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], "}}")
		if end < 0 {
			return nil, fmt.Errorf("invalid expression %q: missing closing braces", tmpl)
		}
		literal = literal || strings.TrimSpace(rest[:start]) != ""
		sb.WriteString(rest[:start])

		v, err := lookup(strings.TrimSpace(rest[start+2:start+end]), item)
		if err != nil {
			return nil, err
		}
		segments++
		single = v
		sb.WriteString(stringify(v))
		rest = rest[start+end+2:]
	}

	// A lone {{ }} keeps the referenced value's type.
	if segments == 1 && !literal {
		return single, nil
	}
	return sb.String(), nil
}

func lookup(expr string, item map[string]any) (any, error) {
	const root = "$json"
	if !strings.HasPrefix(expr, root) {
		return nil, fmt.Errorf("unsupported expression %q: only $json references are allowed", expr)
	}

	path, err := parsePath(expr[len(root):])
	if err != nil {
		return nil, fmt.Errorf("invalid expression %q: %v", expr, err)
	}

	var cur any = item
	for _, key := range path {
		switch node := cur.(type) {
		case map[string]any:
			cur = node[key]
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, nil
			}
			cur = node[idx]
		default:
			return nil, nil
		}
	}
	return cur, nil
}

// parsePath splits `.a.b["c d"][0]` into its keys.
func parsePath(s string) ([]string, error) {
	var keys []string
	for len(s) > 0 {
		switch s[0] {
		case '.':
			s = s[1:]
			n := strings.IndexAny(s, ".[")
			if n < 0 {
				n = len(s)
			}
			if n == 0 {
				return nil, fmt.Errorf("empty key")
			}
			keys = append(keys, strings.TrimSpace(s[:n]))
			s = s[n:]
		case '[':
			n := strings.IndexByte(s, ']')
			if n < 0 {
				return nil, fmt.Errorf("unterminated index")
			}
			key := strings.TrimSpace(s[1:n])
			if len(key) >= 2 && (key[0] == '"' || key[0] == '\'') && key[len(key)-1] == key[0] {
				key = key[1 : len(key)-1]
			}
			keys = append(keys, key)
			s = s[n+1:]
		case ' ':
			s = s[1:]
		default:
			return nil, fmt.Errorf("unexpected %q", s[0])
		}
	}
	return keys, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
