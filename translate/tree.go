package translate

import (
	"context"

	"gopkg.in/yaml.v3"
)

// walk returns a translated copy of n. The input node is never modified.
// Mapping keys, non-string scalars and aliases are copied as they are.
func (t *Translator) walk(ctx context.Context, n *yaml.Node, path Path, st *Stats) *yaml.Node {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case yaml.DocumentNode:
		out := shallowCopy(n)
		for _, c := range n.Content {
			out.Content = append(out.Content, t.walk(ctx, c, path, st))
		}
		return out

	case yaml.MappingNode:
		out := shallowCopy(n)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			out.Content = append(out.Content, cloneNode(k), t.walk(ctx, v, path.Child(k.Value), st))
		}
		return out

	case yaml.SequenceNode:
		out := shallowCopy(n)
		for _, c := range n.Content {
			out.Content = append(out.Content, t.walk(ctx, c, path, st))
		}
		return out

	case yaml.ScalarNode:
		out := shallowCopy(n)
		if n.ShortTag() != "!!str" {
			return out
		}
		res := t.Text(ctx, path, n.Value)
		st.Add(res.Outcome)
		if t.onResult != nil {
			t.onResult(path, n.Value, res)
		}
		out.Value = res.Text
		return out

	default:
		// Aliases keep pointing at their anchor by name.
		return n
	}
}

// shallowCopy copies n without its children.
func shallowCopy(n *yaml.Node) *yaml.Node {
	out := *n
	out.Content = nil
	if len(n.Content) > 0 {
		out.Content = make([]*yaml.Node, 0, len(n.Content))
	}
	return &out
}

// cloneNode deep-copies n.
func cloneNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	out := shallowCopy(n)
	for _, c := range n.Content {
		out.Content = append(out.Content, cloneNode(c))
	}
	return out
}
