package validation

import (
	"github.com/pkg/errors"

	"github.com/oasvalidator/oasvalidator/document"
	"github.com/oasvalidator/oasvalidator/resolver"
)

// maxReferenceDepth bounds how many hops a single reference chain may take
// before dereferencing gives up.
const maxReferenceDepth = 32

// dereferencer resolves reference nodes to their concrete targets,
// following chains of references until a non-reference node is reached.
type dereferencer struct {
	resolver *resolver.Resolver
}

// dereference returns node unchanged when it is nil or not a reference
// node. Reference chains are followed transitively; revisiting a resolved
// target or exceeding the depth bound fails with ErrCircularReference or
// ErrReferenceDepth.
func (d *dereferencer) dereference(node interface{}) (interface{}, error) {
	return d.follow(node, map[string]struct{}{}, 0)
}

func (d *dereferencer) follow(node interface{}, visited map[string]struct{}, depth int) (interface{}, error) {
	ref, ok := document.Ref(node)
	if !ok {
		return node, nil
	}

	if depth >= maxReferenceDepth {
		return nil, errors.Wrapf(ErrReferenceDepth, "chain exceeds %d hops at %q", maxReferenceDepth, ref)
	}

	target, resolved, err := d.resolver.Resolve(ref)
	if err != nil {
		return nil, err
	}

	key := resolved.String()
	if _, seen := visited[key]; seen {
		return nil, errors.Wrapf(ErrCircularReference, "reference %q revisits %q", ref, key)
	}
	visited[key] = struct{}{}

	// Relative references inside the target resolve against the target's
	// own base. The pop is deferred so the scope unwinds on failure too.
	d.resolver.PushScope(resolved)
	defer d.resolver.PopScope()

	return d.follow(target, visited, depth+1)
}
