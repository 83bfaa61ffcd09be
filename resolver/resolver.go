// Package resolver resolves $ref strings against a stack of base URIs and a
// set of pluggable per-scheme document handlers.
package resolver

import (
	"net/url"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonpointer"
	"github.com/xeipuuv/gojsonreference"
)

// Handler fetches the document identified by a URI. The fragment has
// already been stripped; pointer evaluation happens in the resolver.
type Handler func(uri *url.URL) (interface{}, error)

// Resolver resolves references against the current resolution scope. The
// scope stack starts at the base URI the resolver was created with; every
// hop through a reference pushes the resolved reference so that relative
// references inside the target resolve against the target's own base.
//
// A resolver is bound to one root document and caches every document it
// fetches for the lifetime of the instance.
type Resolver struct {
	root     interface{}
	handlers map[string]Handler
	cache    map[string]interface{}
	scopes   []gojsonreference.JsonReference
}

// New creates a resolver rooted at the given document. baseURI seeds the
// resolution scope and may be empty for documents with only local
// references. File and http(s) handlers are registered by default; entries
// in handlers extend or override them by scheme.
func New(baseURI string, root interface{}, handlers map[string]Handler) (*Resolver, error) {
	base, err := gojsonreference.NewJsonReference(baseURI)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedReference, "base URI %q: %v", baseURI, err)
	}

	merged := map[string]Handler{
		"file":  FileHandler,
		"http":  HTTPHandler,
		"https": HTTPHandler,
	}
	for scheme, handler := range handlers {
		merged[scheme] = handler
	}

	r := &Resolver{
		root:     root,
		handlers: merged,
		cache:    map[string]interface{}{},
		scopes:   []gojsonreference.JsonReference{base},
	}

	r.cache[documentKey(base)] = root
	return r, nil
}

// Resolve resolves ref against the current scope and returns the target
// node together with the fully resolved reference. The resolved reference
// identifies the target for cycle detection and is what PushScope expects.
func (r *Resolver) Resolve(ref string) (interface{}, gojsonreference.JsonReference, error) {
	child, err := gojsonreference.NewJsonReference(ref)
	if err != nil {
		return nil, child, errors.Wrapf(ErrMalformedReference, "reference %q: %v", ref, err)
	}

	full, err := r.inScope(child)
	if err != nil {
		return nil, full, err
	}

	doc, err := r.document(full)
	if err != nil {
		return nil, full, err
	}

	fragment := ""
	if uri := full.GetUrl(); uri != nil {
		fragment = uri.Fragment
	}

	pointer, err := gojsonpointer.NewJsonPointer(fragment)
	if err != nil {
		return nil, full, errors.Wrapf(ErrMalformedReference, "pointer %q: %v", fragment, err)
	}

	node, _, err := pointer.Get(doc)
	if err != nil {
		return nil, full, errors.Wrapf(ErrMissingTarget, "pointer %q in %q: %v", fragment, documentKey(full), err)
	}

	return node, full, nil
}

// Documents returns every document fetched so far, keyed by URI without
// fragment. The root document appears under the base URI it was created
// with, or under "" when there was none.
func (r *Resolver) Documents() map[string]interface{} {
	docs := make(map[string]interface{}, len(r.cache))
	for uri, doc := range r.cache {
		docs[uri] = doc
	}

	return docs
}

// PushScope makes ref the base for subsequent resolutions. Every push must
// be paired with a PopScope, on failure paths as well.
func (r *Resolver) PushScope(ref gojsonreference.JsonReference) {
	r.scopes = append(r.scopes, ref)
}

// PopScope restores the previous resolution scope.
func (r *Resolver) PopScope() {
	if len(r.scopes) > 1 {
		r.scopes = r.scopes[:len(r.scopes)-1]
	}
}

func (r *Resolver) inScope(child gojsonreference.JsonReference) (gojsonreference.JsonReference, error) {
	base := r.scopes[len(r.scopes)-1]
	if base.String() == "" {
		return child, nil
	}

	full, err := base.Inherits(child)
	if err != nil {
		return child, errors.Wrapf(ErrMalformedReference, "resolving %q against %q: %v", child.String(), base.String(), err)
	}

	return *full, nil
}

func (r *Resolver) document(ref gojsonreference.JsonReference) (interface{}, error) {
	key := documentKey(ref)
	if doc, ok := r.cache[key]; ok {
		return doc, nil
	}

	if key == "" {
		return r.root, nil
	}

	uri := ref.GetUrl()
	handler, ok := r.handlers[uri.Scheme]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownScheme, "no handler registered for scheme %q in %q", uri.Scheme, key)
	}

	stripped := *uri
	stripped.Fragment = ""

	doc, err := handler(&stripped)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %q", key)
	}

	r.cache[key] = doc
	return doc, nil
}

// documentKey identifies the document a reference points into, the
// reference URI with its fragment dropped.
func documentKey(ref gojsonreference.JsonReference) string {
	uri := ref.GetUrl()
	if uri == nil {
		return ""
	}

	stripped := *uri
	stripped.Fragment = ""
	return stripped.String()
}
