package route

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/castr-dev/castr/internal/ir"
	"github.com/castr-dev/castr/internal/oas"
	"github.com/castr-dev/castr/internal/ordered"
	"github.com/castr-dev/castr/internal/schema"
)

// ParseComponents converts the parameter, response, request body, header,
// example, link, callback and path item components of one components
// table. Sections come in that order, names sorted within a section. origin
// is the x-ext bundle hash, or empty.
func (s *Service) ParseComponents(origin string, comps *oas.Components) ([]*ir.IRComponent, error) {
	if comps == nil {
		return nil, nil
	}
	var out []*ir.IRComponent
	add := func(t ir.ComponentType, name string, fill func(c *ir.IRComponent, ptr string) error) error {
		c := &ir.IRComponent{Type: t, Name: name, Origin: origin}
		if err := fill(c, c.Ref()); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	}

	for name, p := range comps.Parameters.Sorted() {
		err := add(ir.ComponentParameter, name, func(c *ir.IRComponent, ptr string) (err error) {
			c.Parameter, err = s.convertParameter(p, ptr)
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	for name, r := range comps.Responses.Sorted() {
		err := add(ir.ComponentResponse, name, func(c *ir.IRComponent, ptr string) (err error) {
			c.Response, err = s.convertResponse(r, ptr)
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	for name, b := range comps.RequestBodies.Sorted() {
		err := add(ir.ComponentRequestBody, name, func(c *ir.IRComponent, ptr string) (err error) {
			if b == nil {
				b = &oas.RequestBody{}
			}
			c.RequestBody, err = s.convertRequestBody(b, ptr)
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	for name, h := range comps.Headers.Sorted() {
		err := add(ir.ComponentHeader, name, func(c *ir.IRComponent, ptr string) (err error) {
			c.Header, err = s.convertHeader(h, ptr)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	values := []struct {
		t ir.ComponentType
		m *ordered.Map[any]
	}{
		{ir.ComponentExample, comps.Examples},
		{ir.ComponentLink, comps.Links},
		{ir.ComponentCallback, comps.Callbacks},
	}
	for _, section := range values {
		for name, v := range section.m.Sorted() {
			out = append(out, &ir.IRComponent{Type: section.t, Name: name, Origin: origin, Value: schema.Normalize(v)})
		}
	}

	for name, item := range comps.PathItems.Sorted() {
		err := add(ir.ComponentPathItem, name, func(c *ir.IRComponent, ptr string) (err error) {
			c.Value, err = pathItemValue(item)
			if err != nil {
				return fmt.Errorf("%s: %w", ptr, err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	s.debug.Printf("parsed %d components from %q", len(out), origin)
	return out, nil
}

// pathItemValue carries a path item component as a plain JSON value.
func pathItemValue(item *oas.PathItem) (any, error) {
	if item == nil {
		return nil, nil
	}
	data, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return schema.Normalize(v), nil
}
