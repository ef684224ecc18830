package photomap

import "strings"

// Drilldown narrows a search to specific field values. It renders to the
// index server's drilldown query parameter, which the server treats as an
// opaque filter string: fields are separated by '~', a field's values by ','.
//
//	NewDrilldown().Add("countryName", "Canada", "USA").Add("stateName", "Washington")
//
// renders as "countryName:Canada,USA~stateName:Washington".
type Drilldown struct {
	fields []string
	values map[string][]string
}

// NewDrilldown creates an empty drilldown filter.
func NewDrilldown() *Drilldown {
	return &Drilldown{
		values: make(map[string][]string),
	}
}

// Add appends values for a field and returns the drilldown for chaining.
// Fields render in the order they were first added.
func (d *Drilldown) Add(field string, values ...string) *Drilldown {
	if _, exists := d.values[field]; !exists {
		d.fields = append(d.fields, field)
	}
	d.values[field] = append(d.values[field], values...)
	return d
}

// IsEmpty reports whether the drilldown carries no values at all.
func (d *Drilldown) IsEmpty() bool {
	if d == nil {
		return true
	}
	for _, field := range d.fields {
		if len(d.values[field]) > 0 {
			return false
		}
	}
	return true
}

// String renders the drilldown in the server's wire form. Fields with no
// values are skipped.
func (d *Drilldown) String() string {
	if d == nil {
		return ""
	}

	parts := make([]string, 0, len(d.fields))
	for _, field := range d.fields {
		values := d.values[field]
		if len(values) == 0 {
			continue
		}
		parts = append(parts, field+":"+strings.Join(values, ","))
	}

	return strings.Join(parts, "~")
}
