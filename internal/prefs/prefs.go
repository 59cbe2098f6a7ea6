// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package prefs reads the contact preferences file and watches it for
// changes.
package prefs

import (
	"os"

	"github.com/juju/errors"
	"github.com/juju/schema"
	"gopkg.in/yaml.v3"

	"github.com/kananoja/nemo-qml-plugin-contacts/core/contact"
)

// DisplayLabelOrderKey names the display label order setting.
const DisplayLabelOrderKey = "display-label-order"

// Preferences holds the settings read from the preferences file.
type Preferences struct {
	DisplayLabelOrder contact.DisplayLabelOrder
}

var checker = schema.FieldMap(
	schema.Fields{
		DisplayLabelOrderKey: schema.OneOf(schema.Int(), schema.String()),
	},
	schema.Defaults{
		DisplayLabelOrderKey: contact.FirstNameFirst.String(),
	},
)

// Parse parses the YAML preferences document. Unknown settings are
// ignored. The display label order is either its name or its number.
func Parse(data []byte) (Preferences, error) {
	var source map[string]interface{}
	if err := yaml.Unmarshal(data, &source); err != nil {
		return Preferences{}, errors.Annotate(err, "parsing preferences")
	}
	if source == nil {
		source = make(map[string]interface{})
	}
	coerced, err := checker.Coerce(source, nil)
	if err != nil {
		return Preferences{}, errors.NewNotValid(err, "preferences schema check failed")
	}
	valid := coerced.(map[string]interface{})

	order, err := parseOrder(valid[DisplayLabelOrderKey])
	if err != nil {
		return Preferences{}, errors.Trace(err)
	}
	return Preferences{DisplayLabelOrder: order}, nil
}

// ParseDisplayLabelOrder returns the display label order with the given
// name.
func ParseDisplayLabelOrder(name string) (contact.DisplayLabelOrder, error) {
	return parseOrder(name)
}

func parseOrder(value interface{}) (contact.DisplayLabelOrder, error) {
	switch v := value.(type) {
	case int64:
		order := contact.DisplayLabelOrder(v)
		if int64(order) != v {
			return 0, errors.NotValidf("%s %d", DisplayLabelOrderKey, v)
		}
		return order, errors.Trace(order.Validate())
	case string:
		for _, order := range []contact.DisplayLabelOrder{contact.FirstNameFirst, contact.LastNameFirst} {
			if v == order.String() {
				return order, nil
			}
		}
		return 0, errors.NotValidf("%s %q", DisplayLabelOrderKey, v)
	}
	return 0, errors.NotValidf("%s %v", DisplayLabelOrderKey, value)
}

// Read reads the preferences file at path. A missing file yields the
// defaults.
func Read(path string) (Preferences, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Parse(nil)
	} else if err != nil {
		return Preferences{}, errors.Annotatef(err, "reading %q", path)
	}
	return Parse(data)
}

// Write writes p to path.
func Write(path string, p Preferences) error {
	data, err := yaml.Marshal(map[string]string{
		DisplayLabelOrderKey: p.DisplayLabelOrder.String(),
	})
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Annotatef(os.WriteFile(path, data, 0644), "writing %q", path)
}
