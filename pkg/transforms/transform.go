package transforms

import (
	"reflect"
)

// Definition overrides string fields on any struct whose Match fields all have the given
// values. Type, when set, limits it to one struct type such as "ctdf.CallingPoint".
type Definition struct {
	Type  string            `yaml:"type"`
	Match map[string]string `yaml:"match"`
	Data  map[string]string `yaml:"data"`
}

type Set []Definition

// Apply walks input, which must be a pointer, and transforms every struct it reaches
// through fields, pointers and slices
func (s Set) Apply(input interface{}) {
	if len(s) == 0 || input == nil {
		return
	}

	s.walk(reflect.ValueOf(input))
}

func (s Set) walk(value reflect.Value) {
	switch value.Kind() {
	case reflect.Pointer, reflect.Interface:
		if value.IsNil() {
			return
		}
		s.walk(value.Elem())
	case reflect.Slice, reflect.Array:
		for i := 0; i < value.Len(); i++ {
			s.walk(value.Index(i))
		}
	case reflect.Struct:
		if value.CanSet() {
			for _, definition := range s {
				definition.transform(value)
			}
		}

		for i := 0; i < value.NumField(); i++ {
			if value.Type().Field(i).IsExported() {
				s.walk(value.Field(i))
			}
		}
	}
}

func (d Definition) matches(value reflect.Value) bool {
	if len(d.Match) == 0 {
		return false
	}
	if d.Type != "" && value.Type().String() != d.Type {
		return false
	}

	for key, expected := range d.Match {
		field := value.FieldByName(key)
		if !field.IsValid() || field.Kind() != reflect.String || field.String() != expected {
			return false
		}
	}

	return true
}

func (d Definition) transform(value reflect.Value) {
	if !d.matches(value) {
		return
	}

	for key, replacement := range d.Data {
		field := value.FieldByName(key)
		if field.IsValid() && field.CanSet() && field.Kind() == reflect.String {
			field.SetString(replacement)
		}
	}
}
