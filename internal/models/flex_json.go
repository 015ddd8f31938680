package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// rawMatchFieldMap caches JSON tag -> struct field index mappings
var (
	rawMatchFieldMap     map[string]int
	rawMatchFieldMapOnce sync.Once
)

func getRawMatchFieldMap() map[string]int {
	rawMatchFieldMapOnce.Do(func() {
		t := reflect.TypeOf(RawMatchRecord{})
		rawMatchFieldMap = make(map[string]int, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			tag := t.Field(i).Tag.Get("json")
			if tag == "" || tag == "-" {
				continue
			}
			name := strings.Split(tag, ",")[0]
			rawMatchFieldMap[name] = i
		}
	})
	return rawMatchFieldMap
}

// UnmarshalJSON accepts both native and string-encoded values. Bracket and
// player database exports disagree on whether ids are numbers or strings and
// whether scores are quoted, so both are coerced to the field's type.
func (r *RawMatchRecord) UnmarshalJSON(data []byte) error {
	// Alias prevents infinite recursion
	type Alias RawMatchRecord
	a := (*Alias)(r)

	// Fast path: all types match natively
	if err := json.Unmarshal(data, a); err == nil {
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal: %w", err)
	}

	*r = RawMatchRecord{}
	fieldMap := getRawMatchFieldMap()
	v := reflect.ValueOf(a).Elem()

	for key, rawVal := range raw {
		idx, ok := fieldMap[key]
		if !ok {
			continue
		}

		fv := v.Field(idx)
		if !fv.CanSet() {
			continue
		}

		ptr := reflect.New(fv.Type())
		if err := json.Unmarshal(rawVal, ptr.Interface()); err == nil {
			fv.Set(ptr.Elem())
			continue
		}

		if len(rawVal) == 0 {
			continue
		}
		switch {
		case rawVal[0] == '"':
			var s string
			if err := json.Unmarshal(rawVal, &s); err != nil || s == "" {
				continue
			}
			coerceStringToField(fv, s)
		case fv.Kind() == reflect.String:
			// Numeric id into a string field
			var n json.Number
			if err := json.Unmarshal(rawVal, &n); err == nil {
				fv.SetString(n.String())
			}
		}
	}

	return nil
}

// coerceStringToField converts a string value to the field's native type.
func coerceStringToField(fv reflect.Value, s string) {
	switch fv.Kind() {
	case reflect.Float32, reflect.Float64:
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			fv.SetFloat(n)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// ParseFloat handles "2.0" -> truncate to int
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			fv.SetInt(int64(n))
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(s); err == nil {
			fv.SetBool(b)
		}
	case reflect.String:
		fv.SetString(s)
	}
}
