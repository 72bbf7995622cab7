package oasbind

import (
	"errors"
	"reflect"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type thresholdRule struct {
	validation.ThresholdRule
	threshold any
}

// Min checks that a value is greater than or equal to threshold.
func Min(threshold any) Rule {
	return thresholdRule{validation.Min(threshold), threshold}
}

// Max checks that a value is less than or equal to threshold.
func Max(threshold any) Rule {
	return thresholdRule{validation.Max(threshold), threshold}
}

// Validate compares value with the threshold. Numeric strings, such as
// query values bound into string fields, are parsed to the threshold kind.
func (r thresholdRule) Validate(value any) error {
	value, isNil := validation.Indirect(value)
	if isNil || validation.IsEmpty(value) {
		return nil
	}

	sv := reflect.ValueOf(value)
	if sv.Kind() != reflect.String {
		return r.ThresholdRule.Validate(value)
	}
	s := sv.String()

	var err error
	rv := reflect.ValueOf(r.threshold)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		value, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			return errors.New("must be int64")
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		value, err = strconv.ParseUint(s, 10, 64)
		if err != nil {
			return errors.New("must be uint64")
		}
	case reflect.Float32, reflect.Float64:
		value, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return errors.New("must be float64")
		}
	}

	return r.ThresholdRule.Validate(value)
}
