package engine

import (
	"fmt"
	"reflect"

	"mercator-hq/saturn/pkg/spl/ast"
)

// evaluateOperator applies an operator to an actual and an expected value.
// Errors signal type mismatches; callers degrade them to false and record the
// mismatch in the trace instead of aborting the evaluation.
func evaluateOperator(op ast.Operator, actual, expected interface{}) (bool, error) {
	switch op {
	case ast.OperatorEqual:
		return evaluateEqual(actual, expected), nil

	case ast.OperatorNotEqual:
		return !evaluateEqual(actual, expected), nil

	case ast.OperatorGreaterThan:
		a, e, err := toNumeric(actual, expected)
		if err != nil {
			return false, err
		}
		return a > e, nil

	case ast.OperatorGreaterEqual:
		a, e, err := toNumeric(actual, expected)
		if err != nil {
			return false, err
		}
		return a >= e, nil

	case ast.OperatorLessThan:
		a, e, err := toNumeric(actual, expected)
		if err != nil {
			return false, err
		}
		return a < e, nil

	case ast.OperatorLessEqual:
		a, e, err := toNumeric(actual, expected)
		if err != nil {
			return false, err
		}
		return a <= e, nil

	case ast.OperatorIn:
		return evaluateIn(actual, expected)

	default:
		return false, fmt.Errorf("unknown operator: %q", op)
	}
}

// evaluateEqual compares two values, treating all numeric types as float64 so
// YAML integers compare equal to transaction floats.
func evaluateEqual(actual, expected interface{}) bool {
	if actual == nil && expected == nil {
		return true
	}
	if actual == nil || expected == nil {
		return false
	}

	actualNum, actualErr := convertToFloat64(actual)
	expectedNum, expectedErr := convertToFloat64(expected)
	if actualErr == nil && expectedErr == nil {
		return actualNum == expectedNum
	}

	return reflect.DeepEqual(actual, expected)
}

// evaluateIn checks membership of actual in the expected list.
func evaluateIn(actual, expected interface{}) (bool, error) {
	expectedVal := reflect.ValueOf(expected)
	if expectedVal.Kind() != reflect.Slice && expectedVal.Kind() != reflect.Array {
		return false, &TypeMismatchError{
			Operator:     string(ast.OperatorIn),
			ExpectedType: "list",
			ActualType:   fmt.Sprintf("%T", expected),
		}
	}

	for i := 0; i < expectedVal.Len(); i++ {
		if evaluateEqual(actual, expectedVal.Index(i).Interface()) {
			return true, nil
		}
	}
	return false, nil
}

// toNumeric converts both operands to float64 for ordered comparison.
func toNumeric(actual, expected interface{}) (float64, float64, error) {
	actualNum, err := convertToFloat64(actual)
	if err != nil {
		return 0, 0, &TypeMismatchError{
			ExpectedType: "number",
			ActualType:   fmt.Sprintf("%T", actual),
		}
	}

	expectedNum, err := convertToFloat64(expected)
	if err != nil {
		return 0, 0, &TypeMismatchError{
			ExpectedType: "number",
			ActualType:   fmt.Sprintf("%T", expected),
		}
	}

	return actualNum, expectedNum, nil
}

// convertToFloat64 converts a value to float64.
func convertToFloat64(v interface{}) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int8:
		return float64(val), nil
	case int16:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case uint8:
		return float64(val), nil
	case uint16:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to number", v)
	}
}
