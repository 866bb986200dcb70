package dsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/wricardo/mcp-training/dslgame/game/world"
)

// Values produced by the evaluator are one of: nil, bool, int, float64,
// string or world.Entity.

// FormatValue renders a value the way logs and diagnostics show it
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	case world.Entity:
		return fmt.Sprintf("%s(%s)", val.Name, val.ID)
	}
	return fmt.Sprint(v)
}

// TypeName names the dynamic type of a value in diagnostics
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "bool"
	case int:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case world.Entity:
		return "entity"
	}
	return fmt.Sprintf("%T", v)
}

// Truthy: nil and false are false, numbers are true when non-zero, strings
// when non-empty, entities always.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case int:
		return val != 0
	case float64:
		return val != 0
	case string:
		return val != ""
	}
	return true
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case float64:
		return val, true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func isNumeric(v any) bool {
	_, ok := toFloat(v)
	return ok
}

// valuesEqual compares numbers by value regardless of int/float and
// everything else structurally.
func valuesEqual(a, b any) bool {
	if isNumeric(a) && isNumeric(b) {
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		return fa == fb
	}
	return a == b
}

// compareValues orders two numbers or two strings. ok is false for any
// other combination.
func compareValues(a, b any) (int, bool) {
	if isNumeric(a) && isNumeric(b) {
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	sa, aok := a.(string)
	sb, bok := b.(string)
	if aok && bok {
		switch {
		case sa < sb:
			return -1, true
		case sa > sb:
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// arithmetic applies + - * /. Two ints stay an int except for division,
// which always yields a float. Division by zero yields 0.
func arithmetic(op string, a, b any) (any, bool) {
	if sa, ok := a.(string); ok && op == "+" {
		if sb, ok := b.(string); ok {
			return sa + sb, true
		}
		return nil, false
	}

	ai, aInt := a.(int)
	bi, bInt := b.(int)
	if aInt && bInt && op != "/" {
		switch op {
		case "+":
			return ai + bi, true
		case "-":
			return ai - bi, true
		case "*":
			return ai * bi, true
		}
	}

	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if !aok || !bok {
		return nil, false
	}
	switch op {
	case "+":
		return fa + fb, true
	case "-":
		return fa - fb, true
	case "*":
		return fa * fb, true
	case "/":
		if fb == 0 {
			return 0, true
		}
		return fa / fb, true
	}
	return nil, false
}

// toInt coerces a value to an int. Strings are always read as base 10, so
// "010" is 10 and prefixes such as 0x are rejected.
func toInt(v any) (int, error) {
	s, ok := v.(string)
	if !ok {
		return cast.ToIntE(v)
	}

	s = strings.TrimSpace(s)
	sign := ""
	if s != "" && (s[0] == '-' || s[0] == '+') {
		sign, s = s[:1], s[1:]
	}
	digits := strings.TrimLeft(s, "0")
	if digits == "" && s != "" {
		digits = "0"
	}
	return cast.ToIntE(sign + digits)
}
