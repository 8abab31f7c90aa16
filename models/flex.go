package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexInt accepts a JSON number or a numeric string. Dashboard forms and
// cookies send ids and ages as strings.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s, err := unquoteNumber(data)
	if err != nil || s == "" {
		*f = 0
		return err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("%q is not a whole number", s)
	}
	*f = FlexInt(n)
	return nil
}

// FlexFloat is the decimal counterpart of FlexInt, used for amounts
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s, err := unquoteNumber(data)
	if err != nil || s == "" {
		*f = 0
		return err
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("%q is not a number", s)
	}
	*f = FlexFloat(n)
	return nil
}

func unquoteNumber(data []byte) (string, error) {
	if bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	return string(data), nil
}
