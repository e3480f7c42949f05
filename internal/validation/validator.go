// Recommerce - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recommerce

// Package validation wraps a shared go-playground/validator instance.
//
// Errors name fields the way users see them: a `koanf` tag (configuration
// key) wins, then a `column` tag (input file column), then the Go field name.
//
//	type Product struct {
//	    ID    string  `column:"product_id" validate:"notblank"`
//	    Price float64 `column:"price" validate:"gte=0"`
//	}
//
//	if serr := validation.ValidateStruct(&p); serr != nil {
//	    col := serr.Fields[0].Field // "product_id" or "price"
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes one failed rule.
type FieldError struct {
	Field   string // koanf key, column name or Go field name
	Tag     string // failed rule, e.g. "gte"
	Param   string // rule parameter, e.g. "0"
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// StructError collects every failed rule of one struct, in field order.
type StructError struct {
	Fields []FieldError
}

func (e *StructError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i := range e.Fields {
		msgs[i] = e.Fields[i].Message
	}
	return strings.Join(msgs, "; ")
}

// GetValidator returns the shared validator, creating it on first use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(fieldName)

		// "required" accepts whitespace-only strings; ids and paths must not.
		if err := validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
			panic(fmt.Sprintf("register notblank validator: %v", err))
		}
	})
	return validate
}

func fieldName(f reflect.StructField) string {
	for _, key := range []string{"koanf", "column"} {
		if name, _, _ := strings.Cut(f.Tag.Get(key), ","); name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// ValidateStruct validates s and returns nil or a *StructError.
func ValidateStruct(s interface{}) *StructError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &StructError{Fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	out := &StructError{Fields: make([]FieldError, len(fieldErrs))}
	for i, fe := range fieldErrs {
		out.Fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: message(fe),
		}
	}
	return out
}

var (
	plainMessages = map[string]string{
		"required": "%s is required",
		"notblank": "%s must not be blank",
	}
	paramMessages = map[string]string{
		"oneof": "%s must be one of: %s",
		"gte":   "%s must be >= %s",
		"lte":   "%s must be <= %s",
		"min":   "%s must be at least %s",
		"max":   "%s must be at most %s",
	}
)

func message(fe validator.FieldError) string {
	if tmpl, ok := plainMessages[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Field())
	}
	if tmpl, ok := paramMessages[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
