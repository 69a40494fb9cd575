package models

import "testing"

type sampleRequest struct {
	Name  string   `validate:"required"`
	Items []string `validate:"min=1,max=2"`
}

func TestValidateStructRequired(t *testing.T) {
	err := ValidateStruct(&sampleRequest{Items: []string{"a"}})
	if err == nil {
		t.Fatal("expected a validation error for the missing required field")
	}
	fieldErrors := FormatValidationErrors(err)
	if len(fieldErrors) != 1 || fieldErrors[0].Field != "Name" || fieldErrors[0].Tag != "required" {
		t.Fatalf("fieldErrors = %+v, want one required error on Name", fieldErrors)
	}
}

func TestValidateStructMinMax(t *testing.T) {
	err := ValidateStruct(&sampleRequest{Name: "x", Items: nil})
	if err == nil {
		t.Fatal("expected a validation error for an empty Items slice")
	}
	fieldErrors := FormatValidationErrors(err)
	if len(fieldErrors) != 1 || fieldErrors[0].Tag != "min" {
		t.Fatalf("fieldErrors = %+v, want one min error", fieldErrors)
	}

	err = ValidateStruct(&sampleRequest{Name: "x", Items: []string{"a", "b", "c"}})
	fieldErrors = FormatValidationErrors(err)
	if len(fieldErrors) != 1 || fieldErrors[0].Tag != "max" {
		t.Fatalf("fieldErrors = %+v, want one max error", fieldErrors)
	}
}

func TestValidateStructPasses(t *testing.T) {
	if err := ValidateStruct(&sampleRequest{Name: "x", Items: []string{"a"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFormatValidationErrorsIgnoresNonValidatorError(t *testing.T) {
	if got := FormatValidationErrors(errPlain{}); got != nil {
		t.Fatalf("expected nil for a non-validator error, got %v", got)
	}
}

type errPlain struct{}

func (errPlain) Error() string { return "plain error" }
