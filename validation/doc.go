// Package validation checks configuration structs for lazykit.
//
// Struct tag validation uses go-playground/validator; programmatic checks
// collect field errors for rules that tags cannot express. Both report
// failures as an errors.AppError with code INVALID_CONFIG and a "fields"
// detail listing every offending field.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    Strategy string `mapstructure:"strategy" validate:"omitempty,oneof=double_checked synchronized eager"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Check(name != "", "name", "is required")
//	err := v.Validate()
package validation
