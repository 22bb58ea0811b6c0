// Package validation checks flat string inputs against pipe-separated rule
// strings. The capability host uses it for presence and format checks on
// configuration entries; implementations use it for their own settings.
//
// # Basic Usage
//
//	v := validation.Make(map[string]string{
//	    "dependencyName": cfg.DependencyName,
//	    "instanceName":   cfg.InstanceName,
//	}, validation.Rules{
//	    "bucket":         "required|between:3,63|alpha_dash",
//	    "maxObjectBytes": "nullable|integer",
//	})
//
//	if err := v.Validate(); err != nil {
//	    // err is *validation.Errors; FailedRule(field) tells which rule failed
//	}
//
// Fields are checked in sorted order and each field stops at its first
// failing rule, so Errors.Error() is deterministic.
//
// # Available Rules
//
//   - required           present and non-blank
//   - nullable / sometimes  empty values skip the remaining rules
//   - min:n / max:n      UTF-8 length bounds
//   - between:min,max    length between min and max (inclusive)
//   - integer, boolean   parseable values
//   - url                absolute http(s) URL
//   - in:a,b / not_in:a,b
//   - different:other    must not equal data[other]
//   - alpha_dash         letters, numbers, dots, dashes, underscores
//   - regex:pattern      must match pattern
package validation
