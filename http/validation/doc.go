// Package validation checks request input against pipe-separated rule
// strings.
//
//	v := validation.Make(map[string]string{
//	    "name":  "Alice",
//	    "email": "alice@example.com",
//	}, validation.Rules{
//	    "name":  "required|min:2|max:100",
//	    "email": "required|email",
//	})
//
//	if v.Fails() {
//	    // v.Errors() serialises to {"errors": {"field": ["msg", ...]}}
//	}
//
// # Rules
//
// Length and shape: required, string, min:n, max:n, size:n,
// between:min,max, alpha, alpha_num, alpha_dash, regex:pattern.
//
// Format: email (RFC 5322 address), url (http:// or https:// prefix).
//
// Numeric: numeric, integer, gt:n, gte:n, lt:n, lte:n.
//
// Comparison: confirmed (field_confirmation must match), same:other,
// different:other.
//
// Membership: boolean, in:a,b,c, not_in:a,b,c.
//
// Control: nullable (empty values allowed), sometimes (absent fields skip
// their remaining rules silently).
//
// Rules for a field stop at the first failure, so a field contributes at
// most one message per run.
package validation
