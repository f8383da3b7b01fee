package internal

import (
	"fmt"
	"strconv"
	"time"

	"github.com/avdeev/ordertrack/internal/model"
)

// Operation selects which accepted-payload contract a validation run uses.
type Operation int

const (
	OpCreate Operation = iota
	OpUpdate
	OpQuery
)

// Policy is the per-operation requiredness of one field.
type Policy int

const (
	PolicyOptional Policy = iota
	PolicyRequired
	PolicyForbidden
)

// OperationForMethod maps an HTTP method to its validation operation.
// Methods outside GET/POST/PATCH have no contract and are rejected.
func OperationForMethod(method string) (Operation, error) {
	switch method {
	case "POST":
		return OpCreate, nil
	case "PATCH":
		return OpUpdate, nil
	case "GET":
		return OpQuery, nil
	default:
		return 0, ErrMethodNotSupported
	}
}

// check normalizes a raw payload value or reports why it is unacceptable.
type check func(raw interface{}) (interface{}, error)

type field struct {
	check    check
	policies map[Operation]Policy
}

// Schema is one declarative description of the order fields. Each field
// carries a base value check plus a policy slot per operation, so a single
// declaration serves the create, update and query contracts.
type Schema struct {
	fields map[string]field
}

// Rule is one field of a tailored rule set.
type Rule struct {
	Check  check
	Policy Policy
}

// RuleSet is the concrete accept/reject contract for one operation.
type RuleSet struct {
	op    Operation
	rules map[string]Rule
}

// NewOrderSchema declares the order fields and their policy table:
//
//	field         create     update     query
//	id            forbidden  forbidden  optional
//	productName   required   optional   optional
//	creationDate  required   forbidden  optional
//	status        required   optional   optional
//
// The id is assigned by the store and may only appear as a query filter.
// creationDate is immutable after create. Status is mutable on update.
func NewOrderSchema() *Schema {
	return &Schema{fields: map[string]field{
		"id": {
			check: idValue,
			policies: map[Operation]Policy{
				OpCreate: PolicyForbidden,
				OpUpdate: PolicyForbidden,
				OpQuery:  PolicyOptional,
			},
		},
		"productName": {
			check: nonEmptyText,
			policies: map[Operation]Policy{
				OpCreate: PolicyRequired,
				OpUpdate: PolicyOptional,
				OpQuery:  PolicyOptional,
			},
		},
		"creationDate": {
			check: dateValue,
			policies: map[Operation]Policy{
				OpCreate: PolicyRequired,
				OpUpdate: PolicyForbidden,
				OpQuery:  PolicyOptional,
			},
		},
		"status": {
			check: statusValue,
			policies: map[Operation]Policy{
				OpCreate: PolicyRequired,
				OpUpdate: PolicyOptional,
				OpQuery:  PolicyOptional,
			},
		},
	}}
}

// Tailor derives the rule set for one operation. The receiver is never
// mutated; every call builds an independent set.
func (s *Schema) Tailor(op Operation) RuleSet {
	rules := make(map[string]Rule, len(s.fields))
	for name, f := range s.fields {
		rules[name] = Rule{Check: f.check, Policy: f.policies[op]}
	}
	return RuleSet{op: op, rules: rules}
}

// Validate checks a payload against the rule set tailored for op and
// returns the sanitized field map. Unknown payload fields are dropped, never
// rejected. For OpUpdate the sanitized result must keep at least one field.
func (s *Schema) Validate(payload map[string]interface{}, op Operation) (map[string]interface{}, error) {
	switch op {
	case OpCreate, OpUpdate, OpQuery:
	default:
		return nil, ErrMethodNotSupported
	}

	rs := s.Tailor(op)
	out := make(map[string]interface{}, len(payload))

	for name, rule := range rs.rules {
		raw, present := payload[name]

		switch rule.Policy {
		case PolicyForbidden:
			if present {
				return nil, fmt.Errorf("%w: field %q is not allowed", ErrValidation, name)
			}
		case PolicyRequired:
			if !present {
				return nil, fmt.Errorf("%w: field %q is required", ErrValidation, name)
			}
		}
		if !present {
			continue
		}

		v, err := rule.Check(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %s", ErrValidation, name, err)
		}
		out[name] = v
	}

	if op == OpUpdate && len(out) == 0 {
		return nil, ErrEmptyUpdate
	}
	return out, nil
}

func nonEmptyText(raw interface{}) (interface{}, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected text")
	}
	if s == "" {
		return nil, fmt.Errorf("must not be empty")
	}
	return s, nil
}

func dateValue(raw interface{}) (interface{}, error) {
	// already-sanitized payloads carry normalized values; validation of
	// such a payload is a no-op
	if t, ok := raw.(time.Time); ok {
		return t, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected a date")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("not a valid date")
	}
	return t, nil
}

func statusValue(raw interface{}) (interface{}, error) {
	s, ok := raw.(string)
	if !ok || !model.ValidStatus(s) {
		return nil, fmt.Errorf("must be one of %v", model.Statuses)
	}
	return s, nil
}

func idValue(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not a valid id")
		}
		return id, nil
	case float64: // json numbers decode as float64
		return int64(v), nil
	default:
		return nil, fmt.Errorf("not a valid id")
	}
}
