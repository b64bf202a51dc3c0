package records

// Validate checks the record on its own. Age carries no constraint.
func Validate(rec Record) error {
	if rec.Name == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	return nil
}

// admit runs the shared admission checks: validation first, then the
// duplicate lookup supplied by the backend.
func admit(rec Record, exists func(Record) (bool, error)) error {
	if err := Validate(rec); err != nil {
		return err
	}
	dup, err := exists(rec)
	if err != nil {
		return err
	}
	if dup {
		return &DuplicateError{Record: rec}
	}
	return nil
}
