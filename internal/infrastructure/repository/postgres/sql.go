package postgres

// nullableString maps "" to NULL so optional text columns stay NULL
// instead of collecting empty strings.
func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	v := value
	return &v
}
