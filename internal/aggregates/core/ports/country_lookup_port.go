package ports

// CountryLookupPort resolves ISO-3166 alpha-3 codes. Read-only.
type CountryLookupPort interface {
	Name(code string) (string, bool)
	Known(code string) bool
}
