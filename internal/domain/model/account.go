package model

// Account is a developer account in the API-management system, keyed 1:1 to
// a login identifier (SOEID).
type Account struct {
	ID       string
	Username string
}
