package models

// Person is the JSON payload echoed by the demo endpoints.
type Person struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}
