package models

// User owns zero or more cards. Users are created once and never deleted.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	// Cards lists owned card numbers, derived by the directory.
	Cards []string `json:"cards"`
}

type CreateUser struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}
