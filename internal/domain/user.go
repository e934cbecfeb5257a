package domain

type UserInfo struct {
	ID    string
	Name  string
	Email string
	Role  string
}
