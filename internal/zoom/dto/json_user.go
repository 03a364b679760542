package dto

import "github.com/tdika/zoom-recording-downloader/internal/model"

// JSONUser is one user entry from the user list endpoint.
type JSONUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Status    string `json:"status"`
}

// UserListPage is one page of the paginated user list response.
type UserListPage struct {
	PageSize      int        `json:"page_size"`
	TotalRecords  int        `json:"total_records"`
	NextPageToken string     `json:"next_page_token"`
	Users         []JSONUser `json:"users"`
}

// ToUsers converts the page's entries to model users.
func (p *UserListPage) ToUsers() []model.User {
	users := make([]model.User, 0, len(p.Users))
	for _, ju := range p.Users {
		users = append(users, model.User{
			ID:    ju.ID,
			Email: ju.Email,
		})
	}
	return users
}
