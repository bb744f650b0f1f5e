package dto

import (
	"time"

	domainguest "innkeep/internal/domain/guest"
	domainuser "innkeep/internal/domain/user"
)

// UserProfile is the account view returned by the auth endpoints. Accounts
// are logins only; the hotel's view of a person who stays is GuestProfileDTO.
type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Roles     []string  `json:"roles"`
	Blocked   bool      `json:"blocked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AuthResponse struct {
	User  UserProfile `json:"user"`
	Token string      `json:"token"`
}

// GuestProfileDTO carries the guest's contact details and the lifetime stay
// stats that accumulate at check-out. The id-document number stays out of
// API responses.
type GuestProfileDTO struct {
	ID          string   `json:"id"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Nationality string   `json:"nationality,omitempty"`
	StayCount   int      `json:"stay_count"`
	TotalSpent  MoneyDTO `json:"total_spent"`
}

func MapUserProfile(user *domainuser.User) UserProfile {
	if user == nil {
		return UserProfile{}
	}
	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, string(role))
	}
	return UserProfile{
		ID:        string(user.ID),
		Email:     user.Email,
		Name:      user.Name,
		Roles:     roles,
		Blocked:   user.Blocked,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func MapGuestProfile(g *domainguest.Guest) *GuestProfileDTO {
	if g == nil {
		return nil
	}
	return &GuestProfileDTO{
		ID:          string(g.ID),
		FirstName:   g.FirstName,
		LastName:    g.LastName,
		Email:       g.Email,
		Phone:       g.Phone,
		Nationality: g.Nationality,
		StayCount:   g.StayCount,
		TotalSpent:  MapMoney(g.TotalSpent),
	}
}

func NewAuthResponse(user *domainuser.User, token string) AuthResponse {
	return AuthResponse{
		User:  MapUserProfile(user),
		Token: token,
	}
}
