package helpers

import (
	"github.com/joshua-takyi/tryfield/internal/models"
	"github.com/joshua-takyi/tryfield/internal/services"
)

// EnhancedClaims is the verified token merged with the stored profile.
type EnhancedClaims struct {
	*CustomClaims
	Role        string `json:"role"`
	UserID      string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

func (ec *EnhancedClaims) IsAdmin() bool {
	return ec.Role == models.RoleAdmin
}

func (ec *EnhancedClaims) IsOwner(userID string) bool {
	return ec.UserID == userID
}

func (ec *EnhancedClaims) GetSafeRole() string {
	if ec.Role == "" {
		return models.RoleUser
	}
	return ec.Role
}

// Actor converts the claims into the caller identity the services expect.
func (ec *EnhancedClaims) Actor() services.Actor {
	if ec == nil {
		return services.Actor{}
	}
	return services.Actor{
		ID:          ec.UserID,
		DisplayName: ec.DisplayName,
		PhotoURL:    ec.PhotoURL,
		Admin:       ec.IsAdmin(),
	}
}
