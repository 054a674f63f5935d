package clients

import "time"

type Client struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	FullName        string    `gorm:"size:120;not null" json:"full_name"`
	Phone           string    `gorm:"size:20;uniqueIndex;not null" json:"phone"`
	Email           string    `gorm:"size:254" json:"email"`
	PreferredBarber *string   `gorm:"size:64" json:"preferred_barber"`
	SMSOptIn        bool      `gorm:"default:false" json:"sms_opt_in"`
	WhatsAppOptIn   bool      `gorm:"default:false" json:"whatsapp_opt_in"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ClientComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClientID  uint      `gorm:"index;not null" json:"client_id"`
	Client    Client    `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID  string    `gorm:"size:64;not null" json:"author_id"`
	Body      string    `gorm:"not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (Client) TableName() string        { return "app_clients.clients" }
func (ClientComment) TableName() string { return "app_clients.client_comments" }

// identityFields are the client fields gated behind the edit_client_identity
// permission.
var identityFields = map[string]struct{}{
	"full_name": {},
	"phone":     {},
	"email":     {},
}

func snapshot(c *Client) map[string]interface{} {
	if c == nil {
		return nil
	}
	var preferred interface{}
	if c.PreferredBarber != nil {
		preferred = *c.PreferredBarber
	}
	return map[string]interface{}{
		"full_name":        c.FullName,
		"phone":            c.Phone,
		"email":            c.Email,
		"preferred_barber": preferred,
		"sms_opt_in":       c.SMSOptIn,
		"whatsapp_opt_in":  c.WhatsAppOptIn,
		"notes":            c.Notes,
	}
}
