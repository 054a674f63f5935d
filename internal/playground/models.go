package playground

import "time"

// Color scope values restrict where a color option may be applied.
const (
	ColorScopeHair  = "hair"
	ColorScopeBeard = "beard"
	ColorScopeBoth  = "both"
)

// Generation status values.
const (
	StatusPending   = "pending"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Rate limit action kinds.
const (
	ActionStart    = "start"
	ActionGenerate = "generate"
)

type Style struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:120" json:"name"`
	Description string    `json:"description"`
	ImagePath   string    `gorm:"size:255;not null" json:"-"`
	IsActive    bool      `gorm:"default:true;index" json:"is_active"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type BeardStyle struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120" json:"name"`
	ImagePath string    `gorm:"size:255;not null" json:"-"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ColorOption struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	HexCode   string    `gorm:"size:7;default:'#111111'" json:"hex_code"`
	Scope     string    `gorm:"size:12;default:'both'" json:"scope"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Session struct {
	ID               uint       `gorm:"primaryKey" json:"-"`
	Token            string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	StartedAt        time.Time  `gorm:"autoCreateTime" json:"started_at"`
	ExpiresAt        time.Time  `gorm:"index;not null" json:"expires_at"`
	LastSeenAt       *time.Time `json:"last_seen_at"`
	RevokedAt        *time.Time `json:"revoked_at"`
	SelfiePath       string     `gorm:"size:255" json:"-"`
	SelfieUploadedAt *time.Time `json:"selfie_uploaded_at"`
	GenerationCount  int        `gorm:"default:0" json:"generation_count"`
	LastGenerationAt *time.Time `json:"last_generation_at"`
	LastIP           string     `gorm:"size:45" json:"-"`
	UserAgent        string     `gorm:"size:255" json:"-"`
}

// IsActive reports whether the session is usable: not revoked and not expired.
func (s *Session) IsActive(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}

func (s *Session) HasSelfie() bool { return s.SelfiePath != "" }

// Touch updates last-seen bookkeeping. Empty values leave fields untouched.
func (s *Session) Touch(now time.Time, ip, userAgent string) {
	s.LastSeenAt = &now
	if ip != "" {
		s.LastIP = ip
	}
	if userAgent != "" {
		if len(userAgent) > 255 {
			userAgent = userAgent[:255]
		}
		s.UserAgent = userAgent
	}
}

type Generation struct {
	ID                     uint  `gorm:"primaryKey" json:"id"`
	SessionID              uint  `gorm:"index;not null" json:"-"`
	StyleID                *uint `gorm:"index" json:"-"`
	BeardStyleID           *uint `json:"-"`
	HairColorOptionID      *uint `json:"-"`
	BeardColorOptionID     *uint `json:"-"`
	Session                Session      `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
	Style                  *Style       `gorm:"foreignKey:StyleID" json:"-"`
	BeardStyle             *BeardStyle  `gorm:"foreignKey:BeardStyleID" json:"-"`
	HairColorOption        *ColorOption `gorm:"foreignKey:HairColorOptionID" json:"-"`
	BeardColorOption       *ColorOption `gorm:"foreignKey:BeardColorOptionID" json:"-"`
	SelfiePath             string       `gorm:"size:255;not null" json:"-"`
	CustomStylePath        string       `gorm:"size:255" json:"-"`
	CustomStyleFingerprint string       `gorm:"size:64;index" json:"-"`
	ResultPath             string       `gorm:"size:255" json:"-"`
	Provider               string       `gorm:"size:50" json:"provider"`
	Status                 string       `gorm:"size:16;default:'pending';index" json:"status"`
	ProcessingMS           *int         `json:"processing_ms"`
	ErrorMessage           string       `gorm:"size:255" json:"-"`
	CreatedAt              time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt              time.Time    `json:"-"`
}

type RateLimitEvent struct {
	ID        uint      `gorm:"primaryKey"`
	Action    string    `gorm:"size:24;not null;index:idx_rate_events_window,priority:1"`
	IPAddress string    `gorm:"size:45;not null;index:idx_rate_events_window,priority:2"`
	SessionID *uint     `gorm:"index"`
	CreatedAt time.Time `gorm:"index:idx_rate_events_window,priority:3"`
}

func (Style) TableName() string          { return "app_playground.styles" }
func (BeardStyle) TableName() string     { return "app_playground.beard_styles" }
func (ColorOption) TableName() string    { return "app_playground.color_options" }
func (Session) TableName() string        { return "app_playground.sessions" }
func (Generation) TableName() string     { return "app_playground.generations" }
func (RateLimitEvent) TableName() string { return "app_playground.rate_limit_events" }
