package models

import (
	"time"

	"gorm.io/datatypes"
)

// Building is one managed entrance as the backend returns it.
type Building struct {
	ID       int64  `json:"id" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required"`
	Address  string `json:"address" validate:"required"`
	Entrance string `json:"entrance"`
}

// Unit is one apartment from the resident's perspective.
type Unit struct {
	UnitID          int64  `json:"unitId" validate:"required,gt=0"`
	UnitNumber      int    `json:"unitNumber" validate:"required"`
	BuildingID      int64  `json:"buildingId" validate:"required,gt=0"`
	BuildingName    string `json:"buildingName"`
	BuildingAddress string `json:"buildingAddress"`
}

// UnitDetails is a unit as listed on the manager side, with fee and occupancy data.
type UnitDetails struct {
	ID         int64   `json:"id"`
	BuildingID int64   `json:"buildingId"`
	UnitNumber int     `json:"unitNumber"`
	Floor      int     `json:"floor"`
	Residents  int     `json:"residents"`
	MonthlyFee float64 `json:"monthlyFee"`
	Balance    float64 `json:"balance"`
}

type Transaction struct {
	ID          int64           `json:"id"`
	UnitID      int64           `json:"unitId"`
	BuildingID  int64           `json:"buildingId"`
	Kind        TransactionKind `json:"kind"`
	Method      PaymentMethod   `json:"method,omitempty"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description"`
	Period      string          `json:"period,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// CardIntent carries the client secret the payment element exchanges for a card form.
type CardIntent struct {
	ClientSecret string  `json:"clientSecret"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

type PollOption struct {
	ID    int64  `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type Poll struct {
	ID         int64        `json:"id"`
	BuildingID int64        `json:"buildingId"`
	Question   string       `json:"question"`
	Options    []PollOption `json:"options"`
	ClosesAt   *time.Time   `json:"closesAt,omitempty"`
	HasVoted   bool         `json:"hasVoted"`
}

type Notice struct {
	ID         int64      `json:"id"`
	BuildingID int64      `json:"buildingId"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	IsEvent    bool       `json:"isEvent"`
	EventAt    *time.Time `json:"eventAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type Document struct {
	ID         int64     `json:"id"`
	BuildingID int64     `json:"buildingId"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Invitation struct {
	ID        int64     `json:"id"`
	UnitID    int64     `json:"unitId"`
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UploadRecord is the gateway's ledger entry for one two-phase document upload.
type UploadRecord struct {
	Base
	BuildingID int64          `gorm:"not null;index" json:"buildingId"`
	FileName   string         `gorm:"not null" json:"fileName"`
	URL        string         `json:"url"`
	Status     UploadStatus   `gorm:"not null;default:'PENDING';index" json:"status"`
	DocumentID int64          `json:"documentId,omitempty"`
	LastError  string         `json:"lastError,omitempty"`
	Metadata   datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`

	// Backend cookies of the uploader, kept only while the file is orphaned.
	Credentials datatypes.JSON `gorm:"type:jsonb" json:"-"`
}
