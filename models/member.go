package models

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Member struct {
	MemberID     int           `json:"member_id" gorm:"primaryKey;autoIncrement;type:INT"`
	FullName     string        `json:"full_name" gorm:"type:varchar(100)" binding:"omitempty,max=100"`
	Username     string        `json:"username" gorm:"type:varchar(80);uniqueIndex;not null" binding:"required,max=80"`
	Password     string        `json:"password" gorm:"type:varchar(100);not null"`
	Role         string        `json:"role" gorm:"type:varchar(20);not null;default:'user'"`
	Vehicles     []Vehicle     `json:"-" gorm:"foreignKey:member_id;references:MemberID"`
	Reservations []Reservation `json:"-" gorm:"foreignKey:member_id;references:MemberID"`
}

func (Member) TableName() string {
	return "member"
}

type MemberResponse struct {
	MemberID int    `json:"member_id"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (m *Member) ToResponse() MemberResponse {
	return MemberResponse{
		MemberID: m.MemberID,
		FullName: m.FullName,
		Username: m.Username,
		Role:     m.Role,
	}
}
