package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/abhilash-IITm/car-parking/database"
	"github.com/abhilash-IITm/car-parking/models"
	"github.com/abhilash-IITm/car-parking/utils"
	"gorm.io/gorm"
)

// RegisterMember 註冊會員
func RegisterMember(member *models.Member) error {
	// 檢查是否有重複的 username
	var existingMember models.Member
	if err := database.DB.Where("username = ?", member.Username).First(&existingMember).Error; err == nil {
		return fmt.Errorf("username %s is already in use", member.Username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to check for duplicate username: %v", err)
		return fmt.Errorf("failed to check for duplicate username: %w", err)
	}

	if member.Role != models.RoleAdmin && member.Role != models.RoleUser {
		return fmt.Errorf("invalid role: must be 'admin' or 'user'")
	}

	// 哈希密碼
	hashedPassword, err := utils.HashPassword(member.Password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return fmt.Errorf("failed to hash password: %w", err)
	}
	member.Password = hashedPassword

	if err := database.DB.Create(member).Error; err != nil {
		log.Printf("Failed to register member: %v", err)
		return fmt.Errorf("failed to register member: %w", err)
	}

	log.Printf("Successfully registered member with ID %d", member.MemberID)
	return nil
}

// LoginMember 登入會員，成功時回傳會員資料
func LoginMember(username, password string) (*models.Member, error) {
	var member models.Member
	if err := database.DB.Where("username = ?", username).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Member with username %s not found", username)
			return nil, fmt.Errorf("invalid username or password")
		}
		log.Printf("Failed to login member: %v", err)
		return nil, fmt.Errorf("failed to login member: %w", err)
	}

	if !utils.CheckPasswordHash(password, member.Password) {
		log.Printf("Invalid password for username %s", username)
		return nil, fmt.Errorf("invalid username or password")
	}

	log.Printf("Member with ID %d logged in successfully", member.MemberID)
	return &member, nil
}

// GetMemberByID 根據ID查詢會員，查無資料時回傳 nil
func GetMemberByID(id int) (*models.Member, error) {
	var member models.Member
	if err := database.DB.First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Member with ID %d not found", id)
			return nil, nil
		}
		log.Printf("Failed to get member by ID %d: %v", id, err)
		return nil, fmt.Errorf("failed to get member by ID %d: %w", id, err)
	}
	return &member, nil
}

// GetAllMembers 查詢所有會員
func GetAllMembers() ([]models.Member, error) {
	var members []models.Member
	if err := database.DB.Find(&members).Error; err != nil {
		log.Printf("Failed to query all members: %v", err)
		return nil, fmt.Errorf("failed to query all members: %w", err)
	}
	log.Printf("Successfully retrieved %d members", len(members))
	return members, nil
}
