package services

import (
	"testing"

	"github.com/abhilash-IITm/car-parking/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterVehicleNormalizesPlate(t *testing.T) {
	setupTestDB(t)
	member := createTestMember(t, "driver1")

	vehicle := &models.Vehicle{MemberID: member.MemberID, PlateNumber: "  ka-01-ab-1234  ", Details: "sedan"}
	require.NoError(t, RegisterVehicle(vehicle))
	assert.Equal(t, "KA-01-AB-1234", vehicle.PlateNumber)
}

func TestRegisterVehicleRejectsEmptyPlate(t *testing.T) {
	setupTestDB(t)
	member := createTestMember(t, "driver1")

	err := RegisterVehicle(&models.Vehicle{MemberID: member.MemberID, PlateNumber: "   "})
	assert.Error(t, err)
}

func TestRegisterVehicleDuplicatePlate(t *testing.T) {
	setupTestDB(t)
	member1 := createTestMember(t, "driver1")
	member2 := createTestMember(t, "driver2")

	require.NoError(t, RegisterVehicle(&models.Vehicle{MemberID: member1.MemberID, PlateNumber: "KA-01-1234"}))

	// 同會員同車牌要擋，大小寫不同也算同一面車牌
	err := RegisterVehicle(&models.Vehicle{MemberID: member1.MemberID, PlateNumber: "ka-01-1234"})
	assert.ErrorIs(t, err, ErrDuplicateVehicle)

	// 不同會員可以登記同一面車牌
	require.NoError(t, RegisterVehicle(&models.Vehicle{MemberID: member2.MemberID, PlateNumber: "KA-01-1234"}))
}

func TestRegisterVehicleUnknownMember(t *testing.T) {
	setupTestDB(t)
	err := RegisterVehicle(&models.Vehicle{MemberID: 404, PlateNumber: "KA-01-1234"})
	assert.Error(t, err)
}

func TestGetVehicleByIDOwnership(t *testing.T) {
	setupTestDB(t)
	member, vehicle := memberWithVehicle(t, 1)
	stranger := createTestMember(t, "stranger")

	got, err := GetVehicleByID(vehicle.VehicleID, member.MemberID, models.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, vehicle.VehicleID, got.VehicleID)

	_, err = GetVehicleByID(vehicle.VehicleID, stranger.MemberID, models.RoleUser)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err = GetVehicleByID(vehicle.VehicleID, stranger.MemberID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, vehicle.VehicleID, got.VehicleID)

	_, err = GetVehicleByID(404, member.MemberID, models.RoleUser)
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestGetMemberVehicles(t *testing.T) {
	setupTestDB(t)
	member := createTestMember(t, "driver1")
	createTestVehicle(t, member.MemberID, "KA-01-0001")
	createTestVehicle(t, member.MemberID, "KA-01-0002")

	vehicles, err := GetMemberVehicles(member.MemberID)
	require.NoError(t, err)
	assert.Len(t, vehicles, 2)
}

func TestDeleteVehicle(t *testing.T) {
	setupTestDB(t)
	lot := createTestLot(t, "Main", 2.0, 1)
	member, vehicle := memberWithVehicle(t, 1)
	stranger := createTestMember(t, "stranger")

	res, err := ParkVehicle(member.MemberID, vehicle.VehicleID, lot.LotID, baseTime)
	require.NoError(t, err)

	// 車還停在場內不能刪
	err = DeleteVehicle(vehicle.VehicleID, member.MemberID, models.RoleUser)
	assert.ErrorIs(t, err, ErrVehicleInUse)

	// 別人的車不能刪
	err = DeleteVehicle(vehicle.VehicleID, stranger.MemberID, models.RoleUser)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = LeaveSpot(member.MemberID, res.SpotID, baseTime)
	require.NoError(t, err)

	require.NoError(t, DeleteVehicle(vehicle.VehicleID, member.MemberID, models.RoleUser))

	err = DeleteVehicle(vehicle.VehicleID, member.MemberID, models.RoleUser)
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}
