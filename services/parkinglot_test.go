package services

import (
	"testing"
	"time"

	"github.com/abhilash-IITm/car-parking/database"
	"github.com/abhilash-IITm/car-parking/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateParkingLotSeedsSpots(t *testing.T) {
	setupTestDB(t)
	lot := createTestLot(t, "Main", 2.0, 4)

	var count int64
	require.NoError(t, database.DB.Model(&models.ParkingSpot{}).
		Where("lot_id = ?", lot.LotID).Count(&count).Error)
	assert.EqualValues(t, 4, count)

	var occupied int64
	require.NoError(t, database.DB.Model(&models.ParkingSpot{}).
		Where("lot_id = ? AND status = ?", lot.LotID, models.SpotStatusOccupied).
		Count(&occupied).Error)
	assert.Zero(t, occupied, "a freshly created lot must be fully available")
}

func TestCreateParkingLotValidation(t *testing.T) {
	setupTestDB(t)

	err := CreateParkingLot(&models.ParkingLot{Name: "Bad", PricePerMinute: 1.0, MaxSpots: 0})
	assert.Error(t, err)

	err = CreateParkingLot(&models.ParkingLot{Name: "Bad", PricePerMinute: -1.0, MaxSpots: 3})
	assert.Error(t, err)
}

func TestUpdateParkingLotGrow(t *testing.T) {
	setupTestDB(t)
	lot := createTestLot(t, "Main", 2.0, 2)

	newMax := 5
	updated, err := UpdateParkingLot(lot.LotID, models.UpdateParkingLotRequest{MaxSpots: &newMax})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.MaxSpots)

	var count int64
	require.NoError(t, database.DB.Model(&models.ParkingSpot{}).
		Where("lot_id = ?", lot.LotID).Count(&count).Error)
	assert.EqualValues(t, 5, count)
}

func TestUpdateParkingLotShrinkBlockedWhileOccupied(t *testing.T) {
	setupTestDB(t)
	lot := createTestLot(t, "Main", 2.0, 2)
	member, vehicle := memberWithVehicle(t, 1)

	res, err := ParkVehicle(member.MemberID, vehicle.VehicleID, lot.LotID, baseTime)
	require.NoError(t, err)

	// 兩個車位、一個被佔用，縮到 0 個可用車位不可能
	newMax := 0
	_, err = UpdateParkingLot(lot.LotID, models.UpdateParkingLotRequest{MaxSpots: &newMax})
	assert.Error(t, err)

	newMax = 1
	updated, err := UpdateParkingLot(lot.LotID, models.UpdateParkingLotRequest{MaxSpots: &newMax})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.MaxSpots)

	// 離場之後就能縮了……但已經只剩被釋放的那個車位
	_, err = LeaveSpot(member.MemberID, res.SpotID, baseTime.Add(time.Minute))
	require.NoError(t, err)

	var count int64
	require.NoError(t, database.DB.Model(&models.ParkingSpot{}).
		Where("lot_id = ?", lot.LotID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateParkingLotShrinkBlocked(t *testing.T) {
	setupTestDB(t)
	lot := createTestLot(t, "Main", 2.0, 1)
	member, vehicle := memberWithVehicle(t, 1)

	_, err := ParkVehicle(member.MemberID, vehicle.VehicleID, lot.LotID, baseTime)
	require.NoError(t, err)

	newMax := 0
	_, err = UpdateParkingLot(lot.LotID, models.UpdateParkingLotRequest{MaxSpots: &newMax})
	assert.ErrorIs(t, err, ErrLotShrinkBlocked)

	// 被拒絕的縮容不能留下半套變更
	var count int64
	require.NoError(t, database.DB.Model(&models.ParkingSpot{}).
		Where("lot_id = ?", lot.LotID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateParkingLotPrice(t *testing.T) {
	setupTestDB(t)
	lot := createTestLot(t, "Main", 2.0, 1)

	price := 3.5
	updated, err := UpdateParkingLot(lot.LotID, models.UpdateParkingLotRequest{PricePerMinute: &price})
	require.NoError(t, err)
	assert.InDelta(t, 3.5, updated.PricePerMinute, 1e-9)

	// 新費率只影響之後的結算
	member, vehicle := memberWithVehicle(t, 1)
	res, err := ParkVehicle(member.MemberID, vehicle.VehicleID, lot.LotID, baseTime)
	require.NoError(t, err)
	closed, err := LeaveSpot(member.MemberID, res.SpotID, baseTime.Add(10*time.Minute))
	require.NoError(t, err)
	assert.InDelta(t, 35.00, *closed.Amount, 1e-9)
}

func TestUpdateParkingLotNotFound(t *testing.T) {
	setupTestDB(t)
	name := "Ghost"
	_, err := UpdateParkingLot(404, models.UpdateParkingLotRequest{Name: &name})
	assert.ErrorIs(t, err, ErrLotNotFound)
}

func TestDeleteParkingLot(t *testing.T) {
	setupTestDB(t)
	lot := createTestLot(t, "Main", 2.0, 2)
	member, vehicle := memberWithVehicle(t, 1)

	res, err := ParkVehicle(member.MemberID, vehicle.VehicleID, lot.LotID, baseTime)
	require.NoError(t, err)

	err = DeleteParkingLot(lot.LotID)
	assert.ErrorIs(t, err, ErrLotInUse)

	_, err = LeaveSpot(member.MemberID, res.SpotID, baseTime.Add(time.Minute))
	require.NoError(t, err)

	require.NoError(t, DeleteParkingLot(lot.LotID))

	var count int64
	require.NoError(t, database.DB.Model(&models.ParkingSpot{}).
		Where("lot_id = ?", lot.LotID).Count(&count).Error)
	assert.Zero(t, count, "deleting a lot must take its spots with it")

	err = DeleteParkingLot(lot.LotID)
	assert.ErrorIs(t, err, ErrLotNotFound)
}

func TestLotOccupancy(t *testing.T) {
	setupTestDB(t)
	lot := createTestLot(t, "Main", 2.0, 3)
	member, vehicle := memberWithVehicle(t, 1)

	occupied, total, err := LotOccupancy(lot.LotID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, occupied)
	assert.EqualValues(t, 3, total)

	res, err := ParkVehicle(member.MemberID, vehicle.VehicleID, lot.LotID, baseTime)
	require.NoError(t, err)

	occupied, total, err = LotOccupancy(lot.LotID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, occupied)
	assert.EqualValues(t, 3, total)

	_, err = LeaveSpot(member.MemberID, res.SpotID, baseTime.Add(time.Minute))
	require.NoError(t, err)

	occupied, _, err = LotOccupancy(lot.LotID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, occupied)

	_, _, err = LotOccupancy(404)
	assert.ErrorIs(t, err, ErrLotNotFound)
}

func TestGetAllParkingLotsRemainingSpots(t *testing.T) {
	setupTestDB(t)
	lotA := createTestLot(t, "A", 2.0, 3)
	createTestLot(t, "B", 1.0, 2)
	member, vehicle := memberWithVehicle(t, 1)

	_, err := ParkVehicle(member.MemberID, vehicle.VehicleID, lotA.LotID, baseTime)
	require.NoError(t, err)

	lots, err := GetAllParkingLots()
	require.NoError(t, err)
	require.Len(t, lots, 2)

	byName := make(map[string]models.ParkingLot)
	for _, l := range lots {
		byName[l.Name] = l
	}
	assert.Equal(t, 2, byName["A"].RemainingSpots)
	assert.Equal(t, 2, byName["B"].RemainingSpots)
}

func TestGetParkingLotByID(t *testing.T) {
	setupTestDB(t)
	lot := createTestLot(t, "Main", 2.0, 2)

	got, spots, err := GetParkingLotByID(lot.LotID)
	require.NoError(t, err)
	assert.Equal(t, lot.LotID, got.LotID)
	assert.Equal(t, 2, got.RemainingSpots)
	require.Len(t, spots, 2)
	assert.Less(t, spots[0].SpotID, spots[1].SpotID)

	_, _, err = GetParkingLotByID(404)
	assert.ErrorIs(t, err, ErrLotNotFound)
}

func TestReleaseAvailableSpotFails(t *testing.T) {
	setupTestDB(t)
	lot := createTestLot(t, "Main", 2.0, 1)

	var spot models.ParkingSpot
	require.NoError(t, database.DB.Where("lot_id = ?", lot.LotID).First(&spot).Error)

	tx := database.DB.Begin()
	require.NoError(t, tx.Error)
	err := releaseSpot(tx, spot.SpotID)
	tx.Rollback()
	assert.ErrorIs(t, err, ErrSpotNotOccupied)

	tx = database.DB.Begin()
	require.NoError(t, tx.Error)
	err = releaseSpot(tx, 404)
	tx.Rollback()
	assert.ErrorIs(t, err, ErrSpotNotFound)
}

func TestAuditSpotConsistency(t *testing.T) {
	setupTestDB(t)
	lot := createTestLot(t, "Main", 2.0, 2)
	member, vehicle := memberWithVehicle(t, 1)

	res, err := ParkVehicle(member.MemberID, vehicle.VehicleID, lot.LotID, baseTime)
	require.NoError(t, err)

	// 正常狀態下不該有任何警報
	anomalies, err := AuditSpotConsistency()
	require.NoError(t, err)
	assert.Empty(t, anomalies)

	// 手動製造不一致：車位翻回 available 但租約還開著
	require.NoError(t, database.DB.Model(&models.ParkingSpot{}).
		Where("spot_id = ?", res.SpotID).
		Update("status", models.SpotStatusAvailable).Error)

	anomalies, err = AuditSpotConsistency()
	require.NoError(t, err)
	require.Len(t, anomalies, 1)
	assert.Equal(t, res.SpotID, anomalies[0].SpotID)
	assert.Equal(t, lot.LotID, anomalies[0].LotID)

	// 回報不等於修復：掃描後狀態必須原封不動
	var spot models.ParkingSpot
	require.NoError(t, database.DB.First(&spot, res.SpotID).Error)
	assert.Equal(t, models.SpotStatusAvailable, spot.Status)
	open, err := FindOpenReservationBySpot(database.DB, res.SpotID)
	require.NoError(t, err)
	assert.NotNil(t, open)
}

func TestAuditReportsOrphanOccupiedSpot(t *testing.T) {
	setupTestDB(t)
	lot := createTestLot(t, "Main", 2.0, 1)

	var spot models.ParkingSpot
	require.NoError(t, database.DB.Where("lot_id = ?", lot.LotID).First(&spot).Error)
	require.NoError(t, database.DB.Model(&spot).
		Update("status", models.SpotStatusOccupied).Error)

	anomalies, err := AuditSpotConsistency()
	require.NoError(t, err)
	require.Len(t, anomalies, 1)
	assert.Equal(t, spot.SpotID, anomalies[0].SpotID)
}
