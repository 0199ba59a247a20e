package parcel

import (
	"testing"
	"time"

	"parcel-delivery/apperrors"
	"parcel-delivery/constants"
	parcelModel "parcel-delivery/models/parcel"
	userModel "parcel-delivery/models/user"
	"parcel-delivery/services/token"
	parcelTypes "parcel-delivery/types/parcel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&userModel.User{}, &parcelModel.Parcel{}, &parcelModel.StatusLog{}))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email, phone, role string) *userModel.User {
	t.Helper()
	u := &userModel.User{
		Uuid:     email + "-uuid",
		Name:     "Test User",
		Email:    email,
		Password: "hashed",
		Phone:    phone,
		Role:     role,
		Status:   constants.StatusActive,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func validCreateRequest() parcelTypes.CreateParcelRequest {
	return parcelTypes.CreateParcelRequest{
		Receiver: parcelTypes.ReceiverContact{
			Name:    "Rahim Uddin",
			Phone:   "01700000002",
			Address: "House 12, Road 3, Dhanmondi",
		},
		ParcelType:      "fragile",
		Weight:          1,
		DeliveryAddress: "House 12, Road 3, Dhanmondi, Dhaka",
	}
}

func TestCreateParcel(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	sender := createTestUser(t, db, "sender@example.com", "01700000001", constants.RoleSender)

	p, err := svc.Create(sender.ID, validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, parcelModel.StatusRequested, p.CurrentStatus)
	assert.Equal(t, float64(90), p.ParcelFee)
	assert.Regexp(t, `^TRK-\d{8}-[0-9A-Z]{6}$`, p.TrackingID)
	assert.Equal(t, sender.ID, p.SenderID)
	assert.Nil(t, p.ReceiverUserID)
	assert.False(t, p.IsCancelled)
	assert.False(t, p.IsDelivered)
	assert.False(t, p.IsBlocked)

	require.NotNil(t, p.EstimatedDeliveryDate)
	expected := time.Now().AddDate(0, 0, 3)
	assert.Equal(t, expected.Year(), p.EstimatedDeliveryDate.Year())
	assert.Equal(t, expected.YearDay(), p.EstimatedDeliveryDate.YearDay())

	require.Len(t, p.StatusLogs, 1)
	assert.Equal(t, parcelModel.StatusRequested, p.StatusLogs[0].Status)
	require.NotNil(t, p.StatusLogs[0].Note)
	assert.Equal(t, "Parcel created by sender", *p.StatusLogs[0].Note)
}

func TestCreateParcelLinksReceiverByPhone(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	sender := createTestUser(t, db, "sender@example.com", "01700000001", constants.RoleSender)
	receiver := createTestUser(t, db, "receiver@example.com", "01700000002", constants.RoleReceiver)

	p, err := svc.Create(sender.ID, validCreateRequest())
	require.NoError(t, err)
	require.NotNil(t, p.ReceiverUserID)
	assert.Equal(t, receiver.ID, *p.ReceiverUserID)
}

func TestCreateParcelValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	sender := createTestUser(t, db, "sender@example.com", "01700000001", constants.RoleSender)

	req := validCreateRequest()
	req.Weight = 0
	_, err := svc.Create(sender.ID, req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	req = validCreateRequest()
	req.Receiver.Phone = ""
	_, err = svc.Create(sender.ID, req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	req = validCreateRequest()
	req.DeliveryAddress = ""
	_, err = svc.Create(sender.ID, req)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCancelParcel(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	sender := createTestUser(t, db, "sender@example.com", "01700000001", constants.RoleSender)
	other := createTestUser(t, db, "other@example.com", "01700000009", constants.RoleSender)

	p, err := svc.Create(sender.ID, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.Cancel(p.ID, other.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	p, err = svc.Cancel(p.ID, sender.ID)
	require.NoError(t, err)
	assert.True(t, p.IsCancelled)
	assert.Equal(t, parcelModel.StatusCancelled, p.CurrentStatus)
	require.Len(t, p.StatusLogs, 2)
	assert.Equal(t, parcelModel.StatusCancelled, p.StatusLogs[1].Status)
	require.NotNil(t, p.StatusLogs[1].Note)
	assert.Equal(t, "Cancelled by sender", *p.StatusLogs[1].Note)
}

func TestCancelParcelAfterApproval(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	sender := createTestUser(t, db, "sender@example.com", "01700000001", constants.RoleSender)
	admin := createTestUser(t, db, "admin@example.com", "01700000000", constants.RoleAdmin)

	p, err := svc.Create(sender.ID, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(p.ID, admin.ID, parcelModel.StatusApproved, nil, nil)
	require.NoError(t, err)

	_, err = svc.Cancel(p.ID, sender.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
}

func TestUpdateStatusAppendsLog(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	sender := createTestUser(t, db, "sender@example.com", "01700000001", constants.RoleSender)
	admin := createTestUser(t, db, "admin@example.com", "01700000000", constants.RoleAdmin)

	p, err := svc.Create(sender.ID, validCreateRequest())
	require.NoError(t, err)

	location := "Dhaka Hub"
	p, err = svc.UpdateStatus(p.ID, admin.ID, parcelModel.StatusApproved, &location, nil)
	require.NoError(t, err)
	p, err = svc.UpdateStatus(p.ID, admin.ID, parcelModel.StatusDispatched, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, parcelModel.StatusDispatched, p.CurrentStatus)
	require.Len(t, p.StatusLogs, 3)
	assert.Equal(t, parcelModel.StatusRequested, p.StatusLogs[0].Status)
	assert.Equal(t, parcelModel.StatusApproved, p.StatusLogs[1].Status)
	assert.Equal(t, parcelModel.StatusDispatched, p.StatusLogs[2].Status)
	require.NotNil(t, p.StatusLogs[1].Location)
	assert.Equal(t, "Dhaka Hub", *p.StatusLogs[1].Location)
	require.NotNil(t, p.StatusLogs[2].UpdatedBy)
	assert.Equal(t, admin.ID, *p.StatusLogs[2].UpdatedBy)

	// current status always matches the log tail
	assert.Equal(t, p.StatusLogs[len(p.StatusLogs)-1].Status, p.CurrentStatus)
}

func TestUpdateStatusPermissive(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	sender := createTestUser(t, db, "sender@example.com", "01700000001", constants.RoleSender)
	admin := createTestUser(t, db, "admin@example.com", "01700000000", constants.RoleAdmin)

	p, err := svc.Create(sender.ID, validCreateRequest())
	require.NoError(t, err)

	// an admin may jump straight from REQUESTED to DELIVERED
	p, err = svc.UpdateStatus(p.ID, admin.ID, parcelModel.StatusDelivered, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, parcelModel.StatusDelivered, p.CurrentStatus)
	assert.True(t, p.IsDelivered)

	_, err = svc.UpdateStatus(p.ID, admin.ID, parcelModel.StatusHeld, nil, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
}

func TestUpdateStatusGuards(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	sender := createTestUser(t, db, "sender@example.com", "01700000001", constants.RoleSender)
	admin := createTestUser(t, db, "admin@example.com", "01700000000", constants.RoleAdmin)

	p, err := svc.Create(sender.ID, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(p.ID, admin.ID, parcelModel.Status("SHIPPED"), nil, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = svc.Cancel(p.ID, sender.ID)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(p.ID, admin.ID, parcelModel.StatusApproved, nil, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
}

func TestConfirmDelivery(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	sender := createTestUser(t, db, "sender@example.com", "01700000001", constants.RoleSender)
	receiver := createTestUser(t, db, "receiver@example.com", "01700000002", constants.RoleReceiver)
	admin := createTestUser(t, db, "admin@example.com", "01700000000", constants.RoleAdmin)
	stranger := createTestUser(t, db, "stranger@example.com", "01700000008", constants.RoleReceiver)

	p, err := svc.Create(sender.ID, validCreateRequest())
	require.NoError(t, err)

	// not in a deliverable state yet
	_, err = svc.ConfirmDelivery(p.ID, receiver.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))

	_, err = svc.UpdateStatus(p.ID, admin.ID, parcelModel.StatusInTransit, nil, nil)
	require.NoError(t, err)

	_, err = svc.ConfirmDelivery(p.ID, stranger.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	p, err = svc.ConfirmDelivery(p.ID, receiver.ID)
	require.NoError(t, err)
	assert.True(t, p.IsDelivered)
	assert.Equal(t, parcelModel.StatusDelivered, p.CurrentStatus)
	last := p.StatusLogs[len(p.StatusLogs)-1]
	require.NotNil(t, last.Note)
	assert.Equal(t, "Delivery confirmed by receiver", *last.Note)

	_, err = svc.ConfirmDelivery(p.ID, receiver.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
}

func TestConfirmDeliveryUnlinkedParcel(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	sender := createTestUser(t, db, "sender@example.com", "01700000001", constants.RoleSender)
	receiver := createTestUser(t, db, "receiver@example.com", "01799999999", constants.RoleReceiver)

	// receiver phone does not match any account, so no link exists
	p, err := svc.Create(sender.ID, validCreateRequest())
	require.NoError(t, err)
	require.Nil(t, p.ReceiverUserID)

	_, err = svc.ConfirmDelivery(p.ID, receiver.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestGetByTrackingID(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	sender := createTestUser(t, db, "sender@example.com", "01700000001", constants.RoleSender)

	_, err := svc.GetByTrackingID("TRK-20260101-ZZZZZZ")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	p, err := svc.Create(sender.ID, validCreateRequest())
	require.NoError(t, err)

	view, err := svc.GetByTrackingID(p.TrackingID)
	require.NoError(t, err)
	assert.Equal(t, p.TrackingID, view.TrackingID)
	assert.Equal(t, parcelModel.StatusRequested, view.CurrentStatus)
	require.Len(t, view.StatusLogs, 1)
	assert.Equal(t, parcelModel.StatusRequested, view.StatusLogs[0].Status)
}

func TestGetSingleAuthorization(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	sender := createTestUser(t, db, "sender@example.com", "01700000001", constants.RoleSender)
	receiver := createTestUser(t, db, "receiver@example.com", "01700000002", constants.RoleReceiver)
	stranger := createTestUser(t, db, "stranger@example.com", "01700000008", constants.RoleSender)

	p, err := svc.Create(sender.ID, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.GetSingle(p.ID, &token.Claims{UserID: sender.ID, Role: constants.RoleSender})
	assert.NoError(t, err)

	_, err = svc.GetSingle(p.ID, &token.Claims{UserID: receiver.ID, Role: constants.RoleReceiver})
	assert.NoError(t, err)

	_, err = svc.GetSingle(p.ID, &token.Claims{UserID: 999, Role: constants.RoleAdmin})
	assert.NoError(t, err)

	_, err = svc.GetSingle(p.ID, &token.Claims{UserID: stranger.ID, Role: constants.RoleSender})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestListFiltersAndPagination(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	sender := createTestUser(t, db, "sender@example.com", "01700000001", constants.RoleSender)
	admin := createTestUser(t, db, "admin@example.com", "01700000000", constants.RoleAdmin)

	var parcels []*parcelModel.Parcel
	for i := 0; i < 3; i++ {
		p, err := svc.Create(sender.ID, validCreateRequest())
		require.NoError(t, err)
		parcels = append(parcels, p)
	}
	cancelled := parcels[0]
	_, err := svc.Cancel(cancelled.ID, sender.ID)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(parcels[1].ID, admin.ID, parcelModel.StatusApproved, nil, nil)
	require.NoError(t, err)

	all, total, err := svc.List(parcelTypes.ListFilters{}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)

	truthy := true
	got, total, err := svc.List(parcelTypes.ListFilters{IsCancelled: &truthy}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, cancelled.ID, got[0].ID)

	status := parcelModel.StatusApproved
	got, total, err = svc.List(parcelTypes.ListFilters{Status: &status}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, parcelModel.StatusApproved, got[0].CurrentStatus)

	got, total, err = svc.List(parcelTypes.ListFilters{}, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, got, 2)
}

func TestMyParcelsAndIncoming(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	sender := createTestUser(t, db, "sender@example.com", "01700000001", constants.RoleSender)
	receiver := createTestUser(t, db, "receiver@example.com", "01700000002", constants.RoleReceiver)

	_, err := svc.Create(sender.ID, validCreateRequest())
	require.NoError(t, err)
	_, err = svc.Create(sender.ID, validCreateRequest())
	require.NoError(t, err)

	mine, err := svc.MyParcels(sender.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	incoming, err := svc.IncomingParcels(receiver.ID)
	require.NoError(t, err)
	assert.Len(t, incoming, 2)

	none, err := svc.MyParcels(receiver.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteParcel(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	sender := createTestUser(t, db, "sender@example.com", "01700000001", constants.RoleSender)

	p, err := svc.Create(sender.ID, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(p.ID))

	_, err = svc.GetByTrackingID(p.TrackingID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	var count int64
	require.NoError(t, db.Model(&parcelModel.StatusLog{}).Where("parcel_id = ?", p.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	err = svc.Delete(p.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestBlockAndUnblock(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	sender := createTestUser(t, db, "sender@example.com", "01700000001", constants.RoleSender)
	admin := createTestUser(t, db, "admin@example.com", "01700000000", constants.RoleAdmin)

	p, err := svc.Create(sender.ID, validCreateRequest())
	require.NoError(t, err)
	logsBefore := len(p.StatusLogs)

	p, err = svc.Block(p.ID)
	require.NoError(t, err)
	assert.True(t, p.IsBlocked)
	assert.Equal(t, parcelModel.StatusRequested, p.CurrentStatus)
	assert.Len(t, p.StatusLogs, logsBefore, "blocking must not append a log entry")

	_, err = svc.UpdateStatus(p.ID, admin.ID, parcelModel.StatusApproved, nil, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))
	_, err = svc.Cancel(p.ID, sender.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidTransition))

	p, err = svc.Unblock(p.ID)
	require.NoError(t, err)
	assert.False(t, p.IsBlocked)

	_, err = svc.UpdateStatus(p.ID, admin.ID, parcelModel.StatusApproved, nil, nil)
	assert.NoError(t, err)
}

func TestStats(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	sender := createTestUser(t, db, "sender@example.com", "01700000001", constants.RoleSender)
	admin := createTestUser(t, db, "admin@example.com", "01700000000", constants.RoleAdmin)

	first, err := svc.Create(sender.ID, validCreateRequest())
	require.NoError(t, err)
	second, err := svc.Create(sender.ID, validCreateRequest())
	require.NoError(t, err)
	_, err = svc.Create(sender.ID, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(first.ID, admin.ID, parcelModel.StatusDelivered, nil, nil)
	require.NoError(t, err)
	_, err = svc.Cancel(second.ID, sender.ID)
	require.NoError(t, err)

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 1, stats.Delivered)
	assert.EqualValues(t, 1, stats.Cancelled)
	assert.EqualValues(t, 0, stats.Blocked)
	assert.EqualValues(t, 1, stats.ByStatus["DELIVERED"])
	assert.EqualValues(t, 1, stats.ByStatus["CANCELLED"])
	assert.EqualValues(t, 1, stats.ByStatus["REQUESTED"])
}
