package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ticket-gate/internal/fees"
	"ticket-gate/internal/qr"
	"ticket-gate/internal/status"
	"ticket-gate/models"
)

// Shared test fixture: event 7, ticket tier 2 sequence 42.
const (
	testEventID  uint64 = 7
	testTicketID uint64 = 1_007_300_042
)

var testNow = time.Date(2026, 6, 15, 20, 30, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) GetTicket(ctx context.Context, id uint64) (models.Ticket, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Ticket), args.Error(1)
}

func (m *MockLedger) GetOwner(ctx context.Context, id uint64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockLedger) PutTicket(ctx context.Context, t models.Ticket) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockLedger) CommitTransition(ctx context.Context, id uint64, from, to models.TicketStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockLedger) CommitTransfer(ctx context.Context, id uint64, from, to string) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockLedger) TicketsByEvent(ctx context.Context, eventID uint64) ([]models.Ticket, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]models.Ticket), args.Error(1)
}

type MockRoster struct {
	mock.Mock
}

func (m *MockRoster) GetStaffRole(ctx context.Context, eventID uint64, account string) (models.StaffRole, error) {
	args := m.Called(ctx, eventID, account)
	return args.Get(0).(models.StaffRole), args.Error(1)
}

func (m *MockRoster) SetStaffRole(ctx context.Context, eventID uint64, account string, role models.StaffRole) error {
	args := m.Called(ctx, eventID, account, role)
	return args.Error(0)
}

func (m *MockRoster) RemoveStaffRole(ctx context.Context, eventID uint64, account string) error {
	args := m.Called(ctx, eventID, account)
	return args.Error(0)
}

func (m *MockRoster) Roster(ctx context.Context, eventID uint64) (map[string]models.StaffRole, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(map[string]models.StaffRole), args.Error(1)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetEvent(ctx context.Context, eventID uint64) (models.Event, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(models.Event), args.Error(1)
}

func (m *MockCatalog) GetResaleRules(ctx context.Context, eventID uint64) (models.ResaleRules, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(models.ResaleRules), args.Error(1)
}

type MockListings struct {
	mock.Mock
}

func (m *MockListings) Put(ctx context.Context, l models.ResaleListing) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockListings) Get(ctx context.Context, id string) (models.ResaleListing, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.ResaleListing), args.Error(1)
}

func (m *MockListings) Delete(ctx context.Context, l models.ResaleListing) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockListings) ListByEvent(ctx context.Context, eventID uint64) ([]models.ResaleListing, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]models.ResaleListing), args.Error(1)
}

type MockScanLog struct {
	mock.Mock
}

func (m *MockScanLog) Record(ctx context.Context, rec models.ScanRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockScanLog) Last(ctx context.Context, ticketID uint64) (models.ScanRecord, error) {
	args := m.Called(ctx, ticketID)
	return args.Get(0).(models.ScanRecord), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Publish(ctx context.Context, channel string, message map[string]any) error {
	args := m.Called(ctx, channel, message)
	return args.Error(0)
}

func testEvent() models.Event {
	return models.Event{
		Code:      testEventID,
		Name:      "Riverside Arena Night",
		Venue:     "Riverside Arena",
		StartsAt:  testNow.Add(-1 * time.Hour),
		EndsAt:    testNow.Add(3 * time.Hour),
		Organizer: "org-1",
		QrMode:    models.QrModeStatic,
	}
}

func testTicket() models.Ticket {
	return models.Ticket{
		ID:            testTicketID,
		EventID:       testEventID,
		TierCode:      2,
		Owner:         "alice",
		Status:        models.StatusValid,
		OriginalPrice: decimal.NewFromInt(100_000),
		PurchaseDate:  testNow.Add(-30 * 24 * time.Hour),
	}
}

func quietNotifier() *MockNotifier {
	n := &MockNotifier{}
	n.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return n
}

// --- StaffService ---

func TestStaffService_OrganizerHasImplicitManager(t *testing.T) {
	roster := &MockRoster{}
	catalog := &MockCatalog{}
	catalog.On("GetEvent", mock.Anything, testEventID).Return(testEvent(), nil)

	svc := NewStaffService(roster, catalog)

	role, err := svc.Role(context.Background(), testEventID, "org-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, role)

	// The roster is never consulted for the organizer.
	roster.AssertNotCalled(t, "GetStaffRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestStaffService_RequireRejectsLesserRole(t *testing.T) {
	roster := &MockRoster{}
	catalog := &MockCatalog{}
	catalog.On("GetEvent", mock.Anything, testEventID).Return(testEvent(), nil)
	roster.On("GetStaffRole", mock.Anything, testEventID, "bob").Return(models.RoleScanner, nil)

	svc := NewStaffService(roster, catalog)

	err := svc.Require(context.Background(), testEventID, "bob", models.RoleCheckIn)
	assert.ErrorIs(t, err, status.ErrInsufficientStaffPrivilege)

	// Scanner suffices for a scanner-level check.
	assert.NoError(t, svc.Require(context.Background(), testEventID, "bob", models.RoleScanner))
}

func TestStaffService_AssignNoneRejected(t *testing.T) {
	svc := NewStaffService(&MockRoster{}, &MockCatalog{})

	err := svc.Assign(context.Background(), testEventID, "org-1", "bob", models.RoleNone)
	assert.ErrorIs(t, err, status.ErrCannotAssignNoneRole)
}

func TestStaffService_OnlyOrganizerAppointsManager(t *testing.T) {
	roster := &MockRoster{}
	catalog := &MockCatalog{}
	catalog.On("GetEvent", mock.Anything, testEventID).Return(testEvent(), nil)

	svc := NewStaffService(roster, catalog)

	err := svc.Assign(context.Background(), testEventID, "manager-mike", "bob", models.RoleManager)
	assert.ErrorIs(t, err, status.ErrInsufficientStaffPrivilege)

	roster.On("SetStaffRole", mock.Anything, testEventID, "bob", models.RoleManager).Return(nil)
	require.NoError(t, svc.Assign(context.Background(), testEventID, "org-1", "bob", models.RoleManager))
	roster.AssertExpectations(t)
}

func TestStaffService_ManagerAssignsScanner(t *testing.T) {
	roster := &MockRoster{}
	catalog := &MockCatalog{}
	catalog.On("GetEvent", mock.Anything, testEventID).Return(testEvent(), nil)
	roster.On("GetStaffRole", mock.Anything, testEventID, "manager-mike").Return(models.RoleManager, nil)
	roster.On("SetStaffRole", mock.Anything, testEventID, "bob", models.RoleScanner).Return(nil)

	svc := NewStaffService(roster, catalog)

	require.NoError(t, svc.Assign(context.Background(), testEventID, "manager-mike", "bob", models.RoleScanner))
	roster.AssertExpectations(t)
}

func TestStaffService_OrganizerCannotBeRevoked(t *testing.T) {
	catalog := &MockCatalog{}
	catalog.On("GetEvent", mock.Anything, testEventID).Return(testEvent(), nil)

	svc := NewStaffService(&MockRoster{}, catalog)

	err := svc.Revoke(context.Background(), testEventID, "org-1", "org-1")
	assert.ErrorIs(t, err, status.ErrCannotRemoveOrganizer)
}

func TestStaffService_OnlyOrganizerRemovesManager(t *testing.T) {
	roster := &MockRoster{}
	catalog := &MockCatalog{}
	catalog.On("GetEvent", mock.Anything, testEventID).Return(testEvent(), nil)
	roster.On("GetStaffRole", mock.Anything, testEventID, "other-manager").Return(models.RoleManager, nil)

	svc := NewStaffService(roster, catalog)

	err := svc.Revoke(context.Background(), testEventID, "manager-mike", "other-manager")
	assert.ErrorIs(t, err, status.ErrInsufficientStaffPrivilege)

	roster.On("RemoveStaffRole", mock.Anything, testEventID, "other-manager").Return(nil)
	require.NoError(t, svc.Revoke(context.Background(), testEventID, "org-1", "other-manager"))
	roster.AssertExpectations(t)
}

func TestStaffService_RosterManagerGated(t *testing.T) {
	roster := &MockRoster{}
	catalog := &MockCatalog{}
	catalog.On("GetEvent", mock.Anything, testEventID).Return(testEvent(), nil)
	roster.On("GetStaffRole", mock.Anything, testEventID, "bob").Return(models.RoleScanner, nil)
	roster.On("Roster", mock.Anything, testEventID).Return(map[string]models.StaffRole{
		"bob": models.RoleScanner,
	}, nil)

	svc := NewStaffService(roster, catalog)

	_, err := svc.Roster(context.Background(), testEventID, "bob")
	assert.ErrorIs(t, err, status.ErrInsufficientStaffPrivilege)

	got, err := svc.Roster(context.Background(), testEventID, "org-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleScanner, got["bob"])
}

// --- ScanService ---

func setupScanService(ledger *MockLedger, scans *MockScanLog, catalog *MockCatalog, roster *MockRoster, notifier *MockNotifier) *ScanService {
	staff := NewStaffService(roster, catalog)
	protocol := qr.NewProtocol("ticketgate", "tickets.example.com", []byte("test-secret"))
	protocol.Now = func() time.Time { return testNow }
	return NewScanService(ledger, scans, catalog, staff, protocol, fixedClock{testNow}, notifier)
}

func TestScanService_RedeemDeepLink(t *testing.T) {
	ledger := &MockLedger{}
	scans := &MockScanLog{}
	catalog := &MockCatalog{}
	roster := &MockRoster{}

	catalog.On("GetEvent", mock.Anything, testEventID).Return(testEvent(), nil)
	roster.On("GetStaffRole", mock.Anything, testEventID, "scanner-sam").Return(models.RoleScanner, nil)
	ledger.On("GetTicket", mock.Anything, testTicketID).Return(testTicket(), nil)
	ledger.On("CommitTransition", mock.Anything, testTicketID, models.StatusValid, models.StatusUsed).Return(nil)
	scans.On("Record", mock.Anything, mock.Anything).Return(nil)

	svc := setupScanService(ledger, scans, catalog, roster, quietNotifier())

	res, err := svc.Redeem(context.Background(), "ticketgate://scan/1007300042/7", testEventID, "scanner-sam")
	require.NoError(t, err)
	assert.Equal(t, testTicketID, res.TicketID)
	assert.Equal(t, models.StatusUsed, res.Status)
	assert.Equal(t, "alice", res.Owner)
	assert.Equal(t, "scanner-sam", res.ValidatedBy)

	ledger.AssertExpectations(t)
	scans.AssertExpectations(t)
}

func TestScanService_RedeemRejectsForeignEvent(t *testing.T) {
	svc := setupScanService(&MockLedger{}, &MockScanLog{}, &MockCatalog{}, &MockRoster{}, quietNotifier())

	// Scanner at event 9 must not admit a ticket for event 7.
	_, err := svc.Redeem(context.Background(), "ticketgate://scan/1007300042/7", 9, "scanner-sam")
	assert.ErrorIs(t, err, status.ErrEventContextMismatch)
}

func TestScanService_RedeemRequiresScannerRole(t *testing.T) {
	catalog := &MockCatalog{}
	roster := &MockRoster{}
	catalog.On("GetEvent", mock.Anything, testEventID).Return(testEvent(), nil)
	roster.On("GetStaffRole", mock.Anything, testEventID, "random-attendee").Return(models.RoleNone, nil)

	svc := setupScanService(&MockLedger{}, &MockScanLog{}, catalog, roster, quietNotifier())

	_, err := svc.Redeem(context.Background(), "ticketgate://scan/1007300042/7", testEventID, "random-attendee")
	assert.ErrorIs(t, err, status.ErrInsufficientStaffPrivilege)
}

func TestScanService_RedeemUsedTicketRejected(t *testing.T) {
	ledger := &MockLedger{}
	catalog := &MockCatalog{}
	roster := &MockRoster{}

	used := testTicket()
	used.Status = models.StatusUsed

	catalog.On("GetEvent", mock.Anything, testEventID).Return(testEvent(), nil)
	roster.On("GetStaffRole", mock.Anything, testEventID, "scanner-sam").Return(models.RoleScanner, nil)
	ledger.On("GetTicket", mock.Anything, testTicketID).Return(used, nil)

	svc := setupScanService(ledger, &MockScanLog{}, catalog, roster, quietNotifier())

	_, err := svc.Redeem(context.Background(), "ticketgate://scan/1007300042/7", testEventID, "scanner-sam")
	assert.ErrorIs(t, err, status.ErrIllegalTransition)
	ledger.AssertNotCalled(t, "CommitTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestScanService_RedeemBeforeEventStart(t *testing.T) {
	ledger := &MockLedger{}
	catalog := &MockCatalog{}
	roster := &MockRoster{}

	early := testEvent()
	early.StartsAt = testNow.Add(2 * time.Hour)
	early.EndsAt = testNow.Add(6 * time.Hour)

	catalog.On("GetEvent", mock.Anything, testEventID).Return(early, nil)
	roster.On("GetStaffRole", mock.Anything, testEventID, "scanner-sam").Return(models.RoleScanner, nil)
	ledger.On("GetTicket", mock.Anything, testTicketID).Return(testTicket(), nil)

	svc := setupScanService(ledger, &MockScanLog{}, catalog, roster, quietNotifier())

	_, err := svc.Redeem(context.Background(), "ticketgate://scan/1007300042/7", testEventID, "scanner-sam")
	assert.ErrorIs(t, err, status.ErrEventNotStarted)
}

func TestScanService_RedeemGarbagePayload(t *testing.T) {
	svc := setupScanService(&MockLedger{}, &MockScanLog{}, &MockCatalog{}, &MockRoster{}, quietNotifier())

	_, err := svc.Redeem(context.Background(), "not a payload at all", testEventID, "scanner-sam")
	assert.ErrorIs(t, err, status.ErrUnrecognizedPayload)
}

func TestScanService_RedeemRotatingRoundTrip(t *testing.T) {
	ledger := &MockLedger{}
	scans := &MockScanLog{}
	catalog := &MockCatalog{}
	roster := &MockRoster{}

	catalog.On("GetEvent", mock.Anything, testEventID).Return(testEvent(), nil)
	roster.On("GetStaffRole", mock.Anything, testEventID, "scanner-sam").Return(models.RoleScanner, nil)
	ledger.On("GetTicket", mock.Anything, testTicketID).Return(testTicket(), nil)
	ledger.On("CommitTransition", mock.Anything, testTicketID, models.StatusValid, models.StatusUsed).Return(nil)
	scans.On("Record", mock.Anything, mock.Anything).Return(nil)

	svc := setupScanService(ledger, scans, catalog, roster, quietNotifier())

	protocol := qr.NewProtocol("ticketgate", "tickets.example.com", []byte("test-secret"))
	protocol.Now = func() time.Time { return testNow }
	code, err := protocol.Build(testTicketID, testEventID, models.QrModeRotating)
	require.NoError(t, err)

	res, err := svc.Redeem(context.Background(), code, testEventID, "scanner-sam")
	require.NoError(t, err)
	assert.Equal(t, models.StatusUsed, res.Status)
}

func TestScanService_BuildPayloadOwnerOnly(t *testing.T) {
	ledger := &MockLedger{}
	catalog := &MockCatalog{}
	ledger.On("GetTicket", mock.Anything, testTicketID).Return(testTicket(), nil)
	catalog.On("GetEvent", mock.Anything, testEventID).Return(testEvent(), nil)

	svc := setupScanService(ledger, &MockScanLog{}, catalog, &MockRoster{}, quietNotifier())

	_, _, err := svc.BuildPayload(context.Background(), testTicketID, "mallory", "")
	assert.ErrorIs(t, err, status.ErrNotOwner)

	code, fallback, err := svc.BuildPayload(context.Background(), testTicketID, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "ticketgate://scan/1007300042/7", code)
	assert.Equal(t, "https://tickets.example.com/staff/scan/1007300042", fallback)
}

func TestScanService_TicketInfoLazyExpiry(t *testing.T) {
	ledger := &MockLedger{}
	scans := &MockScanLog{}
	catalog := &MockCatalog{}

	over := testEvent()
	over.StartsAt = testNow.Add(-8 * time.Hour)
	over.EndsAt = testNow.Add(-2 * time.Hour)

	ledger.On("GetTicket", mock.Anything, testTicketID).Return(testTicket(), nil)
	catalog.On("GetEvent", mock.Anything, testEventID).Return(over, nil)
	scans.On("Last", mock.Anything, testTicketID).Return(models.ScanRecord{}, status.ErrTicketNotFound)

	svc := setupScanService(ledger, scans, catalog, &MockRoster{}, quietNotifier())

	info, err := svc.TicketInfo(context.Background(), testTicketID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusValid, info.Ticket.Status)
	assert.Equal(t, models.StatusExpired, info.EffectiveStatus)
	assert.Nil(t, info.LastScan)
}

// --- TransferService ---

func TestTransferService_Transfer(t *testing.T) {
	ledger := &MockLedger{}
	catalog := &MockCatalog{}
	notifier := quietNotifier()

	ledger.On("GetTicket", mock.Anything, testTicketID).Return(testTicket(), nil)
	ledger.On("CommitTransfer", mock.Anything, testTicketID, "alice", "bob").Return(nil)

	svc := NewTransferService(ledger, catalog, fixedClock{testNow}, notifier)

	st, err := svc.Transfer(context.Background(), testTicketID, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, models.StatusValid, st)
	ledger.AssertExpectations(t)
}

func TestTransferService_TransferRejections(t *testing.T) {
	ledger := &MockLedger{}
	ledger.On("GetTicket", mock.Anything, testTicketID).Return(testTicket(), nil)

	svc := NewTransferService(ledger, &MockCatalog{}, fixedClock{testNow}, quietNotifier())

	_, err := svc.Transfer(context.Background(), testTicketID, "mallory", "bob")
	assert.ErrorIs(t, err, status.ErrNotOwner)

	_, err = svc.Transfer(context.Background(), testTicketID, "alice", "alice")
	assert.ErrorIs(t, err, status.ErrSelfTransfer)

	ledger.AssertNotCalled(t, "CommitTransfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransferService_RefundEventOrganizerOnly(t *testing.T) {
	catalog := &MockCatalog{}
	catalog.On("GetEvent", mock.Anything, testEventID).Return(testEvent(), nil)

	svc := NewTransferService(&MockLedger{}, catalog, fixedClock{testNow}, quietNotifier())

	_, err := svc.RefundEvent(context.Background(), testEventID, "manager-mike")
	assert.ErrorIs(t, err, status.ErrInsufficientStaffPrivilege)
}

func TestTransferService_RefundEventSweepsOnlyValid(t *testing.T) {
	ledger := &MockLedger{}
	catalog := &MockCatalog{}
	notifier := quietNotifier()

	cancelled := testEvent()
	cancelled.Cancelled = true

	valid := testTicket()
	used := testTicket()
	used.ID = 1_007_300_043
	used.Status = models.StatusUsed

	catalog.On("GetEvent", mock.Anything, testEventID).Return(cancelled, nil)
	ledger.On("TicketsByEvent", mock.Anything, testEventID).Return([]models.Ticket{valid, used}, nil)
	ledger.On("CommitTransition", mock.Anything, valid.ID, models.StatusValid, models.StatusRefunded).Return(nil)

	svc := NewTransferService(ledger, catalog, fixedClock{testNow}, notifier)

	n, err := svc.RefundEvent(context.Background(), testEventID, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ledger.AssertNotCalled(t, "CommitTransition", mock.Anything, used.ID, mock.Anything, mock.Anything)
}

func TestTransferService_RefundSkipsExpired(t *testing.T) {
	ledger := &MockLedger{}
	catalog := &MockCatalog{}

	// Event already over: the valid ticket reads expired and stays out of
	// the refund sweep.
	over := testEvent()
	over.StartsAt = testNow.Add(-8 * time.Hour)
	over.EndsAt = testNow.Add(-2 * time.Hour)

	catalog.On("GetEvent", mock.Anything, testEventID).Return(over, nil)
	ledger.On("TicketsByEvent", mock.Anything, testEventID).Return([]models.Ticket{testTicket()}, nil)

	svc := NewTransferService(ledger, catalog, fixedClock{testNow}, quietNotifier())

	n, err := svc.RefundEvent(context.Background(), testEventID, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	ledger.AssertNotCalled(t, "CommitTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- MarketplaceService ---

func resaleRules() models.ResaleRules {
	return models.ResaleRules{
		AllowResell:     true,
		MaxMarkupBps:    1_000,
		OrganizerFeeBps: 250,
	}
}

func setupMarketplace(ledger *MockLedger, listings *MockListings, catalog *MockCatalog) *MarketplaceService {
	return NewMarketplaceService(ledger, listings, catalog, fees.NewEngine(), fixedClock{testNow}, quietNotifier())
}

func TestMarketplaceService_CreateListing(t *testing.T) {
	ledger := &MockLedger{}
	listings := &MockListings{}
	catalog := &MockCatalog{}

	future := testEvent()
	future.StartsAt = testNow.Add(30 * 24 * time.Hour)
	future.EndsAt = future.StartsAt.Add(4 * time.Hour)

	ledger.On("GetTicket", mock.Anything, testTicketID).Return(testTicket(), nil)
	catalog.On("GetEvent", mock.Anything, testEventID).Return(future, nil)
	catalog.On("GetResaleRules", mock.Anything, testEventID).Return(resaleRules(), nil)
	listings.On("Put", mock.Anything, mock.Anything).Return(nil)

	svc := setupMarketplace(ledger, listings, catalog)

	price := decimal.NewFromInt(103_950)
	listing, breakdown, err := svc.CreateListing(context.Background(), testTicketID, "alice", price)
	require.NoError(t, err)

	assert.NotEmpty(t, listing.ID)
	assert.Equal(t, testTicketID, listing.TicketID)
	assert.Equal(t, "alice", listing.Seller)
	assert.True(t, listing.Price.Equal(price))

	// 2.5% organizer + 3% platform, remainder to the seller.
	assert.True(t, breakdown.OrganizerFee.Equal(decimal.RequireFromString("2598.75")))
	assert.True(t, breakdown.PlatformFee.Equal(decimal.RequireFromString("3118.50")))
	sum := breakdown.OrganizerFee.Add(breakdown.PlatformFee).Add(breakdown.SellerAmount)
	assert.True(t, sum.Equal(price), "breakdown must conserve the listing price")

	listings.AssertExpectations(t)
}

func TestMarketplaceService_CreateListingMarkupExceeded(t *testing.T) {
	ledger := &MockLedger{}
	catalog := &MockCatalog{}

	ledger.On("GetTicket", mock.Anything, testTicketID).Return(testTicket(), nil)
	catalog.On("GetEvent", mock.Anything, testEventID).Return(testEvent(), nil)
	catalog.On("GetResaleRules", mock.Anything, testEventID).Return(resaleRules(), nil)

	svc := setupMarketplace(ledger, &MockListings{}, catalog)

	// Ceiling is 110_000 at 1000 bps markup.
	_, _, err := svc.CreateListing(context.Background(), testTicketID, "alice", decimal.NewFromInt(110_001))
	assert.ErrorIs(t, err, status.ErrMarkupExceeded)
}

func TestMarketplaceService_CreateListingResaleDisabled(t *testing.T) {
	ledger := &MockLedger{}
	catalog := &MockCatalog{}

	rules := resaleRules()
	rules.AllowResell = false

	ledger.On("GetTicket", mock.Anything, testTicketID).Return(testTicket(), nil)
	catalog.On("GetEvent", mock.Anything, testEventID).Return(testEvent(), nil)
	catalog.On("GetResaleRules", mock.Anything, testEventID).Return(rules, nil)

	svc := setupMarketplace(ledger, &MockListings{}, catalog)

	_, _, err := svc.CreateListing(context.Background(), testTicketID, "alice", decimal.NewFromInt(100_000))
	assert.ErrorIs(t, err, status.ErrResaleDisabled)
}

func TestMarketplaceService_CreateListingNotOwner(t *testing.T) {
	ledger := &MockLedger{}
	ledger.On("GetTicket", mock.Anything, testTicketID).Return(testTicket(), nil)

	svc := setupMarketplace(ledger, &MockListings{}, &MockCatalog{})

	_, _, err := svc.CreateListing(context.Background(), testTicketID, "mallory", decimal.NewFromInt(100_000))
	assert.ErrorIs(t, err, status.ErrNotOwner)
}

func TestMarketplaceService_CancelListingSellerOnly(t *testing.T) {
	listings := &MockListings{}
	listing := models.ResaleListing{
		ID:       "AB12CD34",
		TicketID: testTicketID,
		EventID:  testEventID,
		Seller:   "alice",
		Price:    decimal.NewFromInt(103_950),
	}
	listings.On("Get", mock.Anything, "AB12CD34").Return(listing, nil)

	svc := setupMarketplace(&MockLedger{}, listings, &MockCatalog{})

	err := svc.CancelListing(context.Background(), "AB12CD34", "mallory")
	assert.ErrorIs(t, err, status.ErrNotOwner)

	listings.On("Delete", mock.Anything, listing).Return(nil)
	require.NoError(t, svc.CancelListing(context.Background(), "AB12CD34", "alice"))
	listings.AssertExpectations(t)
}

func TestMarketplaceService_SettleListing(t *testing.T) {
	ledger := &MockLedger{}
	listings := &MockListings{}
	catalog := &MockCatalog{}

	listing := models.ResaleListing{
		ID:       "AB12CD34",
		TicketID: testTicketID,
		EventID:  testEventID,
		Seller:   "alice",
		Price:    decimal.NewFromInt(103_950),
	}

	listings.On("Get", mock.Anything, "AB12CD34").Return(listing, nil)
	ledger.On("GetTicket", mock.Anything, testTicketID).Return(testTicket(), nil)
	catalog.On("GetResaleRules", mock.Anything, testEventID).Return(resaleRules(), nil)
	ledger.On("CommitTransfer", mock.Anything, testTicketID, "alice", "bob").Return(nil)
	listings.On("Delete", mock.Anything, listing).Return(nil)

	svc := setupMarketplace(ledger, listings, catalog)

	breakdown, err := svc.SettleListing(context.Background(), "AB12CD34", "bob")
	require.NoError(t, err)

	sum := breakdown.OrganizerFee.Add(breakdown.PlatformFee).Add(breakdown.SellerAmount)
	assert.True(t, sum.Equal(listing.Price))

	ledger.AssertExpectations(t)
	listings.AssertExpectations(t)
}

func TestMarketplaceService_SettleSelfPurchase(t *testing.T) {
	listings := &MockListings{}
	listings.On("Get", mock.Anything, "AB12CD34").Return(models.ResaleListing{
		ID:     "AB12CD34",
		Seller: "alice",
	}, nil)

	svc := setupMarketplace(&MockLedger{}, listings, &MockCatalog{})

	_, err := svc.SettleListing(context.Background(), "AB12CD34", "alice")
	assert.ErrorIs(t, err, status.ErrSelfTransfer)
}
