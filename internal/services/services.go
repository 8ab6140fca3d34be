package services

import "smartentrance/internal/uploads"

// Services bundles the typed backend façades for one session.
type Services struct {
	Auth         *AuthService
	Buildings    *BuildingService
	Units        *UnitService
	Transactions *TransactionService
	Polls        *PollService
	Notices      *NoticeService
	Documents    *DocumentService
	Invitations  *InvitationService
	Files        *FileService
}

// Storage configures where document files go. A nil Uploader means the backend file
// endpoint reached through the session's own client.
type Storage struct {
	Uploader  Uploader
	Ledger    uploads.Ledger
	Scheduler DiscardScheduler
}

func New(client Requester, storage Storage) *Services {
	files := NewFileService(client)

	uploader := storage.Uploader
	if uploader == nil {
		uploader = files
	}
	ledger := storage.Ledger
	if ledger == nil {
		ledger = uploads.NewMemoryLedger()
	}

	return &Services{
		Auth:         NewAuthService(client),
		Buildings:    NewBuildingService(client),
		Units:        NewUnitService(client),
		Transactions: NewTransactionService(client),
		Polls:        NewPollService(client),
		Notices:      NewNoticeService(client),
		Documents:    NewDocumentService(client, uploader, ledger, storage.Scheduler),
		Invitations:  NewInvitationService(client),
		Files:        files,
	}
}
