package store

// PalletFilter narrows a pallet listing. Nil boolean fields are ignored.
type PalletFilter struct {
	CurrentLocation string
	IsReserved      *bool
	IsSheltered     *bool
	IsInTransfer    *bool
}

// PalletUpdate is a partial update of a pallet. Nil fields are left
// untouched; the number itself is immutable and has no field here.
type PalletUpdate struct {
	CurrentLocation  *string `json:"currentLocation"`
	IsReserved       *bool   `json:"isReserved"`
	ReservationNote  *string `json:"reservationNote"`
	IsSheltered      *bool   `json:"isSheltered"`
	IsInTransfer     *bool   `json:"isInTransfer"`
	ActiveTransferID *string `json:"activeTransferId"`
}

// Transfer listing scopes, matching the HTTP status query values.
const (
	TransferScopeAll        = ""
	TransferScopeInProgress = "in-progress"
	TransferScopeTerminal   = "completed-or-cancelled"
)

// TransferFilter narrows a transfer listing to one scope.
type TransferFilter struct {
	Scope string
}
