package enum

// --- Order workflow (local copy, may be overwritten by remote updates) ---

const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

const (
	OrderTypeDineIn   = "dine-in"
	OrderTypeTakeout  = "takeout"
	OrderTypeDelivery = "delivery"
)

// --- Payments ---

const (
	PaymentMethodCard = "card"
	PaymentMethodPix  = "pix"
	PaymentMethodCash = "cash"
)

const (
	CardTypeCredit = "credit"
	CardTypeDebit  = "debit"
)

// --- Tables ---

const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"
	TableStatusReserved  = "reserved"
	TableStatusCleaning  = "cleaning"
)

// --- Operators ---

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
	RoleWaiter  = "waiter"
	RoleKitchen = "kitchen"
)
