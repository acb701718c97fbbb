package models

import "time"

// Event types
const (
	EventTypeSimulationStarted         = "SIMULATION_STARTED"
	EventTypeDayAdvanced               = "DAY_ADVANCED"
	EventTypePurchaseOrderCreated      = "PURCHASE_ORDER_CREATED"
	EventTypePurchaseReceived          = "PURCHASE_RECEIVED"
	EventTypeManufacturingOrderCreated = "MANUFACTURING_ORDER_CREATED"
	EventTypeManufacturingStarted      = "MANUFACTURING_STARTED"
	EventTypeManufacturingCompleted    = "MANUFACTURING_COMPLETED"
	EventTypeManufacturingBlocked      = "MANUFACTURING_BLOCKED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SimulationStartedEvent published when a simulation is initialized
type SimulationStartedEvent struct {
	BaseEvent
	StartDate        time.Time     `json:"start_date"`
	InitialInventory map[int64]int `json:"initial_inventory"`
}

// DayAdvancedEvent published after each simulated day
type DayAdvancedEvent struct {
	BaseEvent
	Date              time.Time `json:"date"`
	OrdersGenerated   int       `json:"orders_generated"`
	PurchasesReceived int       `json:"purchases_received"`
	OrdersStarted     int       `json:"orders_started"`
	OrdersCompleted   int       `json:"orders_completed"`
	OrdersBlocked     int       `json:"orders_blocked"`
}

// PurchaseOrderCreatedEvent published when a purchase order is enqueued
type PurchaseOrderCreatedEvent struct {
	BaseEvent
	Order PurchaseOrder `json:"order"`
}

// PurchaseReceivedEvent published when a purchase order arrives
type PurchaseReceivedEvent struct {
	BaseEvent
	OrderID    int64     `json:"order_id"`
	ProductID  int64     `json:"product_id"`
	Quantity   int       `json:"quantity"`
	ReceivedOn time.Time `json:"received_on"`
}

// ManufacturingOrderCreatedEvent published when a manufacturing order is enqueued
type ManufacturingOrderCreatedEvent struct {
	BaseEvent
	Order ManufacturingOrder `json:"order"`
}

// ManufacturingStartedEvent published when an order enters production
type ManufacturingStartedEvent struct {
	BaseEvent
	OrderID   int64     `json:"order_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	StartedOn time.Time `json:"started_on"`
}

// ManufacturingCompletedEvent published when an order finishes production
type ManufacturingCompletedEvent struct {
	BaseEvent
	OrderID     int64     `json:"order_id"`
	ProductID   int64     `json:"product_id"`
	Quantity    int       `json:"quantity"`
	CompletedOn time.Time `json:"completed_on"`
}

// ManufacturingBlockedEvent published when an order cannot start for lack of materials
type ManufacturingBlockedEvent struct {
	BaseEvent
	OrderID   int64                 `json:"order_id"`
	ProductID int64                 `json:"product_id"`
	Quantity  int                   `json:"quantity"`
	Missing   []MaterialRequirement `json:"missing"`
}

// MaterialRequirement is a raw-material quantity referenced by events
type MaterialRequirement struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}
