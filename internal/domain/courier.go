package domain

type (
	// CourierStatus represents the status of a courier.
	CourierStatus string
	// CourierTransportType represents the transport type of a courier.
	CourierTransportType string
)

// Courier represents a delivery courier. Version is bumped on every write and
// is used for compare-and-swap updates.
type Courier struct {
	ID            int64                `json:"id"`
	Name          string               `json:"name"`
	Phone         string               `json:"phone"`
	Status        CourierStatus        `json:"status"`
	TransportType CourierTransportType `json:"transport_type"`
	Version       int64                `json:"version"`
}
