package repositories

import (
	"log"
	"sync"

	"weather-server/entities"
	"weather-server/gateway"
)

type deviceRepository struct {
	gw *gateway.Gateway
	mu sync.Mutex
}

func NewDeviceRepository(gw *gateway.Gateway) DeviceRepository {
	return &deviceRepository{gw: gw}
}

func (r *deviceRepository) FindByID(deviceID string) (*entities.Device, error) {
	var device entities.Device
	found, err := r.gw.FetchOne(TableDevices, gateway.Filter{
		gateway.Where(ColDeviceID, gateway.Equal, deviceID),
	}, &device)
	if err != nil || !found {
		return nil, err
	}
	return &device, nil
}

func (r *deviceRepository) FindAll() ([]entities.Device, error) {
	var devices []entities.Device
	err := r.gw.FetchMany(TableDevices, nil, &devices)
	return devices, err
}

// Insert writes device unless its device_id is already registered, in which
// case it returns a *DuplicateError.
func (r *deviceRepository) Insert(device *entities.Device) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.FindByID(device.DeviceID)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		log.Printf("device id %s already exists", device.DeviceID)
		return 0, &DuplicateError{Table: TableDevices, Key: device.DeviceID}
	}

	return r.gw.InsertOne(TableDevices, map[gateway.Column]any{
		ColDeviceID:     device.DeviceID,
		ColDescription:  device.Description,
		ColDeviceType:   device.DeviceType,
		ColManufacturer: device.Manufacturer,
	})
}
